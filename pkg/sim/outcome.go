package sim

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gregLibert/sim-card/pkg/iso7816"
)

// OutcomeStatus classifies how reading one field of the dump went.
type OutcomeStatus int

const (
	StatusAbsent    OutcomeStatus = iota // file or record not on this card
	StatusPresent                        // decoded value available
	StatusPinLocked                      // card wants CHV/PIN verification first
	StatusError                          // transport or decode failure
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	case StatusPinLocked:
		return "pin locked"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// Outcome is the per-field result slot of a SimDump. A failed field
// never carries a value, but a decode failure keeps the raw bytes it
// choked on.
type Outcome[T any] struct {
	Status OutcomeStatus
	Value  T
	Err    error
	Raw    []byte
}

func Present[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusPresent, Value: v}
}

func Absent[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusAbsent}
}

func PinLocked[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusPinLocked}
}

func Failed[T any](err error, raw []byte) Outcome[T] {
	return Outcome[T]{Status: StatusError, Err: err, Raw: raw}
}

func (o Outcome[T]) IsPresent() bool { return o.Status == StatusPresent }

// MarshalJSON renders the outcome as a status-tagged object. The value
// appears only when present; errors are rendered as strings with the
// offending bytes in hex.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Status string `json:"status"`
		Value  any    `json:"value,omitempty"`
		Error  string `json:"error,omitempty"`
		Raw    string `json:"raw,omitempty"`
	}{Status: o.Status.String()}

	if o.Status == StatusPresent {
		out.Value = o.Value
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	if len(o.Raw) > 0 {
		out.Raw = fmt.Sprintf("% X", o.Raw)
	}
	return json.Marshal(out)
}

// cardFailure folds a Reader error into an outcome: file-not-found
// status words mean the field is absent from this card, security status
// words mean it sits behind a PIN, anything else is a real failure.
func cardFailure[T any](err error) Outcome[T] {
	var selErr *SelectError
	if errors.As(err, &selErr) {
		return statusOutcome[T](selErr.Status, err)
	}
	var readErr *ReadError
	if errors.As(err, &readErr) {
		return statusOutcome[T](readErr.Status, err)
	}
	return Failed[T](err, nil)
}

func statusOutcome[T any](sw iso7816.StatusWord, err error) Outcome[T] {
	switch {
	case sw.IsFileNotFound():
		return Absent[T]()
	case sw.IsSecurityNotSatisfied():
		return PinLocked[T]()
	default:
		return Failed[T](err, nil)
	}
}
