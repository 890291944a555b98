package sim

import (
	"fmt"

	"github.com/gregLibert/sim-card/pkg/iso7816"
)

// SelectError reports a SELECT rejected by the card, keeping the file
// identifier and the status word so callers can tell "not present" from
// "PIN protected" from everything else.
type SelectError struct {
	FileID uint16
	Status iso7816.StatusWord
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("select %04X: %s", e.FileID, e.Status.Verbose())
}

// ReadError reports a READ BINARY or READ RECORD rejected by the card.
type ReadError struct {
	FileID uint16
	Record int // 0 for transparent reads
	Status iso7816.StatusWord
}

func (e *ReadError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("read %04X record %d: %s", e.FileID, e.Record, e.Status.Verbose())
	}
	return fmt.Sprintf("read %04X: %s", e.FileID, e.Status.Verbose())
}
