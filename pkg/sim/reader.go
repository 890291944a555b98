package sim

import (
	"fmt"
	"iter"

	"github.com/gregLibert/sim-card/pkg/iso7816"
)

// Reader walks the card's file system for one session. Selection is
// always computed from the session's explicit current directory; when
// the target's parent directory is already selected only the final hop
// is sent, otherwise the full path is walked from its root.
type Reader struct {
	session *Session
}

func NewReader(s *Session) *Reader {
	return &Reader{session: s}
}

// Select walks the given path and returns the control information of
// the target elementary file. A rejection at any hop surfaces as a
// SelectError carrying that hop's identifier.
func (r *Reader) Select(path Path) (*iso7816.FileControlInfo, error) {
	s := r.session
	if s.state != stateAppSelected {
		return nil, fmt.Errorf("session not started")
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("empty selection path")
	}

	start := 0
	if pathEqual(s.currentDir, path[:len(path)-1]) {
		start = len(path) - 1
	} else {
		s.currentDir = nil
	}

	var trace iso7816.Trace
	for _, id := range path[start:] {
		var err error
		if id == ADF {
			trace, err = s.client.Send(iso7816.SelectByAID(s.cla, s.aid))
			if err == nil && !trace.IsSuccess() {
				err = &SelectError{FileID: ADF, Status: trace.Status()}
			}
		} else {
			trace, err = s.selectFile(s.cla, id)
		}
		if err != nil {
			return nil, err
		}
		if isDirectory(id) {
			s.currentDir = append(s.currentDir, id)
		}
	}

	if s.cla.Raw == iso7816.ClaGSM {
		return iso7816.ParseGSMHeader(trace.Data())
	}
	return iso7816.ParseFCP(trace.Data())
}

// ReadTransparent selects a transparent EF and reads its full body,
// chunked to the short-APDU limit. A response shorter than requested is
// an error: silently short files would corrupt fixed-layout decoding.
func (r *Reader) ReadTransparent(path Path) ([]byte, error) {
	fci, err := r.Select(path)
	if err != nil {
		return nil, err
	}
	if fci.Structure != iso7816.Transparent {
		return nil, fmt.Errorf("read %04X: not a transparent file (%s)", fci.FileID, fci.Structure)
	}
	if fci.Size == 0 {
		return nil, fmt.Errorf("read %04X: file has no declared size", fci.FileID)
	}

	s := r.session
	data := make([]byte, 0, fci.Size)
	for offset := 0; offset < fci.Size; {
		want := min(iso7816.MaxShortLe, fci.Size-offset)
		trace, err := s.client.Send(iso7816.ReadBinary(s.cla, offset, want))
		if err != nil {
			return nil, err
		}
		if !trace.IsSuccess() {
			return nil, &ReadError{FileID: fci.FileID, Status: trace.Status()}
		}
		chunk := trace.Data()
		if len(chunk) < want {
			return nil, fmt.Errorf("read %04X: short read, %d of %d bytes at offset %d",
				fci.FileID, len(chunk), want, offset)
		}
		data = append(data, chunk[:want]...)
		offset += want
	}
	return data, nil
}

// Record is one element of a record file: the 1-based index and either
// the record bytes or the read failure.
type Record struct {
	Index int
	Data  []byte
	Err   error
}

// Records selects a record-based EF and returns its control information
// together with a sequence over the records. The sequence is lazy, each
// record is read when reached, and restartable, iterating again rereads
// from the first record. It stays valid only until the next Select on
// this reader. A card reporting fewer records than the declared count
// ends the sequence early instead of failing it, and a record that
// fails to read is yielded with its error while iteration moves on to
// the records after it.
func (r *Reader) Records(path Path) (*iso7816.FileControlInfo, iter.Seq[Record], error) {
	fci, err := r.Select(path)
	if err != nil {
		return nil, nil, err
	}
	if fci.Structure != iso7816.LinearFixed && fci.Structure != iso7816.Cyclic {
		return nil, nil, fmt.Errorf("read %04X: not a record file (%s)", fci.FileID, fci.Structure)
	}

	s := r.session
	seq := func(yield func(Record) bool) {
		for n := 1; n <= fci.RecordCount; n++ {
			trace, err := s.client.Send(iso7816.ReadRecord(s.cla, byte(n), fci.RecordLength))
			if err != nil {
				if !yield(Record{Index: n, Err: err}) {
					return
				}
				continue
			}
			status := trace.Status()
			if status == iso7816.SW_ERR_RECORD_NOT_FOUND || status == iso7816.SW_GSM_OUT_OF_RANGE {
				return
			}
			if !status.IsSuccess() {
				if !yield(Record{Index: n, Err: &ReadError{FileID: fci.FileID, Record: n, Status: status}}) {
					return
				}
				continue
			}
			if !yield(Record{Index: n, Data: trace.Data()}) {
				return
			}
		}
	}
	return fci, seq, nil
}

func pathEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
