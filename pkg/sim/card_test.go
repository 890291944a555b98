package sim

import (
	"bytes"
	"fmt"

	"github.com/gregLibert/sim-card/pkg/iso7816"
)

// fakeCard emulates the transport behavior of a card for tests: classic
// SIMs answer class A0 with 9FXX plus GET RESPONSE and fixed select
// headers, UICCs answer class 00 with 61XX and FCP templates. Commands
// for the other dialect's class byte are rejected with 6E00.
type fakeCard struct {
	uicc  bool
	aid   []byte
	files map[uint16]*fakeFile

	current    *fakeFile
	pending    []byte
	transcript []string
}

type fileKind int

const (
	kindDir fileKind = iota
	kindTransparent
	kindLinearFixed
)

type fakeFile struct {
	id      uint16
	kind    fileKind
	body    []byte
	records [][]byte

	selectSW iso7816.StatusWord // nonzero overrides the SELECT answer
	readSW   iso7816.StatusWord // nonzero overrides every read answer

	// recordSW overrides the answer for single records, to model cards
	// where one slot is broken while the rest read fine.
	recordSW map[int]iso7816.StatusWord

	// declaredCount inflates the record count advertised by SELECT, to
	// model cards whose headers promise more records than they serve.
	declaredCount int
}

func (f *fakeFile) recordCount() int {
	if f.declaredCount > 0 {
		return f.declaredCount
	}
	return len(f.records)
}

func sw(status iso7816.StatusWord) []byte {
	return []byte{status.SW1(), status.SW2()}
}

func (c *fakeCard) Transmit(cmd []byte) ([]byte, error) {
	c.transcript = append(c.transcript, fmt.Sprintf("% X", cmd))
	if len(cmd) < 4 {
		return nil, fmt.Errorf("malformed command: % X", cmd)
	}

	cla, ins := cmd[0], cmd[1]
	if c.uicc && cla == iso7816.ClaGSM || !c.uicc && cla == iso7816.ClaUICC {
		return sw(iso7816.SW_ERR_CLA_NOT_SUPPORTED), nil
	}

	switch ins {
	case 0xA4:
		return c.doSelect(cmd), nil
	case 0xC0:
		return append(c.pending, sw(iso7816.SW_NO_ERROR)...), nil
	case 0xB0:
		return c.doReadBinary(cmd), nil
	case 0xB2:
		return c.doReadRecord(cmd), nil
	default:
		return sw(iso7816.SW_ERR_INS_INVALID), nil
	}
}

// answer stages data behind the dialect's response-available status.
func (c *fakeCard) answer(data []byte) []byte {
	c.pending = data
	if c.uicc {
		return []byte{0x61, byte(len(data))}
	}
	return []byte{0x9F, byte(len(data))}
}

func (c *fakeCard) doSelect(cmd []byte) []byte {
	data := cmd[5:]

	if cmd[2] == 0x04 { // by AID
		if c.uicc && bytes.Equal(data, c.aid) {
			c.current = nil
			return c.answer([]byte{0x62, 0x00})
		}
		return sw(iso7816.SW_ERR_FILE_NOT_FOUND)
	}

	id := uint16(data[0])<<8 | uint16(data[1])
	f, ok := c.files[id]
	if !ok {
		if c.uicc {
			return sw(iso7816.SW_ERR_FILE_NOT_FOUND)
		}
		return sw(iso7816.SW_GSM_NOT_FOUND)
	}
	if f.selectSW != 0 {
		return sw(f.selectSW)
	}
	c.current = f
	if c.uicc {
		return c.answer(f.fcp())
	}
	return c.answer(f.gsmHeader())
}

func (c *fakeCard) doReadBinary(cmd []byte) []byte {
	f := c.current
	if f == nil || f.kind != kindTransparent {
		return sw(iso7816.SW_GSM_NO_EF_SELECTED)
	}
	if f.readSW != 0 {
		return sw(f.readSW)
	}
	offset := int(cmd[2])<<8 | int(cmd[3])
	length := int(cmd[4])
	if length == 0 {
		length = 256
	}
	if offset+length > len(f.body) {
		length = len(f.body) - offset
	}
	return append(append([]byte{}, f.body[offset:offset+length]...), sw(iso7816.SW_NO_ERROR)...)
}

func (c *fakeCard) doReadRecord(cmd []byte) []byte {
	f := c.current
	if f == nil || f.kind != kindLinearFixed {
		return sw(iso7816.SW_GSM_NO_EF_SELECTED)
	}
	if f.readSW != 0 {
		return sw(f.readSW)
	}
	rec := int(cmd[2])
	if status, ok := f.recordSW[rec]; ok {
		return sw(status)
	}
	if rec < 1 || rec > len(f.records) {
		if c.uicc {
			return sw(iso7816.SW_ERR_RECORD_NOT_FOUND)
		}
		return sw(iso7816.SW_GSM_OUT_OF_RANGE)
	}
	return append(append([]byte{}, f.records[rec-1]...), sw(iso7816.SW_NO_ERROR)...)
}

// gsmHeader builds the TS 51.011 select response for this file.
func (f *fakeFile) gsmHeader() []byte {
	h := make([]byte, 15)
	size := len(f.body)
	if f.kind == kindLinearFixed && len(f.records) > 0 {
		size = f.recordCount() * len(f.records[0])
	}
	h[2], h[3] = byte(size>>8), byte(size)
	h[4], h[5] = byte(f.id>>8), byte(f.id)
	switch f.kind {
	case kindDir:
		h[6] = 0x02
	case kindTransparent:
		h[6], h[13] = 0x04, 0x00
	case kindLinearFixed:
		h[6], h[13] = 0x04, 0x01
		h[14] = byte(len(f.records[0]))
	}
	return h
}

// fcp builds the TS 102 221 FCP template for this file.
func (f *fakeFile) fcp() []byte {
	var inner []byte
	switch f.kind {
	case kindDir:
		inner = []byte{0x82, 0x02, 0x78, 0x21}
	case kindTransparent:
		size := len(f.body)
		inner = []byte{
			0x82, 0x02, 0x41, 0x21,
			0x83, 0x02, byte(f.id >> 8), byte(f.id),
			0x80, 0x02, byte(size >> 8), byte(size),
		}
	case kindLinearFixed:
		rl := len(f.records[0])
		inner = []byte{
			0x82, 0x05, 0x42, 0x21, byte(rl >> 8), byte(rl), byte(f.recordCount()),
			0x83, 0x02, byte(f.id >> 8), byte(f.id),
		}
	}
	return append([]byte{0x62, byte(len(inner))}, inner...)
}

// countPrefix counts transcript commands starting with the given hex
// prefix, spaces included.
func (c *fakeCard) countPrefix(prefix string) int {
	n := 0
	for _, line := range c.transcript {
		if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
