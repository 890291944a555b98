package iso7816

import "fmt"

// READ COMMAND LOGIC:
//
// READ BINARY (INS 'B0') reads bytes from the currently selected transparent
// EF. P1-P2 carry the 15-bit offset (the top bit of P1 would switch to SFI
// addressing, which this package does not use).
//
// READ RECORD (INS 'B2') reads one record of the currently selected
// linear-fixed or cyclic EF. P1 is the record number, P2 the reference
// control: bits 8-4 SFI (0 = current EF), bit 3 set = reference by number,
// bits 2-1 the occurrence mode.

// ReadRecordMode defines how to interpret P1 and which record(s) to read.
type ReadRecordMode byte

const (
	// P1 is a record NUMBER (Bit 3 = 1)
	RefByNum_ReadP1        ReadRecordMode = 0b100
	RefByNum_ReadAllFromP1 ReadRecordMode = 0b101
)

func (m ReadRecordMode) String() string {
	switch m {
	case RefByNum_ReadP1:
		return "Ref Num: Read Record P1"
	case RefByNum_ReadAllFromP1:
		return "Ref Num: Read All from P1"
	default:
		return fmt.Sprintf("Unknown Mode (0x%X)", byte(m))
	}
}

// ReadBinary creates a READ BINARY command for the currently selected
// transparent EF. The offset must fit in 15 bits.
func ReadBinary(cla Class, offset, length int) *CommandAPDU {
	ins, _ := NewInstruction(INS_READ_BINARY)
	p1 := byte(offset>>8) & 0x7F
	p2 := byte(offset)
	return NewCommandAPDU(cla, ins, p1, p2, nil, length)
}

// ReadRecord creates a READ RECORD command for one absolute record number
// of the currently selected EF. The expected record length must be passed
// as Le; classic GSM cards reject Le=0 on record reads.
func ReadRecord(cla Class, recordNumber byte, recordLength int) *CommandAPDU {
	ins, _ := NewInstruction(INS_READ_RECORD)
	p2 := byte(RefByNum_ReadP1) // SFI 0: current EF
	return NewCommandAPDU(cla, ins, recordNumber, p2, nil, recordLength)
}
