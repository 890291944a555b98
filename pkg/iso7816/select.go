package iso7816

import (
	"fmt"
)

// SELECT COMMAND LOGIC (ISO 7816-4 / ETSI TS 102 221):
// The SELECT command (INS 'A4') opens a file (MF, DF, or EF) or an application.
//
// P1 (Selection Method):
// Indicates how the file is targeted (by ID, by Name/AID, by Path, etc.).
//
// P2 (Selection Control):
// Controls the response content and the file occurrence.
// - Bits 4-3: Response Type (FCI, FCP, FMD, or No Data).
// - Bits 2-1: Occurrence (First, Last, Next, Previous).
//
// Classic GSM cards (class A0) ignore P2 and always return their fixed
// header; UICC/USIM cards (class 00) are asked for the FCP template.

// SelectionMethod defines how the file is targeted (P1).
type SelectionMethod byte

const (
	SelectByFileID          SelectionMethod = 0x00
	SelectChildDF           SelectionMethod = 0x01
	SelectParentDF          SelectionMethod = 0x03
	SelectByDFName          SelectionMethod = 0x04 // Select by AID
	SelectPathFromMF        SelectionMethod = 0x08
	SelectPathFromCurrentDF SelectionMethod = 0x09
)

func (s SelectionMethod) String() string {
	switch s {
	case SelectByFileID:
		return "Select by File ID"
	case SelectChildDF:
		return "Select Child DF"
	case SelectParentDF:
		return "Select Parent DF"
	case SelectByDFName:
		return "Select by DF Name (AID)"
	case SelectPathFromMF:
		return "Select Path from MF"
	case SelectPathFromCurrentDF:
		return "Select Path from Current DF"
	default:
		return fmt.Sprintf("Unknown Method (0x%02X)", byte(s))
	}
}

// SelectionControl defines what data the card should return (Bits 3-4 of P2).
type SelectionControl byte

const (
	ReturnFCI    SelectionControl = 0b0000_00_00
	ReturnFCP    SelectionControl = 0b0000_01_00
	ReturnFMD    SelectionControl = 0b0000_10_00
	ReturnNoData SelectionControl = 0b0000_11_00
)

func (s SelectionControl) String() string {
	switch s {
	case ReturnFCI:
		return "Return FCI"
	case ReturnFCP:
		return "Return FCP"
	case ReturnFMD:
		return "Return FMD"
	case ReturnNoData:
		return "No Response Data"
	default:
		return "Unknown Control"
	}
}

// NewSelectCommand creates a generic SELECT command.
func NewSelectCommand(
	cla Class,
	method SelectionMethod,
	ctrl SelectionControl,
	data []byte,
) *CommandAPDU {
	// Classic GSM: P2 must be 00, the card answers 9F XX and the response
	// header is fetched with GET RESPONSE.
	p2 := byte(ctrl)
	if cla.Raw == ClaGSM {
		p2 = 0x00
	}

	ins, _ := NewInstruction(INS_SELECT)

	// T=0 Protocol Compatibility:
	// - CASE 3 (Sending Data): Le must stay 0; Lc and Le cannot be sent
	//   simultaneously. The card answers '61 XX'/'9F XX' and the Client
	//   fetches the payload.
	return NewCommandAPDU(cla, ins, byte(method), p2, data, 0)
}

// SelectFileID creates a SELECT command targeting a 2-byte file identifier
// (MF, DF or EF) relative to the current directory.
func SelectFileID(cla Class, fileID uint16) *CommandAPDU {
	data := []byte{byte(fileID >> 8), byte(fileID)}
	return NewSelectCommand(cla, SelectByFileID, ReturnFCP, data)
}

// SelectByAID creates a SELECT command to open an application (ADF) by its
// Application Identifier.
func SelectByAID(cla Class, aid []byte) *CommandAPDU {
	return NewSelectCommand(cla, SelectByDFName, ReturnFCP, aid)
}
