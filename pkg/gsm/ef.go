package gsm

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gregLibert/sim-card/pkg/bits"
)

// DecodeICCID decodes EF_ICCID: up to 10 bytes of nibble-swapped BCD
// giving the 19 or 20 digit card serial number. Shorter results are
// reported as errors rather than passed through.
func DecodeICCID(data []byte) (string, error) {
	if isBlank(data) {
		return "", fmt.Errorf("ICCID: field is blank")
	}
	digits := SwappedDigits(data)
	if len(digits) < 19 || len(digits) > 20 {
		return "", fmt.Errorf("ICCID: decoded %d digits, want 19 or 20 (raw % X)", len(digits), data)
	}
	return digits, nil
}

// Identity is the decoded EF_IMSI together with its home-network split.
// The MNC length is not recoverable from the IMSI itself; see SplitIMSI.
type Identity struct {
	IMSI string
	MCC  string
	MNC  string
	MSIN string
}

// DecodeIMSI decodes EF_IMSI (TS 51.011 clause 10.3.2). Byte 0 counts
// the bytes that follow. The low nibble of byte 1 carries the identity
// tag and digit-count parity and never contributes a digit; the high
// nibble is the first digit, with the rest in swapped BCD.
func DecodeIMSI(data []byte) (string, error) {
	if len(data) < 2 {
		return "", fmt.Errorf("IMSI: need at least 2 bytes, have %d", len(data))
	}
	if isBlank(data) {
		return "", fmt.Errorf("IMSI: field is blank")
	}
	used := int(data[0])
	if used < 1 || used > len(data)-1 {
		return "", fmt.Errorf("IMSI: length byte %d exceeds field of %d bytes", used, len(data)-1)
	}
	first := bits.High(data[1])
	if first > 9 {
		return "", fmt.Errorf("IMSI: first digit nibble %X is not decimal", first)
	}
	digits := string(bcdDigits[first]) + SwappedDigits(data[2:1+used])
	if strings.ContainsAny(digits, "*#pw+") {
		return "", fmt.Errorf("IMSI: non-decimal digit in % X", data[:1+used])
	}
	return digits, nil
}

// SplitIMSI splits an IMSI digit string into MCC, MNC and MSIN. The MCC
// is always three digits; mncLen must be 2 or 3 and comes from EF_AD
// when the card provides it, otherwise callers fall back to 2.
func SplitIMSI(imsi string, mncLen int) (Identity, error) {
	if mncLen != 2 && mncLen != 3 {
		return Identity{}, fmt.Errorf("IMSI split: MNC length %d, want 2 or 3", mncLen)
	}
	if len(imsi) < 3+mncLen {
		return Identity{}, fmt.Errorf("IMSI split: %q too short for a 3-digit MCC and %d-digit MNC", imsi, mncLen)
	}
	return Identity{
		IMSI: imsi,
		MCC:  imsi[:3],
		MNC:  imsi[3 : 3+mncLen],
		MSIN: imsi[3+mncLen:],
	}, nil
}

// ServiceProviderName is the decoded EF_SPN.
type ServiceProviderName struct {
	// DisplayCondition is the raw condition bitmask from byte 0. Bit 1
	// requires displaying the name on the home network, bit 2 forbids
	// displaying the registered PLMN.
	DisplayCondition byte
	Name             string
}

// DecodeSPN decodes EF_SPN: a display-condition byte followed by the
// provider name in the GSM default alphabet, one character per byte,
// padded with 0xFF.
func DecodeSPN(data []byte) (ServiceProviderName, error) {
	if len(data) < 2 {
		return ServiceProviderName{}, fmt.Errorf("SPN: need at least 2 bytes, have %d", len(data))
	}
	if isBlank(data) {
		return ServiceProviderName{}, fmt.Errorf("SPN: field is blank")
	}
	return ServiceProviderName{
		DisplayCondition: data[0],
		Name:             DecodeDefaultAlphabet(data[1:]),
	}, nil
}

// PLMN is one public land mobile network code.
type PLMN struct {
	MCC string
	MNC string
}

func (p PLMN) String() string { return p.MCC + " " + p.MNC }

// decodePLMN decodes the 3-byte PLMN coding of TS 24.008 clause
// 10.5.1.3. A 0xF in the third MNC digit position marks a 2-digit MNC.
func decodePLMN(b []byte) (PLMN, error) {
	nibbles := [6]byte{
		bits.Low(b[0]), bits.High(b[0]), bits.Low(b[1]), // MCC digits 1..3
		bits.Low(b[2]), bits.High(b[2]), bits.High(b[1]), // MNC digits 1..3
	}
	var mcc, mnc strings.Builder
	for i, n := range nibbles {
		if i >= 3 && n == 0xF {
			break
		}
		if n > 9 {
			return PLMN{}, fmt.Errorf("PLMN: nibble %X in % X is not decimal", n, b)
		}
		if i < 3 {
			mcc.WriteByte(bcdDigits[n])
		} else {
			mnc.WriteByte(bcdDigits[n])
		}
	}
	return PLMN{MCC: mcc.String(), MNC: mnc.String()}, nil
}

// DecodePLMNList decodes a sequence of 3-byte PLMN entries, as stored
// in EF_PLMNsel, EF_FPLMN and EF_PLMNwAcT. Decoding stops at the first
// all-filler entry or at the end of the buffer. Consecutive duplicates
// are kept. An undecodable entry fails the whole list.
func DecodePLMNList(data []byte) ([]PLMN, error) {
	var list []PLMN
	for i := 0; i+3 <= len(data); i += 3 {
		entry := data[i : i+3]
		if isBlank(entry) {
			break
		}
		p, err := decodePLMN(entry)
		if err != nil {
			return nil, fmt.Errorf("PLMN list entry %d: %w", i/3, err)
		}
		list = append(list, p)
	}
	return list, nil
}

// Location update statuses stored in the last byte of EF_LOCI
// (TS 51.011 clause 10.3.17).
var lociStatusNames = map[byte]string{
	0: "updated",
	1: "not updated",
	2: "PLMN not allowed",
	3: "location area not allowed",
}

// LocationInfo is the decoded EF_LOCI.
type LocationInfo struct {
	TMSI   string // 4 bytes, kept as hex
	MCC    string
	MNC    string
	LAC    uint16
	Status string
}

// DecodeLOCI decodes EF_LOCI: TMSI, the location area identity (MCC,
// MNC, LAC big-endian) and the update status.
func DecodeLOCI(data []byte) (LocationInfo, error) {
	if len(data) < 11 {
		return LocationInfo{}, fmt.Errorf("LOCI: need 11 bytes, have %d", len(data))
	}
	if isBlank(data) {
		return LocationInfo{}, fmt.Errorf("LOCI: field is blank")
	}
	plmn, err := decodePLMN(data[4:7])
	if err != nil {
		return LocationInfo{}, fmt.Errorf("LOCI: %w", err)
	}
	status, ok := lociStatusNames[data[10]&0x07]
	if !ok {
		status = fmt.Sprintf("reserved (%#02x)", data[10])
	}
	return LocationInfo{
		TMSI:   strings.ToUpper(hex.EncodeToString(data[:4])),
		MCC:    plmn.MCC,
		MNC:    plmn.MNC,
		LAC:    uint16(data[7])<<8 | uint16(data[8]),
		Status: status,
	}, nil
}

// DecodeACC decodes EF_ACC: a 16-bit big-endian bitmask of the access
// control classes (0..15) allocated to the subscriber.
func DecodeACC(data []byte) ([]int, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("ACC: need 2 bytes, have %d", len(data))
	}
	mask := uint16(data[0])<<8 | uint16(data[1])
	var classes []int
	for class := 0; class < 16; class++ {
		if mask&(1<<class) != 0 {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

// UE operation modes from EF_AD byte 0 (TS 51.011 clause 10.3.18).
var operationModeNames = map[byte]string{
	0x00: "normal",
	0x80: "type approval",
	0x01: "normal + specific facilities",
	0x81: "type approval + specific facilities",
	0x02: "maintenance (off line)",
	0x04: "cell test",
}

// AdminData is the decoded EF_AD.
type AdminData struct {
	OperationMode string
	// MNCLength is the operator-declared MNC digit count from byte 3,
	// or 0 when the card predates that byte or left it unset.
	MNCLength int
}

// DecodeAD decodes EF_AD. The MNC length byte is optional; when present
// and valid it settles the 2-versus-3 digit MNC ambiguity for this card.
func DecodeAD(data []byte) (AdminData, error) {
	if len(data) < 1 {
		return AdminData{}, fmt.Errorf("AD: field is empty")
	}
	mode, ok := operationModeNames[data[0]]
	if !ok {
		mode = fmt.Sprintf("unknown (%#02x)", data[0])
	}
	ad := AdminData{OperationMode: mode}
	if len(data) >= 4 {
		if n := int(bits.Low(data[3])); n == 2 || n == 3 {
			ad.MNCLength = n
		}
	}
	return ad, nil
}

// DecodePhase decodes EF_Phase into a human-readable SIM phase name.
func DecodePhase(data []byte) (string, error) {
	if len(data) < 1 {
		return "", fmt.Errorf("Phase: field is empty")
	}
	switch data[0] {
	case 0x00:
		return "phase 1", nil
	case 0x02:
		return "phase 2", nil
	case 0x03:
		return "phase 2+", nil
	default:
		return "", fmt.Errorf("Phase: unknown value %#02x", data[0])
	}
}

// DecodeHPLMNPeriod decodes EF_HPLMN, the home-network search period,
// into minutes. The stored value counts intervals of 6 minutes; 0
// means no periodic search.
func DecodeHPLMNPeriod(data []byte) (int, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("HPLMN: field is empty")
	}
	if data[0] == 0xFF {
		return 0, fmt.Errorf("HPLMN: field is blank")
	}
	return int(data[0]) * 6, nil
}
