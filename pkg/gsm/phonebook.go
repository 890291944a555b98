package gsm

import "fmt"

// DialEntry is one decoded phonebook record (EF_ADN, EF_FDN, EF_SDN,
// EF_LND or EF_MSISDN, which all share the same layout).
type DialEntry struct {
	Name   string
	Number string
}

// dialTrailerLen is the fixed tail of a phonebook record: length byte,
// TON/NPI, 10 bytes of BCD, capability pointer, extension pointer.
const dialTrailerLen = 14

// DecodeDialRecord decodes one phonebook record: an alpha identifier
// followed by the 14-byte dialling-number trailer. An all-filler record
// is a free slot and decodes to (nil, nil).
func DecodeDialRecord(data []byte) (*DialEntry, error) {
	if isBlank(data) {
		return nil, nil
	}
	if len(data) < dialTrailerLen {
		return nil, fmt.Errorf("phonebook record: need at least %d bytes, have %d", dialTrailerLen, len(data))
	}
	alpha := data[:len(data)-dialTrailerLen]
	trailer := data[len(data)-dialTrailerLen:]

	name, err := DecodeAlphaID(alpha)
	if err != nil {
		return nil, fmt.Errorf("phonebook record: %w", err)
	}
	// The trailer's number field is the length byte, TON/NPI and BCD
	// digits; the capability and extension pointers are not dialled.
	number, err := DialNumber(trailer[:dialTrailerLen-2])
	if err != nil {
		return nil, fmt.Errorf("phonebook record: %w", err)
	}
	if name == "" && number == "" {
		return nil, nil
	}
	return &DialEntry{Name: name, Number: number}, nil
}

// smspTrailerLen is the fixed tail of an EF_SMSP record: parameter
// indicators, TP-Destination-Address, service centre address, protocol
// identifier, data coding scheme and validity period.
const smspTrailerLen = 28

// DecodeSMSP decodes one EF_SMSP record and returns the service centre
// address it carries. A free record or one without a service centre
// decodes to the empty string.
func DecodeSMSP(data []byte) (string, error) {
	if isBlank(data) {
		return "", nil
	}
	if len(data) < smspTrailerLen {
		return "", fmt.Errorf("SMSP record: need at least %d bytes, have %d", smspTrailerLen, len(data))
	}
	trailer := data[len(data)-smspTrailerLen:]
	// Parameter indicator bit 2 set means the service centre address
	// is absent from this record.
	if trailer[0]&0x02 != 0 {
		return "", nil
	}
	sc := trailer[13:25]
	if isBlank(sc) {
		return "", nil
	}
	number, err := DialNumber(sc)
	if err != nil {
		return "", fmt.Errorf("SMSP record: %w", err)
	}
	return number, nil
}
