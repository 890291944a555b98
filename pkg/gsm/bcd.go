package gsm

import (
	"fmt"
	"strings"

	"github.com/gregLibert/sim-card/pkg/bits"
)

// bcdDigits maps BCD nibbles to their dial-string characters. 0xA..0xE
// carry the extended DTMF digits of TS 51.011 clause 10.5.1; 0xF is the
// filler nibble and terminates a number.
const bcdDigits = "0123456789*#pw+"

// tonInternational marks a number stored without its leading "+"
// (TS 24.008 type-of-number international, NPI ISDN).
const tonInternational = 0x91

// SwappedDigits decodes nibble-swapped BCD: within each byte the low
// nibble holds the earlier digit. Decoding stops at the first filler
// nibble (0xF).
func SwappedDigits(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		for _, nibble := range [2]byte{bits.Low(b), bits.High(b)} {
			if nibble == 0xF {
				return sb.String()
			}
			sb.WriteByte(bcdDigits[nibble])
		}
	}
	return sb.String()
}

// DialNumber decodes a dialling number field of the TS 51.011 clause
// 10.5.1 shape: a byte counting the following used bytes, a TON/NPI
// byte, then up to ten bytes of swapped BCD. International numbers are
// rendered with a leading "+". An all-filler field decodes to the empty
// string.
func DialNumber(data []byte) (string, error) {
	if len(data) < 2 {
		return "", fmt.Errorf("dialling number: need at least 2 bytes, have %d", len(data))
	}
	used := int(data[0])
	if used == 0 || used == 0xFF {
		return "", nil
	}
	// used counts the TON/NPI byte plus the BCD bytes.
	if used > len(data)-1 {
		return "", fmt.Errorf("dialling number: length byte %d exceeds field of %d bytes", used, len(data)-1)
	}
	ton := data[1]
	digits := SwappedDigits(data[2 : 1+used])
	if digits == "" {
		return "", nil
	}
	if ton == tonInternational && !strings.HasPrefix(digits, "+") {
		digits = "+" + digits
	}
	return digits, nil
}

// isBlank reports whether every byte of data is the erased-state filler
// 0xFF. Unused records and fields read back as all filler.
func isBlank(data []byte) bool {
	for _, b := range data {
		if b != 0xFF {
			return false
		}
	}
	return true
}
