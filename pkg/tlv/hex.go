package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex builds a byte slice from hex strings, ignoring spaces, so APDUs
// and elementary-file bodies can be written one field per argument:
//
//	tlv.Hex("A0 A4 00 00 02", "6F 07")
//
// It panics on malformed input; the arguments are always literals.
func Hex(parts ...string) []byte {
	joined := strings.ReplaceAll(strings.Join(parts, ""), " ", "")
	data, err := hex.DecodeString(joined)
	if err != nil {
		panic(fmt.Sprintf("invalid hex %q: %v", joined, err))
	}
	return data
}
