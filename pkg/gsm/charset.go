package gsm

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// defaultAlphabet maps the 128 codes of the GSM 7-bit default alphabet
// (3GPP TS 23.038, clause 6.2.1) to their Unicode characters. Code 0x1B
// is the escape to the extension table, rendered as a space when the
// extension is not followed.
var defaultAlphabet = []rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', ' ', 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// Unpack7Bit expands septets packed per TS 23.038 clause 6.1.2.1 into
// characters of the default alphabet. septets limits the number of
// characters produced; pass a negative value to unpack everything the
// buffer holds.
func Unpack7Bit(packed []byte, septets int) string {
	if septets < 0 {
		septets = len(packed) * 8 / 7
	}

	out := make([]rune, 0, septets)
	var acc uint16
	var bits uint
	for _, b := range packed {
		acc |= uint16(b) << bits
		bits += 8
		for bits >= 7 {
			if len(out) == septets {
				return string(out)
			}
			out = append(out, defaultAlphabet[acc&0x7F])
			acc >>= 7
			bits -= 7
		}
	}
	return string(out)
}

// DecodeDefaultAlphabet maps one byte per character through the default
// alphabet, trimming trailing 0xFF padding. Bytes with the high bit set
// (other than padding) have no character assigned and become spaces.
// This is the encoding of unpacked text fields such as alpha identifiers
// and the service provider name.
func DecodeDefaultAlphabet(data []byte) string {
	end := len(data)
	for end > 0 && data[end-1] == 0xFF {
		end--
	}
	var sb strings.Builder
	for _, b := range data[:end] {
		if b < 0x80 {
			sb.WriteRune(defaultAlphabet[b])
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// DecodeAlphaID decodes an alpha identifier field (TS 51.011 annex B).
// The first byte selects the coding: 0x80 introduces UCS2 big-endian
// text, 0x81 the compressed UCS2 form with an 8-bit base pointer, and
// anything else is unpacked default-alphabet text. An all-padding field
// decodes to the empty string.
func DecodeAlphaID(data []byte) (string, error) {
	end := len(data)
	for end > 0 && data[end-1] == 0xFF {
		end--
	}
	data = data[:end]
	if len(data) == 0 {
		return "", nil
	}

	switch data[0] {
	case 0x80:
		return decodeUCS2(data[1:])
	case 0x81:
		return decodeUCS2BasePointer(data)
	default:
		return DecodeDefaultAlphabet(data), nil
	}
}

func decodeUCS2(data []byte) (string, error) {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i])<<8 | uint16(data[i+1])
		if u == 0xFFFF {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// decodeUCS2BasePointer handles the 0x81 coding: a character count, a
// base pointer giving bits 15..7 of a half-page, then one byte per
// character where the high bit selects between the default alphabet and
// an offset from the base pointer.
func decodeUCS2BasePointer(data []byte) (string, error) {
	if len(data) < 3 {
		return "", fmt.Errorf("alpha identifier: UCS2 base pointer form needs at least 3 bytes, have %d", len(data))
	}
	count := int(data[1])
	base := rune(data[2]) << 7
	chars := data[3:]
	if count > len(chars) {
		return "", fmt.Errorf("alpha identifier: UCS2 base pointer form declares %d characters, only %d present", count, len(chars))
	}
	var sb strings.Builder
	for _, b := range chars[:count] {
		if b < 0x80 {
			sb.WriteRune(defaultAlphabet[b])
		} else {
			sb.WriteRune(base + rune(b&0x7F))
		}
	}
	return sb.String(), nil
}
