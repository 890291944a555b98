package gsm

import (
	"testing"

	"github.com/gregLibert/sim-card/pkg/tlv"
)

func TestUnpack7Bit(t *testing.T) {
	tests := []struct {
		name    string
		packed  []byte
		septets int
		want    string
	}{
		{
			name:    "hellohello",
			packed:  tlv.Hex("E8 32 9B FD 46 97 D9 EC 37"),
			septets: 10,
			want:    "hellohello",
		},
		{
			name:    "two characters in two bytes",
			packed:  tlv.Hex("C8 34"),
			septets: 2,
			want:    "Hi",
		},
		{
			name:    "septet count truncates",
			packed:  tlv.Hex("E8 32 9B FD 46 97 D9 EC 37"),
			septets: 5,
			want:    "hello",
		},
		{
			name:    "negative count unpacks everything",
			packed:  tlv.Hex("C8 34"),
			septets: -1,
			want:    "Hi",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Unpack7Bit(test.packed, test.septets); got != test.want {
				t.Errorf("Unpack7Bit() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestDecodeDefaultAlphabet(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "plain name with padding",
			data: append([]byte("Vodafone"), 0xFF, 0xFF),
			want: "Vodafone",
		},
		{
			name: "national characters",
			data: []byte{0x00, 0x01, 0x02},
			want: "@£$",
		},
		{
			name: "all padding",
			data: tlv.Hex("FF FF FF"),
			want: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DecodeDefaultAlphabet(test.data); got != test.want {
				t.Errorf("DecodeDefaultAlphabet() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestDecodeAlphaID(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{
			name: "default alphabet",
			data: append([]byte("Office"), 0xFF, 0xFF),
			want: "Office",
		},
		{
			name: "UCS2 big endian",
			data: tlv.Hex("80 00 48 00 69 FF FF"),
			want: "Hi",
		},
		{
			name: "UCS2 base pointer mixes both alphabets",
			data: tlv.Hex("81 03 02 41 E5 E6"),
			want: "Aťŧ",
		},
		{
			name: "all padding is empty",
			data: tlv.Hex("FF FF FF FF"),
			want: "",
		},
		{
			name:    "truncated base pointer form",
			data:    tlv.Hex("81 05"),
			wantErr: true,
		},
		{
			name:    "base pointer count exceeds data",
			data:    tlv.Hex("81 09 02 41"),
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DecodeAlphaID(test.data)
			if (err != nil) != test.wantErr {
				t.Fatalf("DecodeAlphaID() error = %v, wantErr %v", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("DecodeAlphaID() = %q, want %q", got, test.want)
			}
		})
	}
}
