package iso7816

import (
	"bytes"
	"testing"

	"github.com/gregLibert/sim-card/pkg/tlv"
)

func TestReadBinary(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *CommandAPDU
		expected []byte
	}{
		{
			name:     "GSM read 10 bytes at offset 0",
			cmd:      ReadBinary(MustClass(ClaGSM), 0, 10),
			expected: tlv.Hex("A0 B0 00 00 0A"),
		},
		{
			name:     "Offset 0x0123, full chunk",
			cmd:      ReadBinary(MustClass(ClaUICC), 0x0123, MaxShortLe),
			expected: tlv.Hex("00 B0 01 23 00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error: %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("encoded = % X; want % X", got, tt.expected)
			}
		})
	}
}

func TestReadRecord(t *testing.T) {
	cmd := ReadRecord(MustClass(ClaGSM), 3, 34)

	got, err := cmd.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}

	// P2=04: current EF, absolute record number
	expected := tlv.Hex("A0 B2 03 04 22")
	if !bytes.Equal(got, expected) {
		t.Errorf("encoded = % X; want % X", got, expected)
	}
}
