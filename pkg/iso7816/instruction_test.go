package iso7816

import (
	"strings"
	"testing"
)

func TestNewInstruction(t *testing.T) {
	tests := []struct {
		ins     InsCode
		wantErr bool
		berTLV  bool
	}{
		{INS_SELECT, false, false},
		{INS_READ_BINARY, false, false},
		{INS_READ_BINARY_BER, false, true},
		{INS_READ_RECORD, false, false},
		{INS_GET_RESPONSE, false, false},
		{0x60, true, false}, // reserved 6X
		{0x91, true, false}, // reserved 9X
	}

	for _, tt := range tests {
		got, err := NewInstruction(tt.ins)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewInstruction(0x%02X) error = %v, wantErr %v", byte(tt.ins), err, tt.wantErr)
			continue
		}
		if err == nil && got.IsBERTLV != tt.berTLV {
			t.Errorf("NewInstruction(0x%02X).IsBERTLV = %v, want %v", byte(tt.ins), got.IsBERTLV, tt.berTLV)
		}
	}
}

func TestInsCode_String(t *testing.T) {
	if got := INS_SELECT.String(); got != "SELECT" {
		t.Errorf("String() = %q; want SELECT", got)
	}
	if got := InsCode(0x42).String(); !strings.Contains(got, "0x42") {
		t.Errorf("unknown code String() = %q; want hex fallback", got)
	}
}
