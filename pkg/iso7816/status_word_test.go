package iso7816

import (
	"strings"
	"testing"
)

func TestStatusWord_ResponseAvailable(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		available bool
		count     int
	}{
		{NewStatusWord(0x61, 0x10), true, 16},
		{NewStatusWord(0x9F, 0x0F), true, 15}, // GSM dialect
		{NewStatusWord(0x61, 0x00), true, 256},
		{SW_NO_ERROR, false, 0},
		{SW_ERR_FILE_NOT_FOUND, false, 0},
	}

	for _, tt := range tests {
		if got := tt.sw.IsResponseAvailable(); got != tt.available {
			t.Errorf("SW %04X IsResponseAvailable = %v, want %v", uint16(tt.sw), got, tt.available)
		}
		if got := tt.sw.AvailableBytes(); got != tt.count {
			t.Errorf("SW %04X AvailableBytes = %d, want %d", uint16(tt.sw), got, tt.count)
		}
	}
}

func TestStatusWord_Counter(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		isCounter bool
	}{
		{NewStatusWord(0x63, 0xC0), true},  // Counter 0
		{NewStatusWord(0x63, 0xCF), true},  // Counter 15
		{NewStatusWord(0x63, 0x00), false}, // Not a counter
		{NewStatusWord(0x63, 0x81), false}, // File filled
	}

	for _, tt := range tests {
		if got := tt.sw.IsCounter(); got != tt.isCounter {
			t.Errorf("SW %X IsCounter = %v, want %v", uint16(tt.sw), got, tt.isCounter)
		}
	}
}

func TestStatusWord_Classification(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		isSuccess bool
		isWarning bool
		isError   bool
	}{
		{SW_NO_ERROR, true, false, false},
		{NewStatusWord(0x61, 0x10), true, false, false}, // Bytes Available
		{NewStatusWord(0x9F, 0x16), true, false, false}, // Bytes Available (GSM)
		{NewStatusWord(0x91, 0x00), true, false, false}, // GSM proactive pending
		{SW_WARN_EOF_REACHED, false, true, false},
		{NewStatusWord(0x63, 0xC2), false, true, false}, // Counter
		{SW_ERR_WRONG_LENGTH, false, false, true},
		{SW_ERR_FILE_NOT_FOUND, false, false, true},
		{SW_GSM_ACCESS_COND, false, false, true},
	}

	for _, tt := range tests {
		if got := tt.sw.IsSuccess(); got != tt.isSuccess {
			t.Errorf("SW %X IsSuccess = %v, want %v", tt.sw, got, tt.isSuccess)
		}
		if got := tt.sw.IsWarning(); got != tt.isWarning {
			t.Errorf("SW %X IsWarning = %v, want %v", tt.sw, got, tt.isWarning)
		}
		if got := tt.sw.IsError(); got != tt.isError {
			t.Errorf("SW %X IsError = %v, want %v", tt.sw, got, tt.isError)
		}
	}
}

func TestStatusWord_FieldPredicates(t *testing.T) {
	tests := []struct {
		sw       StatusWord
		notFound bool
		security bool
	}{
		{SW_ERR_FILE_NOT_FOUND, true, false},
		{SW_ERR_RECORD_NOT_FOUND, true, false},
		{SW_GSM_NOT_FOUND, true, false},
		{SW_GSM_OUT_OF_RANGE, true, false},
		{SW_ERR_SECURITY_STATUS_NOT_SAT, false, true},
		{SW_GSM_ACCESS_COND, false, true},
		{SW_GSM_CHV_BLOCKED, false, true},
		{SW_NO_ERROR, false, false},
		{SW_ERR_WRONG_LENGTH, false, false},
	}

	for _, tt := range tests {
		if got := tt.sw.IsFileNotFound(); got != tt.notFound {
			t.Errorf("SW %04X IsFileNotFound = %v, want %v", uint16(tt.sw), got, tt.notFound)
		}
		if got := tt.sw.IsSecurityNotSatisfied(); got != tt.security {
			t.Errorf("SW %04X IsSecurityNotSatisfied = %v, want %v", uint16(tt.sw), got, tt.security)
		}
	}
}

func TestStatusWord_Verbose(t *testing.T) {
	tests := []struct {
		sw       StatusWord
		contains string
	}{
		{NewStatusWord(0x63, 0xC3), "counter = 3"},
		{NewStatusWord(0x61, 0x20), "32 bytes available"},
		{NewStatusWord(0x9F, 0x0F), "15 bytes available"},
		{NewStatusWord(0x6C, 0x05), "correct Le is 5"},
		{SW_ERR_FILE_NOT_FOUND, "SW_ERR_FILE_NOT_FOUND"},
		{SW_GSM_ACCESS_COND, "SW_GSM_ACCESS_COND"},
		{NewStatusWord(0x6A, 0x99), "Wrong parameters"}, // unnamed, category fallback
	}

	for _, tt := range tests {
		got := tt.sw.Verbose()
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Verbose(%X) = %q; want containing %q", tt.sw, got, tt.contains)
		}
	}
}
