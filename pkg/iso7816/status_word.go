package iso7816

import (
	"fmt"

	"github.com/gregLibert/sim-card/pkg/bits"
)

// Dynamic Status Word Logic:
//
// While most Status Words (SW) are static 2-byte values (e.g., 0x9000), the
// standards define ranges where the value is dynamic and carries context:
//
// 1. '61XX' (SW1=0x61): Process Completed, Response Available.
//    XX indicates the number of extra bytes available for retrieval (GET RESPONSE).
//
// 2. '9FXX' (SW1=0x9F): GSM dialect of 61XX (ETSI TS 51.011). Classic SIMs
//    answer SELECT and READ commands with 9F XX instead of 61 XX.
//
// 3. '6CXX' (SW1=0x6C): Wrong Length.
//    XX indicates the correct expected length (Le) for the command.
//
// 4. '63CX' (Warning): Counter Management.
//    If the upper nibble of SW2 is 'C' (0xC0-0xCF), the lower nibble represents
//    a counter value (e.g., remaining PIN/CHV retries).

// StatusWord represents the two-byte status response (SW1-SW2) returned by the smart card.
type StatusWord uint16

// NewStatusWord creates a StatusWord instance from two separate bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the first byte (high byte) of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the second byte (low byte) of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsResponseAvailable reports whether the card holds response bytes that
// must be fetched with GET RESPONSE. Covers both the interindustry 61XX
// form and the classic GSM 9FXX form.
func (sw StatusWord) IsResponseAvailable() bool {
	sw1 := sw.SW1()
	return sw1 == 0x61 || sw1 == 0x9F
}

// AvailableBytes returns the byte count advertised by a 61XX/9FXX status.
// SW2 of zero encodes 256.
func (sw StatusWord) AvailableBytes() int {
	if !sw.IsResponseAvailable() {
		return 0
	}
	if sw.SW2() == 0 {
		return MaxShortLe
	}
	return int(sw.SW2())
}

// IsCounter checks if the status indicates a retry counter (63CX).
func (sw StatusWord) IsCounter() bool {
	if sw.SW1() != 0x63 {
		return false
	}
	return bits.GetRange(sw.SW2(), 8, 5) == 0x0C
}

// IsSuccess returns true if the command was processed successfully (9000),
// if data is available (61XX/9FXX), or on the GSM memory-warning success 91XX.
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.IsResponseAvailable() || sw.SW1() == 0x91
}

// IsWarning returns true if the status indicates a warning (62XX or 63XX).
func (sw StatusWord) IsWarning() bool {
	sw1 := sw.SW1()
	return sw1 == 0x62 || sw1 == 0x63
}

// IsError returns true if the status indicates an execution error (64XX to 6FXX)
// or a GSM application error (92XX/94XX/98XX).
func (sw StatusWord) IsError() bool {
	sw1 := sw.SW1()
	if sw1 >= 0x64 && sw1 <= 0x6F {
		return true
	}
	return sw1 == 0x92 || sw1 == 0x94 || sw1 == 0x98
}

// IsFileNotFound reports the statuses a card uses for a missing file,
// directory or record: 6A82/6A83 (ISO) and 9402/9404 (GSM).
func (sw StatusWord) IsFileNotFound() bool {
	switch sw {
	case SW_ERR_FILE_NOT_FOUND, SW_ERR_RECORD_NOT_FOUND,
		SW_GSM_OUT_OF_RANGE, SW_GSM_NOT_FOUND:
		return true
	}
	return false
}

// IsSecurityNotSatisfied reports the statuses behind PIN/CHV protection:
// 6982 (ISO) and 9804 (GSM access condition not fulfilled).
func (sw StatusWord) IsSecurityNotSatisfied() bool {
	return sw == SW_ERR_SECURITY_STATUS_NOT_SAT || sw == SW_GSM_ACCESS_COND ||
		sw == SW_GSM_CHV_BLOCKED || sw == SW_ERR_AUTH_METHOD_BLOCKED
}

// Verbose returns a human-readable description of the status word.
// It prioritizes dynamic definitions over the static name table.
func (sw StatusWord) Verbose() string {
	sw1 := sw.SW1()
	sw2 := sw.SW2()

	if sw.IsResponseAvailable() {
		return fmt.Sprintf("Process completed, %d bytes available", sw2)
	}

	if sw1 == 0x6C {
		return fmt.Sprintf("Wrong length, correct Le is %d", sw2)
	}

	if sw.IsCounter() {
		return fmt.Sprintf("Warning: State changed, counter = %d", bits.GetRange(sw2, 4, 1))
	}

	if name, ok := swNames[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), name)
	}

	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.genericCategoryDescription())
}

// genericCategoryDescription provides a fallback description based on SW1.
func (sw StatusWord) genericCategoryDescription() string {
	switch sw.SW1() {
	case 0x62:
		return "Warning: NV memory unchanged"
	case 0x63:
		return "Warning: NV memory changed"
	case 0x64:
		return "Execution Error: NV memory unchanged"
	case 0x65:
		return "Execution Error: NV memory changed"
	case 0x66:
		return "Execution Error: Security issue"
	case 0x68:
		return "Checking Error: Function not supported"
	case 0x69:
		return "Checking Error: Command not allowed"
	case 0x6A:
		return "Checking Error: Wrong parameters"
	case 0x92:
		return "GSM: Memory management"
	case 0x94:
		return "GSM: File reference error"
	case 0x98:
		return "GSM: Security error"
	default:
		return "Unknown Status"
	}
}

// Status Word codes defined in ISO/IEC 7816-4 plus the GSM-specific codes
// of ETSI TS 51.011 (9XXX range).
const (
	SW_NO_ERROR StatusWord = 0x9000

	SW_WARN_NO_INFO          StatusWord = 0x6200
	SW_WARN_DATA_CORRUPTED   StatusWord = 0x6281
	SW_WARN_EOF_REACHED      StatusWord = 0x6282
	SW_WARN_FILE_DEACTIVATED StatusWord = 0x6283
	SW_WARN_FCI_BAD_FORMAT   StatusWord = 0x6284

	SW_WARN_NV_CHANGED_NO_INFO StatusWord = 0x6300
	SW_WARN_FILE_FILLED        StatusWord = 0x6381
	SW_WARN_COUNTER_0          StatusWord = 0x63C0

	SW_ERR_EXEC_NO_INFO       StatusWord = 0x6400
	SW_ERR_NV_CHANGED_NO_INFO StatusWord = 0x6500
	SW_ERR_MEMORY_FAILURE     StatusWord = 0x6581
	SW_ERR_SECURITY_ISSUE     StatusWord = 0x6600
	SW_ERR_WRONG_LENGTH       StatusWord = 0x6700
	SW_ERR_CHECKING_NO_INFO   StatusWord = 0x6800

	SW_ERR_CMD_NOT_ALLOWED_NO_INFO StatusWord = 0x6900
	SW_ERR_CMD_INCOMPATIBLE_FILE   StatusWord = 0x6981
	SW_ERR_SECURITY_STATUS_NOT_SAT StatusWord = 0x6982
	SW_ERR_AUTH_METHOD_BLOCKED     StatusWord = 0x6983
	SW_ERR_REF_DATA_NOT_USABLE     StatusWord = 0x6984
	SW_ERR_COND_OF_USE_NOT_SAT     StatusWord = 0x6985
	SW_ERR_CMD_NOT_ALLOWED_NO_EF   StatusWord = 0x6986

	SW_ERR_WRONG_PARAMS_NO_INFO  StatusWord = 0x6A00
	SW_ERR_INCORRECT_PARAMS_DATA StatusWord = 0x6A80
	SW_ERR_FUNC_NOT_SUPPORTED    StatusWord = 0x6A81
	SW_ERR_FILE_NOT_FOUND        StatusWord = 0x6A82
	SW_ERR_RECORD_NOT_FOUND      StatusWord = 0x6A83
	SW_ERR_NOT_ENOUGH_MEMORY     StatusWord = 0x6A84
	SW_ERR_INCORRECT_PARAMS_P1P2 StatusWord = 0x6A86
	SW_ERR_REF_DATA_NOT_FOUND    StatusWord = 0x6A88

	SW_ERR_WRONG_P1P2        StatusWord = 0x6B00
	SW_ERR_INS_INVALID       StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPPORTED StatusWord = 0x6E00
	SW_ERR_UNKNOWN           StatusWord = 0x6F00

	// ETSI TS 51.011 (classic SIM) application statuses.
	SW_GSM_MEMORY_PROBLEM StatusWord = 0x9240
	SW_GSM_NO_EF_SELECTED StatusWord = 0x9400
	SW_GSM_OUT_OF_RANGE   StatusWord = 0x9402
	SW_GSM_NOT_FOUND      StatusWord = 0x9404
	SW_GSM_INCONSISTENT   StatusWord = 0x9408
	SW_GSM_NO_CHV         StatusWord = 0x9802
	SW_GSM_ACCESS_COND    StatusWord = 0x9804
	SW_GSM_CONTRADICTION  StatusWord = 0x9808
	SW_GSM_CHV_BLOCKED    StatusWord = 0x9840
)

var swNames = map[StatusWord]string{
	SW_NO_ERROR:                    "SW_NO_ERROR",
	SW_WARN_NO_INFO:                "SW_WARN_NO_INFO",
	SW_WARN_DATA_CORRUPTED:         "SW_WARN_DATA_CORRUPTED",
	SW_WARN_EOF_REACHED:            "SW_WARN_EOF_REACHED",
	SW_WARN_FILE_DEACTIVATED:       "SW_WARN_FILE_DEACTIVATED",
	SW_WARN_FCI_BAD_FORMAT:         "SW_WARN_FCI_BAD_FORMAT",
	SW_WARN_NV_CHANGED_NO_INFO:     "SW_WARN_NV_CHANGED_NO_INFO",
	SW_WARN_FILE_FILLED:            "SW_WARN_FILE_FILLED",
	SW_ERR_EXEC_NO_INFO:            "SW_ERR_EXEC_NO_INFO",
	SW_ERR_NV_CHANGED_NO_INFO:      "SW_ERR_NV_CHANGED_NO_INFO",
	SW_ERR_MEMORY_FAILURE:          "SW_ERR_MEMORY_FAILURE",
	SW_ERR_SECURITY_ISSUE:          "SW_ERR_SECURITY_ISSUE",
	SW_ERR_WRONG_LENGTH:            "SW_ERR_WRONG_LENGTH",
	SW_ERR_CHECKING_NO_INFO:        "SW_ERR_CHECKING_NO_INFO",
	SW_ERR_CMD_NOT_ALLOWED_NO_INFO: "SW_ERR_CMD_NOT_ALLOWED_NO_INFO",
	SW_ERR_CMD_INCOMPATIBLE_FILE:   "SW_ERR_CMD_INCOMPATIBLE_FILE",
	SW_ERR_SECURITY_STATUS_NOT_SAT: "SW_ERR_SECURITY_STATUS_NOT_SAT",
	SW_ERR_AUTH_METHOD_BLOCKED:     "SW_ERR_AUTH_METHOD_BLOCKED",
	SW_ERR_REF_DATA_NOT_USABLE:     "SW_ERR_REF_DATA_NOT_USABLE",
	SW_ERR_COND_OF_USE_NOT_SAT:     "SW_ERR_COND_OF_USE_NOT_SAT",
	SW_ERR_CMD_NOT_ALLOWED_NO_EF:   "SW_ERR_CMD_NOT_ALLOWED_NO_EF",
	SW_ERR_WRONG_PARAMS_NO_INFO:    "SW_ERR_WRONG_PARAMS_NO_INFO",
	SW_ERR_INCORRECT_PARAMS_DATA:   "SW_ERR_INCORRECT_PARAMS_DATA",
	SW_ERR_FUNC_NOT_SUPPORTED:      "SW_ERR_FUNC_NOT_SUPPORTED",
	SW_ERR_FILE_NOT_FOUND:          "SW_ERR_FILE_NOT_FOUND",
	SW_ERR_RECORD_NOT_FOUND:        "SW_ERR_RECORD_NOT_FOUND",
	SW_ERR_NOT_ENOUGH_MEMORY:       "SW_ERR_NOT_ENOUGH_MEMORY",
	SW_ERR_INCORRECT_PARAMS_P1P2:   "SW_ERR_INCORRECT_PARAMS_P1P2",
	SW_ERR_REF_DATA_NOT_FOUND:      "SW_ERR_REF_DATA_NOT_FOUND",
	SW_ERR_WRONG_P1P2:              "SW_ERR_WRONG_P1P2",
	SW_ERR_INS_INVALID:             "SW_ERR_INS_INVALID",
	SW_ERR_CLA_NOT_SUPPORTED:       "SW_ERR_CLA_NOT_SUPPORTED",
	SW_ERR_UNKNOWN:                 "SW_ERR_UNKNOWN",
	SW_GSM_MEMORY_PROBLEM:          "SW_GSM_MEMORY_PROBLEM",
	SW_GSM_NO_EF_SELECTED:          "SW_GSM_NO_EF_SELECTED",
	SW_GSM_OUT_OF_RANGE:            "SW_GSM_OUT_OF_RANGE",
	SW_GSM_NOT_FOUND:               "SW_GSM_NOT_FOUND",
	SW_GSM_INCONSISTENT:            "SW_GSM_INCONSISTENT",
	SW_GSM_NO_CHV:                  "SW_GSM_NO_CHV",
	SW_GSM_ACCESS_COND:             "SW_GSM_ACCESS_COND",
	SW_GSM_CONTRADICTION:           "SW_GSM_CONTRADICTION",
	SW_GSM_CHV_BLOCKED:             "SW_GSM_CHV_BLOCKED",
}
