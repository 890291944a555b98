package iso7816

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/sim-card/pkg/bits"
	"github.com/gregLibert/sim-card/pkg/tlv"
)

// FILE CONTROL INFORMATION:
//
// The data returned by a successful SELECT describes the selected file, but
// its shape depends on the card generation:
//
// 1. Classic GSM (ETSI TS 51.011 §9.2.1): a fixed-layout header.
//    For an EF: bytes 2-3 file size, bytes 4-5 file ID, byte 6 file type,
//    byte 13 structure (00 transparent, 01 linear fixed, 03 cyclic),
//    byte 14 record length.
//
// 2. UICC/USIM (ETSI TS 102 221 §11.1.1.3): a BER-TLV FCP template (tag 62)
//    with file size in tag 80 and a file descriptor in tag 82 whose bytes
//    3-4 carry the record length and byte 5 the record count.
//
// ParseGSMHeader and ParseFCP normalize both into FileControlInfo. Absent or
// zero geometry is an error, not a default: a record file whose record
// length cannot be established must not be read blind.

// FileStructure is the storage layout of an elementary file.
type FileStructure byte

const (
	StructureUnknown FileStructure = iota
	Transparent
	LinearFixed
	Cyclic
)

func (s FileStructure) String() string {
	switch s {
	case Transparent:
		return "Transparent"
	case LinearFixed:
		return "Linear Fixed"
	case Cyclic:
		return "Cyclic"
	default:
		return "Unknown"
	}
}

// FileControlInfo describes a selected elementary file.
type FileControlInfo struct {
	FileID       uint16
	Structure    FileStructure
	Size         int
	RecordLength int // 0 for transparent files
	RecordCount  int // 0 for transparent files
}

// fcpTemplate mirrors the TS 102 221 FCP (tag 62) content.
type fcpTemplate struct {
	FileSize       []byte `tlv:"80"`
	TotalFileSize  []byte `tlv:"81"`
	FileDescriptor []byte `tlv:"82"`
	FileIdentifier []byte `tlv:"83"`
	ShortFileID    []byte `tlv:"88"`
	LifeCycle      []byte `tlv:"8A"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ParseFCP parses a UICC/USIM SELECT response (BER-TLV FCP template).
func ParseFCP(data []byte) (*FileControlInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty FCP data")
	}

	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("BER-TLV decode failed: %w", err)
	}

	// The FCP content may arrive wrapped in tag 62 or flat.
	working := packets
	for _, p := range packets {
		if strings.EqualFold(p.Tag, "62") {
			working = p.TLVs
			break
		}
	}

	var t fcpTemplate
	if err := tlv.UnmarshalFromPackets(working, &t); err != nil {
		return nil, fmt.Errorf("FCP unmarshal failed: %w", err)
	}

	fci := &FileControlInfo{}

	if len(t.FileIdentifier) == 2 {
		fci.FileID = uint16(t.FileIdentifier[0])<<8 | uint16(t.FileIdentifier[1])
	}
	for _, b := range t.FileSize {
		fci.Size = fci.Size<<8 | int(b)
	}

	if len(t.FileDescriptor) == 0 {
		return nil, fmt.Errorf("FCP missing file descriptor (tag 82)")
	}

	// File descriptor byte: bits 3-1 encode the EF structure.
	switch bits.GetRange(t.FileDescriptor[0], 3, 1) {
	case 0x01:
		fci.Structure = Transparent
	case 0x02:
		fci.Structure = LinearFixed
	case 0x06:
		fci.Structure = Cyclic
	default:
		fci.Structure = StructureUnknown
	}

	if fci.Structure == LinearFixed || fci.Structure == Cyclic {
		// Descriptor: [descriptor, coding, recLen hi, recLen lo, count]
		if len(t.FileDescriptor) < 5 {
			return nil, fmt.Errorf("file descriptor too short for record file: % X", t.FileDescriptor)
		}
		fci.RecordLength = int(t.FileDescriptor[2])<<8 | int(t.FileDescriptor[3])
		fci.RecordCount = int(t.FileDescriptor[4])
		if fci.RecordLength == 0 || fci.RecordCount == 0 {
			return nil, fmt.Errorf("record file with zero geometry (len=%d count=%d)", fci.RecordLength, fci.RecordCount)
		}
		if fci.Size == 0 {
			fci.Size = fci.RecordLength * fci.RecordCount
		}
	}

	return fci, nil
}

// Minimum GSM SELECT response lengths (TS 51.011 §9.2.1).
const (
	gsmHeaderMinLen       = 14 // up to and including the structure byte
	gsmHeaderRecordMinLen = 15 // includes the record length byte
)

// ParseGSMHeader parses a classic SIM SELECT response header.
func ParseGSMHeader(data []byte) (*FileControlInfo, error) {
	if len(data) < gsmHeaderMinLen {
		return nil, fmt.Errorf("GSM select response too short: %d bytes", len(data))
	}

	fci := &FileControlInfo{
		FileID: uint16(data[4])<<8 | uint16(data[5]),
		Size:   int(data[2])<<8 | int(data[3]),
	}

	switch data[13] {
	case 0x00:
		fci.Structure = Transparent
	case 0x01:
		fci.Structure = LinearFixed
	case 0x03:
		fci.Structure = Cyclic
	default:
		fci.Structure = StructureUnknown
	}

	if fci.Structure == LinearFixed || fci.Structure == Cyclic {
		if len(data) < gsmHeaderRecordMinLen {
			return nil, fmt.Errorf("GSM select response missing record length")
		}
		fci.RecordLength = int(data[14])
		if fci.RecordLength == 0 {
			return nil, fmt.Errorf("record file with zero record length")
		}
		fci.RecordCount = fci.Size / fci.RecordLength
		if fci.RecordCount == 0 {
			return nil, fmt.Errorf("record file with zero records (size=%d)", fci.Size)
		}
	}

	return fci, nil
}

func (f *FileControlInfo) String() string {
	if f.Structure == LinearFixed || f.Structure == Cyclic {
		return fmt.Sprintf("EF %04X | %s | %d bytes | %d records x %d",
			f.FileID, f.Structure, f.Size, f.RecordCount, f.RecordLength)
	}
	return fmt.Sprintf("EF %04X | %s | %d bytes", f.FileID, f.Structure, f.Size)
}
