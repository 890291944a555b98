package sim

// File identifiers from TS 51.011 clause 10 and TS 31.102 clause 4.
const (
	MF        uint16 = 0x3F00
	DFGsm     uint16 = 0x7F20
	DFTelecom uint16 = 0x7F10

	// ADF is the TS 102 221 placeholder for the application dedicated
	// file. It has no file identifier of its own; the Reader reselects
	// the session's AID when it meets this path component.
	ADF uint16 = 0x7FFF

	EFDir   uint16 = 0x2F00
	EFICCID uint16 = 0x2FE2

	EFIMSI    uint16 = 0x6F07
	EFSPN     uint16 = 0x6F46
	EFMSISDN  uint16 = 0x6F40
	EFSMSP    uint16 = 0x6F42
	EFPLMNsel uint16 = 0x6F30
	EFHPLMN   uint16 = 0x6F31
	EFFPLMN   uint16 = 0x6F7B
	EFLOCI    uint16 = 0x6F7E
	EFACC     uint16 = 0x6F78
	EFAD      uint16 = 0x6FAD
	EFPhase   uint16 = 0x6FAE
	EFADN     uint16 = 0x6F3A
	EFFDN     uint16 = 0x6F3B
	EFSMS     uint16 = 0x6F3C
	EFLND     uint16 = 0x6F44
	EFSDN     uint16 = 0x6F49
)

// Path is a selection path: file identifiers from the root down to the
// target, MF or ADF first.
type Path []uint16

// rootedAtMF are the EFs living directly under the master file in both
// dialects.
var rootedAtMF = map[uint16]bool{
	EFDir:   true,
	EFICCID: true,
}

// PathTo maps an elementary file to its selection path in the given
// application context. The mappings are pure data; changing where a
// field lives means changing this table, not the Reader.
func PathTo(app Application, ef uint16) Path {
	if rootedAtMF[ef] {
		return Path{MF, ef}
	}
	if app == AppUSIM {
		return Path{ADF, ef}
	}
	return Path{MF, DFGsm, ef}
}

// isDirectory reports whether a path component changes the current
// directory when selected.
func isDirectory(id uint16) bool {
	return id == MF || id == ADF || id&0xFF00 == 0x7F00 || id&0xFF00 == 0x5F00
}
