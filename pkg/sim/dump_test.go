package sim

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/sim-card/pkg/gsm"
	"github.com/gregLibert/sim-card/pkg/iso7816"
	"github.com/gregLibert/sim-card/pkg/tlv"
)

// populatedGSMCard models a classic SIM with a realistic set of files.
// EF_SPN, EF_FPLMN and the FDN/SDN/LND phonebooks are deliberately
// missing.
func populatedGSMCard() *fakeCard {
	adnUsed := append([]byte("Office"), 0xFF, 0xFF)
	adnUsed = append(adnUsed, tlv.Hex("07 91 21 43 65 87 09 F2 FF FF FF FF FF FF")...)
	adnFree := bytes.Repeat([]byte{0xFF}, 22)

	smspRec := bytes.Repeat([]byte{0xFF}, 30)
	smspRec[2] = 0xF9 // service centre address present
	copy(smspRec[15:], tlv.Hex("07 91 21 43 65 87 09 F2"))

	smsRec := tlv.Hex(
		"03",
		"07 91 21 43 65 87 09 F2",
		"04",
		"0B 91 21 43 65 87 09 F2",
		"00 00",
		"62 80 03 21 43 65 80",
		"0A E8 32 9B FD 46 97 D9 EC 37",
	)
	smsRec = append(smsRec, bytes.Repeat([]byte{0xFF}, 176-len(smsRec))...)
	smsFree := bytes.Repeat([]byte{0xFF}, 176)

	card := newGSMCard()
	for id, f := range map[uint16]*fakeFile{
		EFICCID:   {kind: kindTransparent, body: tlv.Hex("98 10 32 54 76 98 10 32 54 96")},
		EFAD:      {kind: kindTransparent, body: tlv.Hex("00 00 00 02")},
		EFIMSI:    {kind: kindTransparent, body: tlv.Hex("08 29 31 26 40 00 00 01 12")},
		EFMSISDN:  {kind: kindLinearFixed, records: [][]byte{append(bytes.Repeat([]byte{0xFF}, 2), tlv.Hex("04 81 21 43 65 FF FF FF FF FF FF FF FF FF")...)}},
		EFSMSP:    {kind: kindLinearFixed, records: [][]byte{smspRec}},
		EFLOCI:    {kind: kindTransparent, body: tlv.Hex("01 02 03 04 02 F8 02 12 34 00 00")},
		EFPLMNsel: {kind: kindTransparent, body: tlv.Hex("21 F0 00 FF FF FF 21 43 00")},
		EFACC:     {kind: kindTransparent, body: tlv.Hex("00 04")},
		EFPhase:   {kind: kindTransparent, body: tlv.Hex("02")},
		EFHPLMN:   {kind: kindTransparent, body: tlv.Hex("0A")},
		EFADN:     {kind: kindLinearFixed, records: [][]byte{adnUsed, adnFree}},
		EFSMS:     {kind: kindLinearFixed, records: [][]byte{smsRec, smsFree}},
	} {
		f.id = id
		card.files[id] = f
	}
	return card
}

func startedDumper(t *testing.T, card *fakeCard) *Dumper {
	t.Helper()
	session := NewSession(card)
	require.NoError(t, session.Start())
	return NewDumper(session)
}

func TestDumpPopulatedCard(t *testing.T) {
	card := populatedGSMCard()
	dump := startedDumper(t, card).Dump()

	assert.Equal(t, "GSM", dump.Application)

	require.True(t, dump.ICCID.IsPresent())
	assert.Equal(t, "89012345678901234569", dump.ICCID.Value)

	require.True(t, dump.Identity.IsPresent())
	assert.Equal(t, gsm.Identity{
		IMSI: "213620400001021",
		MCC:  "213",
		MNC:  "62",
		MSIN: "0400001021",
	}, dump.Identity.Value)

	assert.Equal(t, StatusAbsent, dump.SPN.Status)

	require.True(t, dump.MSISDN.IsPresent())
	require.Len(t, dump.MSISDN.Value, 1)
	assert.Equal(t, "123456", dump.MSISDN.Value[0].Number)

	require.True(t, dump.SMSC.IsPresent())
	assert.Equal(t, "+12345678902", dump.SMSC.Value)

	require.True(t, dump.LOCI.IsPresent())
	assert.Equal(t, "01020304", dump.LOCI.Value.TMSI)
	assert.Equal(t, uint16(0x1234), dump.LOCI.Value.LAC)

	require.True(t, dump.PLMNList.IsPresent())
	assert.Equal(t, []gsm.PLMN{{MCC: "120", MNC: "00"}}, dump.PLMNList.Value)

	assert.Equal(t, StatusAbsent, dump.ForbiddenPLMN.Status)

	require.True(t, dump.AccessClasses.IsPresent())
	assert.Equal(t, []int{2}, dump.AccessClasses.Value)

	require.True(t, dump.AdminData.IsPresent())
	assert.Equal(t, 2, dump.AdminData.Value.MNCLength)

	require.True(t, dump.Phase.IsPresent())
	assert.Equal(t, "phase 2", dump.Phase.Value)

	require.True(t, dump.HPLMNMinutes.IsPresent())
	assert.Equal(t, 60, dump.HPLMNMinutes.Value)

	require.True(t, dump.ADN.IsPresent())
	require.Len(t, dump.ADN.Value, 1, "the free slot is skipped")
	assert.Equal(t, gsm.DialEntry{Name: "Office", Number: "+12345678902"}, dump.ADN.Value[0])

	assert.Equal(t, StatusAbsent, dump.FDN.Status)
	assert.Equal(t, StatusAbsent, dump.SDN.Status)
	assert.Equal(t, StatusAbsent, dump.LND.Status)

	require.True(t, dump.SMS.IsPresent())
	require.Len(t, dump.SMS.Value, 1)
	assert.Equal(t, "hellohello", dump.SMS.Value[0].Text)
	assert.Equal(t, "received, unread", dump.SMS.Value[0].Status)
}

func TestDumpLockedFieldDoesNotBlockOthers(t *testing.T) {
	card := populatedGSMCard()
	card.files[EFIMSI].readSW = iso7816.SW_GSM_ACCESS_COND
	dump := startedDumper(t, card).Dump()

	assert.Equal(t, StatusPinLocked, dump.Identity.Status)

	require.True(t, dump.ICCID.IsPresent(), "ICCID is readable without CHV")
	assert.Equal(t, "89012345678901234569", dump.ICCID.Value)
	assert.True(t, dump.ADN.IsPresent())
}

func TestDumpKeepsEntriesAroundBrokenRecord(t *testing.T) {
	office := append([]byte("Office"), 0xFF, 0xFF)
	office = append(office, tlv.Hex("07 91 21 43 65 87 09 F2 FF FF FF FF FF FF")...)
	home := append([]byte("Home"), 0xFF, 0xFF, 0xFF, 0xFF)
	home = append(home, tlv.Hex("04 81 21 43 65 FF FF FF FF FF FF FF FF FF")...)

	card := populatedGSMCard()
	card.files[EFADN] = &fakeFile{
		id:       EFADN,
		kind:     kindLinearFixed,
		records:  [][]byte{office, bytes.Repeat([]byte{0xFF}, 22), home},
		recordSW: map[int]iso7816.StatusWord{2: iso7816.SW_GSM_MEMORY_PROBLEM},
	}
	dump := startedDumper(t, card).Dump()

	// A single broken slot neither empties the phonebook nor hides the
	// failure.
	require.True(t, dump.ADN.IsPresent())
	require.Len(t, dump.ADN.Value, 2)
	assert.Equal(t, "Office", dump.ADN.Value[0].Name)
	assert.Equal(t, "Home", dump.ADN.Value[1].Name)
	assert.Error(t, dump.ADN.Err)
}

func TestDumpKeepsUndecodableBytes(t *testing.T) {
	card := populatedGSMCard()
	card.files[EFLOCI].body = tlv.Hex("01 02 03 04 A2 F8 02 12 34 00 00")
	dump := startedDumper(t, card).Dump()

	assert.Equal(t, StatusError, dump.LOCI.Status)
	assert.Error(t, dump.LOCI.Err)
	assert.Equal(t, card.files[EFLOCI].body, dump.LOCI.Raw)
}

func TestDumpUSIM(t *testing.T) {
	card := newUSIMCard()
	card.files[EFICCID] = &fakeFile{id: EFICCID, kind: kindTransparent, body: tlv.Hex("98 10 32 54 76 98 10 32 54 96")}
	card.files[EFIMSI] = &fakeFile{id: EFIMSI, kind: kindTransparent, body: tlv.Hex("08 29 31 26 40 00 00 01 12")}
	dump := startedDumper(t, card).Dump()

	assert.Equal(t, "USIM", dump.Application)
	require.True(t, dump.ICCID.IsPresent())
	assert.Equal(t, "89012345678901234569", dump.ICCID.Value)
	require.True(t, dump.Identity.IsPresent())
	assert.Equal(t, "213620400001021", dump.Identity.Value.IMSI)
	assert.Equal(t, StatusAbsent, dump.SPN.Status)
}

func TestOutcomeJSON(t *testing.T) {
	dump := SimDump{
		ICCID: Present("8901234567890123459"),
		SPN:   Absent[gsm.ServiceProviderName](),
	}
	dump.Identity = PinLocked[gsm.Identity]()

	raw, err := json.Marshal(dump)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "present", decoded["iccid"]["status"])
	assert.Equal(t, "8901234567890123459", decoded["iccid"]["value"])
	assert.Equal(t, "absent", decoded["spn"]["status"])
	assert.Equal(t, "pin locked", decoded["imsi"]["status"])
	_, hasValue := decoded["spn"]["value"]
	assert.False(t, hasValue)
}
