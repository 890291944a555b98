package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/gregLibert/sim-card/pkg/gsm"
)

// SimDump is the aggregated result of one read pass over the card.
// Every field is an independent outcome: a PIN-protected IMSI or a
// missing phonebook never hides the fields around it. The dump is
// populated once by Dumper.Dump and not mutated afterwards.
type SimDump struct {
	Application string `json:"application"`

	ICCID    Outcome[string]                  `json:"iccid"`
	Identity Outcome[gsm.Identity]            `json:"imsi"`
	SPN      Outcome[gsm.ServiceProviderName] `json:"spn"`
	MSISDN   Outcome[[]gsm.DialEntry]         `json:"msisdn"`
	SMSC     Outcome[string]                  `json:"smsc"`
	LOCI     Outcome[gsm.LocationInfo]        `json:"loci"`
	PLMNList Outcome[[]gsm.PLMN]              `json:"plmn_selector"`

	ForbiddenPLMN Outcome[[]gsm.PLMN]    `json:"forbidden_plmn"`
	AccessClasses Outcome[[]int]         `json:"access_classes"`
	AdminData     Outcome[gsm.AdminData] `json:"administrative_data"`
	Phase         Outcome[string]        `json:"phase"`
	HPLMNMinutes  Outcome[int]           `json:"hplmn_search_minutes"`

	ADN Outcome[[]gsm.DialEntry] `json:"adn"`
	FDN Outcome[[]gsm.DialEntry] `json:"fdn"`
	SDN Outcome[[]gsm.DialEntry] `json:"sdn"`
	LND Outcome[[]gsm.DialEntry] `json:"lnd"`
	SMS Outcome[[]gsm.Message]   `json:"sms"`
}

// Dumper reads every known field off a started session, in a fixed
// order, one field at a time.
type Dumper struct {
	session *Session
	reader  *Reader
	log     *logrus.Entry
}

func NewDumper(s *Session) *Dumper {
	return &Dumper{
		session: s,
		reader:  NewReader(s),
		log:     logrus.WithField("component", "dumper"),
	}
}

// Dump reads all fields. It never fails as a whole: each field records
// its own outcome and the dump is returned regardless.
func (d *Dumper) Dump() *SimDump {
	dump := &SimDump{Application: d.session.Application().String()}

	dump.ICCID = readTransparent(d, EFICCID, gsm.DecodeICCID)

	// EF_AD is read before the IMSI: its MNC length byte, when the
	// card carries one, settles the 2-versus-3 digit split below.
	dump.AdminData = readTransparent(d, EFAD, gsm.DecodeAD)
	mncLen := 2
	if dump.AdminData.IsPresent() && dump.AdminData.Value.MNCLength != 0 {
		mncLen = dump.AdminData.Value.MNCLength
	} else {
		d.log.Debug("card declares no MNC length, assuming 2 digits")
	}

	dump.Identity = readTransparent(d, EFIMSI, func(data []byte) (gsm.Identity, error) {
		digits, err := gsm.DecodeIMSI(data)
		if err != nil {
			return gsm.Identity{}, err
		}
		return gsm.SplitIMSI(digits, mncLen)
	})

	dump.SPN = readTransparent(d, EFSPN, gsm.DecodeSPN)
	dump.MSISDN = readRecords(d, EFMSISDN, gsm.DecodeDialRecord)
	dump.SMSC = d.readSMSC()
	dump.LOCI = readTransparent(d, EFLOCI, gsm.DecodeLOCI)
	dump.PLMNList = readTransparent(d, EFPLMNsel, gsm.DecodePLMNList)

	dump.ForbiddenPLMN = readTransparent(d, EFFPLMN, gsm.DecodePLMNList)
	dump.AccessClasses = readTransparent(d, EFACC, gsm.DecodeACC)
	dump.Phase = readTransparent(d, EFPhase, gsm.DecodePhase)
	dump.HPLMNMinutes = readTransparent(d, EFHPLMN, gsm.DecodeHPLMNPeriod)

	dump.ADN = readRecords(d, EFADN, gsm.DecodeDialRecord)
	dump.FDN = readRecords(d, EFFDN, gsm.DecodeDialRecord)
	dump.SDN = readRecords(d, EFSDN, gsm.DecodeDialRecord)
	dump.LND = readRecords(d, EFLND, gsm.DecodeDialRecord)
	dump.SMS = readRecords(d, EFSMS, gsm.DecodeSMSRecord)

	return dump
}

// readTransparent reads one transparent EF and decodes its body. Decode
// failures keep the raw bytes in the outcome.
func readTransparent[T any](d *Dumper, ef uint16, decode func([]byte) (T, error)) Outcome[T] {
	data, err := d.reader.ReadTransparent(PathTo(d.session.Application(), ef))
	if err != nil {
		d.log.WithField("file", ef).WithError(err).Debug("transparent read failed")
		return cardFailure[T](err)
	}
	value, err := decode(data)
	if err != nil {
		return Failed[T](err, data)
	}
	return Present(value)
}

// readRecords reads a record EF and collects the decoded entries,
// skipping free slots. A card holding the file but no entries yields a
// present, empty list, which is not the same as an absent file. One bad
// record does not cost the others: the entries around it are kept and
// the first failure is noted on the outcome.
func readRecords[T any](d *Dumper, ef uint16, decode func([]byte) (*T, error)) Outcome[[]T] {
	_, records, err := d.reader.Records(PathTo(d.session.Application(), ef))
	if err != nil {
		d.log.WithField("file", ef).WithError(err).Debug("record read failed")
		return cardFailure[[]T](err)
	}

	entries := []T{}
	var failure *Outcome[[]T]
	note := func(o Outcome[[]T]) {
		if failure == nil {
			failure = &o
		}
	}
	for rec := range records {
		if rec.Err != nil {
			d.log.WithField("file", ef).WithField("record", rec.Index).
				WithError(rec.Err).Debug("record read failed")
			note(cardFailure[[]T](rec.Err))
			continue
		}
		value, err := decode(rec.Data)
		if err != nil {
			note(Failed[[]T](err, rec.Data))
			continue
		}
		if value != nil {
			entries = append(entries, *value)
		}
	}
	if failure != nil {
		if len(entries) == 0 {
			return *failure
		}
		out := Present(entries)
		out.Err = failure.Err
		return out
	}
	return Present(entries)
}

// readSMSC walks the EF_SMSP records and reports the first service
// centre address found. Records without one are normal; a card whose
// every record lacks it simply has no configured service centre.
func (d *Dumper) readSMSC() Outcome[string] {
	_, records, err := d.reader.Records(PathTo(d.session.Application(), EFSMSP))
	if err != nil {
		return cardFailure[string](err)
	}
	var failure *Outcome[string]
	for rec := range records {
		if rec.Err != nil {
			if failure == nil {
				o := cardFailure[string](rec.Err)
				failure = &o
			}
			continue
		}
		smsc, err := gsm.DecodeSMSP(rec.Data)
		if err != nil {
			if failure == nil {
				o := Failed[string](err, rec.Data)
				failure = &o
			}
			continue
		}
		if smsc != "" {
			return Present(smsc)
		}
	}
	if failure != nil {
		return *failure
	}
	return Absent[string]()
}
