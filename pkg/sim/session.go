package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gregLibert/sim-card/pkg/iso7816"
	"github.com/gregLibert/sim-card/pkg/tlv"
)

// Application is the card dialect a session ended up speaking.
type Application int

const (
	AppNone Application = iota
	AppGSM              // classic SIM, class 0xA0, DF_GSM
	AppUSIM             // UICC, class 0x00, ADF_USIM
)

func (a Application) String() string {
	switch a {
	case AppGSM:
		return "GSM"
	case AppUSIM:
		return "USIM"
	default:
		return "none"
	}
}

type sessionState int

const (
	stateConnected sessionState = iota
	stateMFSelected
	stateAppSelected
)

// defaultUSIMAID is tried when EF_DIR is unreadable or names no USIM
// application. RID A000000087 (3GPP), PIX 1002 (USIM), wildcarded tail.
var defaultUSIMAID = []byte{
	0xA0, 0x00, 0x00, 0x00, 0x87, 0x10, 0x02, 0xFF,
	0xFF, 0xFF, 0xFF, 0x89, 0x06, 0x01, 0x00, 0x00,
}

// Session drives one connected card. It owns the dialect decision and
// the explicit current-directory state that relative SELECTs are
// computed from; the card's own memory of the last selected file is
// never relied upon across calls.
type Session struct {
	client *iso7816.Client
	log    *logrus.Entry

	state      sessionState
	cla        iso7816.Class
	app        Application
	aid        []byte
	currentDir Path
}

// NewSession wraps an already-connected card. The caller keeps
// ownership of the connection and disconnects it when done.
func NewSession(card iso7816.Transmitter) *Session {
	return &Session{
		client: iso7816.NewClient(card),
		log:    logrus.WithField("component", "session"),
	}
}

// Start picks the card dialect: USIM first, classic GSM as fallback.
// It may be called once per session.
func (s *Session) Start() error {
	if s.state != stateConnected {
		return fmt.Errorf("session already started")
	}

	usimErr := s.startUSIM()
	if usimErr == nil {
		s.log.WithField("aid", fmt.Sprintf("% X", s.aid)).Debug("USIM application selected")
		return nil
	}
	s.log.WithError(usimErr).Debug("USIM selection failed, falling back to GSM")

	if err := s.startGSM(); err != nil {
		return fmt.Errorf("card speaks neither USIM nor classic GSM: %w", err)
	}
	s.log.Debug("GSM directory selected")
	return nil
}

// Application reports the dialect selected by Start.
func (s *Session) Application() Application { return s.app }

// Class returns the class byte matching the selected dialect.
func (s *Session) Class() iso7816.Class { return s.cla }

// AID returns the application identifier selected on a USIM, nil on a
// classic SIM.
func (s *Session) AID() []byte { return s.aid }

func (s *Session) startUSIM() error {
	cla := iso7816.MustClass(iso7816.ClaUICC)

	if _, err := s.selectFile(cla, MF); err != nil {
		return err
	}
	s.state = stateMFSelected

	aid, err := s.discoverAID(cla)
	if err != nil {
		s.log.WithError(err).Debug("no usable EF_DIR, trying the default USIM AID")
		aid = defaultUSIMAID
	}

	trace, err := s.client.Send(iso7816.SelectByAID(cla, aid))
	if err != nil {
		return err
	}
	if !trace.IsSuccess() {
		return fmt.Errorf("select USIM application: %s", trace.Status().Verbose())
	}

	s.cla = cla
	s.app = AppUSIM
	s.aid = aid
	s.currentDir = Path{ADF}
	s.state = stateAppSelected
	return nil
}

func (s *Session) startGSM() error {
	cla := iso7816.MustClass(iso7816.ClaGSM)

	if _, err := s.selectFile(cla, MF); err != nil {
		return err
	}
	s.state = stateMFSelected

	if _, err := s.selectFile(cla, DFGsm); err != nil {
		return err
	}

	s.cla = cla
	s.app = AppGSM
	s.currentDir = Path{MF, DFGsm}
	s.state = stateAppSelected
	return nil
}

// selectFile issues one SELECT by file identifier and folds a rejection
// into a SelectError.
func (s *Session) selectFile(cla iso7816.Class, id uint16) (iso7816.Trace, error) {
	trace, err := s.client.Send(iso7816.SelectFileID(cla, id))
	if err != nil {
		return nil, err
	}
	if !trace.IsSuccess() {
		return nil, &SelectError{FileID: id, Status: trace.Status()}
	}
	return trace, nil
}

// applicationTemplate is one TS 102 221 EF_DIR entry (tag 61).
type applicationTemplate struct {
	AID   []byte `tlv:"4F"`
	Label []byte `tlv:"50"`
}

type dirRecord struct {
	App applicationTemplate `tlv:"61"`
}

// discoverAID reads EF_DIR and returns the first application identifier
// carrying the 3GPP USIM prefix.
func (s *Session) discoverAID(cla iso7816.Class) ([]byte, error) {
	trace, err := s.selectFile(cla, EFDir)
	if err != nil {
		return nil, err
	}
	fci, err := iso7816.ParseFCP(trace.Data())
	if err != nil {
		return nil, fmt.Errorf("EF_DIR: %w", err)
	}
	if fci.Structure != iso7816.LinearFixed {
		return nil, fmt.Errorf("EF_DIR is not record based")
	}

	for rec := 1; rec <= fci.RecordCount; rec++ {
		trace, err := s.client.Send(iso7816.ReadRecord(cla, byte(rec), fci.RecordLength))
		if err != nil {
			return nil, err
		}
		if !trace.IsSuccess() {
			continue
		}
		data := trimFiller(trace.Data())
		if len(data) == 0 {
			continue
		}

		var dir dirRecord
		if err := tlv.Unmarshal(data, &dir); err != nil {
			s.log.WithError(err).WithField("record", rec).Debug("skipping unparseable EF_DIR entry")
			continue
		}
		if isUSIMAID(dir.App.AID) {
			return dir.App.AID, nil
		}
	}
	return nil, fmt.Errorf("EF_DIR names no USIM application")
}

// usimAIDPrefix is RID A000000087 plus application code 1002.
var usimAIDPrefix = []byte{0xA0, 0x00, 0x00, 0x00, 0x87, 0x10, 0x02}

func isUSIMAID(aid []byte) bool {
	if len(aid) < len(usimAIDPrefix) {
		return false
	}
	for i, b := range usimAIDPrefix {
		if aid[i] != b {
			return false
		}
	}
	return true
}

func trimFiller(data []byte) []byte {
	end := len(data)
	for end > 0 && data[end-1] == 0xFF {
		end--
	}
	return data[:end]
}
