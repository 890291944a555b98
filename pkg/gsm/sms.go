package gsm

import (
	"fmt"

	"github.com/gregLibert/sim-card/pkg/bits"
)

// Record statuses from EF_SMS byte 0 (TS 51.011 clause 10.5.3).
var smsStatusNames = map[byte]string{
	0x01: "received, read",
	0x03: "received, unread",
	0x05: "sent",
	0x07: "to be sent",
}

// Message is one decoded EF_SMS record. Peer is the originating address
// for received messages and the destination for mobile-originated ones.
// Text is empty and Raw holds the user data when the coding scheme is
// one this package does not render.
type Message struct {
	Status    string
	SMSC      string
	Peer      string
	Timestamp string
	Text      string
	Raw       []byte
}

// DecodeSMSRecord decodes one 176-byte EF_SMS record: the status byte,
// the service centre address, then an SMS-DELIVER or SMS-SUBMIT TPDU
// (TS 23.040). A free record (status 0, status filler 0xFF or an
// all-filler body) decodes to (nil, nil).
func DecodeSMSRecord(data []byte) (*Message, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("SMS record: need at least 2 bytes, have %d", len(data))
	}
	if isBlank(data) || data[0] == 0xFF || data[0]&0x01 == 0 {
		return nil, nil
	}

	msg := &Message{}
	status, ok := smsStatusNames[data[0]&0x07]
	if !ok {
		status = fmt.Sprintf("unknown (%#02x)", data[0])
	}
	msg.Status = status

	r := tpduReader{data: data[1:]}
	scLen := int(r.byte())
	sc := r.take(scLen)
	if r.err != nil {
		return nil, fmt.Errorf("SMS record: truncated service centre address")
	}
	if scLen > 0 && !isBlank(sc) {
		number, err := DialNumber(append([]byte{byte(scLen)}, sc...))
		if err != nil {
			return nil, fmt.Errorf("SMS record: %w", err)
		}
		msg.SMSC = number
	}

	firstOctet := r.byte()
	mobileOriginated := firstOctet&0x03 == 0x01
	if mobileOriginated {
		r.byte() // TP-MR
	}
	peer, err := r.address()
	if err != nil {
		return nil, fmt.Errorf("SMS record: %w", err)
	}
	msg.Peer = peer

	r.byte() // TP-PID
	dcs := r.byte()
	if mobileOriginated {
		// TP-VP length depends on the validity period format bits.
		switch firstOctet & 0x18 {
		case 0x10:
			r.take(1)
		case 0x08, 0x18:
			r.take(7)
		}
	} else {
		msg.Timestamp = decodeTimestamp(r.take(7))
	}

	udl := int(r.byte())
	if r.err != nil {
		return nil, fmt.Errorf("SMS record: truncated TPDU header")
	}
	udhPresent := firstOctet&0x40 != 0
	msg.Text, msg.Raw = decodeUserData(dcs, udl, r.rest(), udhPresent)
	return msg, nil
}

// decodeUserData renders the TPDU user data according to the data
// coding scheme. Payloads with a user data header or an 8-bit coding
// are kept raw instead of guessed at.
func decodeUserData(dcs byte, udl int, ud []byte, udhPresent bool) (text string, raw []byte) {
	if udhPresent {
		return "", trimUserData(ud, udl)
	}
	switch dcs & 0x0C {
	case 0x00: // GSM 7-bit, udl counts septets
		need := (udl*7 + 7) / 8
		if need > len(ud) {
			udl = len(ud) * 8 / 7
			need = len(ud)
		}
		return Unpack7Bit(ud[:need], udl), nil
	case 0x08: // UCS2, udl counts octets
		s, err := decodeUCS2(trimUserData(ud, udl))
		if err != nil {
			return "", trimUserData(ud, udl)
		}
		return s, nil
	default:
		return "", trimUserData(ud, udl)
	}
}

func trimUserData(ud []byte, udl int) []byte {
	if udl < len(ud) {
		ud = ud[:udl]
	}
	out := make([]byte, len(ud))
	copy(out, ud)
	return out
}

// decodeTimestamp renders a 7-byte TP-SCTS (swapped BCD year, month,
// day, hour, minute, second, timezone).
func decodeTimestamp(b []byte) string {
	if len(b) < 7 {
		return ""
	}
	field := func(x byte) int { return int(bits.Low(x))*10 + int(bits.High(x)) }
	tz := field(b[6] &^ 0x08) // bit 3 of the swapped timezone is the sign
	sign := "+"
	if b[6]&0x08 != 0 {
		sign = "-"
	}
	return fmt.Sprintf("20%02d-%02d-%02d %02d:%02d:%02d %s%02d:%02d",
		field(b[0]), field(b[1]), field(b[2]),
		field(b[3]), field(b[4]), field(b[5]),
		sign, tz/4, (tz%4)*15)
}

// tpduReader is a bounds-checked cursor over a TPDU. Reads past the end
// set err and return zero values, so decoding code stays linear.
type tpduReader struct {
	data []byte
	pos  int
	err  error
}

func (r *tpduReader) byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *tpduReader) take(n int) []byte {
	if r.err != nil || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("read of %d bytes past end of %d-byte TPDU", n, len(r.data))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *tpduReader) rest() []byte {
	if r.err != nil {
		return nil
	}
	return r.data[r.pos:]
}

// address reads a TPDU address field, whose length byte counts digits
// rather than bytes.
func (r *tpduReader) address() (string, error) {
	digits := int(r.byte())
	ton := r.byte()
	b := r.take((digits + 1) / 2)
	if r.err != nil {
		return "", r.err
	}
	if digits == 0 {
		return "", nil
	}
	// Alphanumeric addresses carry packed 7-bit text instead of BCD.
	if ton&0x70 == 0x50 {
		return Unpack7Bit(b, digits*4/7), nil
	}
	number := SwappedDigits(b)
	if len(number) > digits {
		number = number[:digits]
	}
	if ton == tonInternational {
		number = "+" + number
	}
	return number, nil
}
