/*
Package gsm decodes the binary elementary-file formats defined by the
telecom smart card specifications (ETSI TS 51.011, 3GPP TS 31.102 and
TS 23.040): nibble-swapped BCD numbers, the GSM 7-bit default alphabet,
UCS2 alpha identifiers, phonebook records and SMS transport PDUs.

Every decoder in this package is total: any input buffer, of the expected
length or not, yields either a value or an error. No decoder panics on
malformed data, and raw bytes are preserved in errors where diagnostics
need them.

Decoders are pure byte transforms; they never touch a card. Fetching the
bytes is the job of the sim package.
*/
package gsm
