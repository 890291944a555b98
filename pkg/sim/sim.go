/*
Package sim reads subscriber data from GSM SIM and UMTS/LTE USIM cards.

A Session wraps an already-connected card and settles which application
dialect to speak: it first tries to open the USIM application (UICC
class 0x00, FCP select responses), and falls back to the classic GSM
directory (class 0xA0, fixed select headers) when the card predates
UICC. A Reader then walks the file system with explicit paths and reads
transparent and record-based elementary files, and a Dumper aggregates
the decoded fields into a SimDump where every field carries its own
outcome: a value, "not on this card", "PIN protected" or a decode
failure with the offending bytes.

The package never writes to the card and never touches secret material;
it issues only SELECT, READ BINARY, READ RECORD and the GET RESPONSE
handling the transport requires.
*/
package sim
