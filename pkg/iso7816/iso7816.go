/*
Package iso7816 implements data structures and logic to interact with smart cards according to the ISO/IEC 7816 standard.

This package provides the fundamental building blocks for APDU (Application Protocol Data Unit) communication, including Command and Response structures, Status Word (SW) analysis, command builders for the file-system instructions (SELECT, READ BINARY, READ RECORD), and parsers for the control information a card returns after a selection.

# Fundamentals

The communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x9FXX: Same as 61XX, but signalled by cards speaking the classic GSM
    dialect (ETSI TS 51.011, class byte 0xA0).
  - 0x6CXX: Error, wrong length expectation (XX is the correct length).
  - Other: Various error conditions.

# File Selection

The SELECT command (0xA4) navigates the card's file hierarchy: the Master
File (MF, 0x3F00) at the root, Dedicated Files (DF) as directories,
Elementary Files (EF) as leaves, and Application Dedicated Files (ADF)
selected by AID. What a SELECT returns depends on the dialect:

  - Classic GSM cards return a fixed-layout header describing the file
    (size, structure, record length).
  - UICC/USIM cards return a BER-TLV FCP template (tag '62').

Both are normalized into FileControlInfo by this package.

# Usage Example

	client := iso7816.NewClient(card)
	cls, _ := iso7816.NewClass(0xA0)

	trace, err := client.Send(iso7816.SelectFileID(cls, 0x3F00))
	if err != nil {
	    log.Fatal(err)
	}
	if !trace.IsSuccess() {
	    log.Fatalf("select failed: %s", trace.Last().Response.Status.Verbose())
	}
*/
package iso7816
