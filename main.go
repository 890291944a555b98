package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/gregLibert/sim-card/pkg/gsm"
	"github.com/gregLibert/sim-card/pkg/sim"
)

func main() {
	var (
		readerName = flag.String("reader", "", "connect to the reader whose name contains this string (default: first reader)")
		listOnly   = flag.Bool("list", false, "list the available readers and exit")
		asJSON     = flag.Bool("json", false, "print the dump as JSON instead of text")
		outDir     = flag.String("o", "", "also save the dump to this directory, named after the ICCID")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	logrus.SetLevel(logrus.WarnLevel)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *listOnly {
		if err := listReaders(); err != nil {
			logrus.Error(err)
			os.Exit(1)
		}
		return
	}

	// Errors bubble up through run so its defers disconnect the card
	// and release the context on every exit path.
	if err := run(*readerName, *asJSON, *outDir); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(readerName string, asJSON bool, outDir string) error {
	// --- 1. Hardware Setup ---
	ctx, card, err := connectToCard(readerName)
	if err != nil {
		return err
	}

	defer func() {
		if err := ctx.Release(); err != nil {
			logrus.Warnf("failed to release context: %v", err)
		}
	}()

	defer func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			logrus.Warnf("failed to disconnect card: %v", err)
		}
	}()

	// --- 2. Card Dialog ---
	session := sim.NewSession(card)
	if err := session.Start(); err != nil {
		return fmt.Errorf("cannot start card session: %w", err)
	}

	dump := sim.NewDumper(session).Dump()

	// --- 3. Output ---
	var rendered string
	if asJSON {
		raw, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return fmt.Errorf("cannot encode dump: %w", err)
		}
		rendered = string(raw)
	} else {
		rendered = renderText(dump)
	}
	fmt.Println(rendered)

	if outDir != "" {
		path, err := saveDump(outDir, dump, rendered, asJSON)
		if err != nil {
			return fmt.Errorf("cannot save dump: %w", err)
		}
		fmt.Printf("\nSaved to %s\n", path)
	}
	return nil
}

// connectToCard handles the PC/SC context establishment and reader
// connection. On error the context is already released.
func connectToCard(nameFilter string) (*scard.Context, *scard.Card, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil, fmt.Errorf("error establishing context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		releaseQuietly(ctx)
		return nil, nil, fmt.Errorf("no smart card reader found")
	}

	reader := ""
	for _, r := range readers {
		if strings.Contains(strings.ToLower(r), strings.ToLower(nameFilter)) {
			reader = r
			break
		}
	}
	if reader == "" {
		releaseQuietly(ctx)
		return nil, nil, fmt.Errorf("no reader matching %q (use -list to see them)", nameFilter)
	}

	fmt.Printf(">> Using reader: %s\n", reader)

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	sc, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		releaseQuietly(ctx)
		return nil, nil, fmt.Errorf("error connecting to card: %w", err)
	}

	return ctx, sc, nil
}

func releaseQuietly(ctx *scard.Context) {
	if err := ctx.Release(); err != nil {
		logrus.Warnf("failed to release context during error handling: %v", err)
	}
}

func listReaders() error {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("error establishing context: %w", err)
	}
	defer releaseQuietly(ctx)

	readers, err := ctx.ListReaders()
	if err != nil {
		return fmt.Errorf("error listing readers: %w", err)
	}
	if len(readers) == 0 {
		fmt.Println("No smart card reader found.")
		return nil
	}
	for i, r := range readers {
		fmt.Printf("%d: %s\n", i, r)
	}
	return nil
}

var sectionColor = color.New(color.FgCyan, color.Bold)

// renderText formats a dump for the terminal, one line per field.
func renderText(dump *sim.SimDump) string {
	var sb strings.Builder
	section := func(name string) {
		sb.WriteString("\n")
		sb.WriteString(sectionColor.Sprintf("== %s %s\n", name, strings.Repeat("=", 40-len(name))))
	}

	section("Card")
	fmt.Fprintf(&sb, "  %-16s %s\n", "Application", dump.Application)
	line(&sb, "ICCID", dump.ICCID, func(s string) string { return s })
	line(&sb, "IMSI", dump.Identity, func(id gsm.Identity) string {
		return fmt.Sprintf("%s (MCC %s, MNC %s, MSIN %s)", id.IMSI, id.MCC, id.MNC, id.MSIN)
	})
	line(&sb, "Phase", dump.Phase, func(s string) string { return s })
	line(&sb, "Admin data", dump.AdminData, func(ad gsm.AdminData) string {
		if ad.MNCLength > 0 {
			return fmt.Sprintf("%s, %d-digit MNC", ad.OperationMode, ad.MNCLength)
		}
		return ad.OperationMode
	})
	line(&sb, "Access classes", dump.AccessClasses, func(classes []int) string {
		if len(classes) == 0 {
			return "none"
		}
		parts := make([]string, len(classes))
		for i, c := range classes {
			parts[i] = fmt.Sprint(c)
		}
		return strings.Join(parts, ", ")
	})

	section("Network")
	line(&sb, "Provider", dump.SPN, func(spn gsm.ServiceProviderName) string { return spn.Name })
	line(&sb, "Location", dump.LOCI, func(loci gsm.LocationInfo) string {
		return fmt.Sprintf("MCC %s MNC %s LAC %04X, TMSI %s, %s",
			loci.MCC, loci.MNC, loci.LAC, loci.TMSI, loci.Status)
	})
	line(&sb, "Preferred PLMNs", dump.PLMNList, plmnList)
	line(&sb, "Forbidden PLMNs", dump.ForbiddenPLMN, plmnList)
	line(&sb, "HPLMN search", dump.HPLMNMinutes, func(m int) string {
		if m == 0 {
			return "disabled"
		}
		return fmt.Sprintf("every %d min", m)
	})

	section("Subscriber")
	line(&sb, "MSISDN", dump.MSISDN, dialEntries)
	line(&sb, "SMS centre", dump.SMSC, func(s string) string { return s })

	section("Phonebooks")
	line(&sb, "Contacts (ADN)", dump.ADN, dialEntries)
	line(&sb, "Fixed dialling", dump.FDN, dialEntries)
	line(&sb, "Service numbers", dump.SDN, dialEntries)
	line(&sb, "Last dialled", dump.LND, dialEntries)

	section("Messages")
	line(&sb, "Stored SMS", dump.SMS, messages)

	return sb.String()
}

// line renders one outcome: the value when present, a short marker for
// the other states.
func line[T any](sb *strings.Builder, name string, o sim.Outcome[T], show func(T) string) {
	var text string
	switch o.Status {
	case sim.StatusPresent:
		text = show(o.Value)
	case sim.StatusAbsent:
		text = color.HiBlackString("not on card")
	case sim.StatusPinLocked:
		text = color.YellowString("PIN required")
	case sim.StatusError:
		text = color.RedString("error: %v", o.Err)
	}
	fmt.Fprintf(sb, "  %-16s %s\n", name, text)
}

func plmnList(plmns []gsm.PLMN) string {
	if len(plmns) == 0 {
		return "empty"
	}
	parts := make([]string, len(plmns))
	for i, p := range plmns {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func dialEntries(entries []gsm.DialEntry) string {
	if len(entries) == 0 {
		return "empty"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.Name != "" {
			parts[i] = fmt.Sprintf("%s <%s>", e.Name, e.Number)
		} else {
			parts[i] = e.Number
		}
	}
	return strings.Join(parts, ", ")
}

func messages(msgs []gsm.Message) string {
	if len(msgs) == 0 {
		return "none"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d message(s)", len(msgs))
	for _, m := range msgs {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "    [%s] %s", m.Status, m.Peer)
		if m.Timestamp != "" {
			fmt.Fprintf(&sb, " at %s", m.Timestamp)
		}
		if m.Text != "" {
			fmt.Fprintf(&sb, ": %s", m.Text)
		} else if len(m.Raw) > 0 {
			fmt.Fprintf(&sb, ": % X", m.Raw)
		}
	}
	return sb.String()
}

// saveDump writes the rendered dump into dir, naming the file after the
// ICCID so dumps of different cards never collide.
func saveDump(dir string, dump *sim.SimDump, rendered string, asJSON bool) (string, error) {
	name := "sim"
	if dump.ICCID.IsPresent() {
		name = dump.ICCID.Value
	}
	ext := "txt"
	if asJSON {
		ext = "json"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102-150405"), ext))
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
