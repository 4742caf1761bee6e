package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/grailbio/base/must"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
	"v.io/x/lib/cmd/flagvar"

	"github.com/cosnicolaou/cpmarc"
	"github.com/cosnicolaou/cpmarc/internal/basic"
	"github.com/cosnicolaou/cpmarc/internal/srcio"
	"github.com/cosnicolaou/cpmarc/internal/textfilter"
)

// version is the cpmarc CLI release identifier reported by --version.
const version = "0.1.0"

var commandline struct {
	Output  string `cmd:"o,,'output directory, defaults to the current directory'"`
	List    bool   `cmd:"l,false,'list archive contents without extracting'"`
	Text    bool   `cmd:"t,false,'convert extracted text: strip ^Z, CRLF to LF'"`
	Format  string `cmd:"f,,'force format: lbr, arc, squeeze, crunch or crlzh'"`
	Version bool   `cmd:"version,false,'print the cpmarc version and exit'"`
}

func init() {
	must.Nil(flagvar.RegisterFlagsInStruct(flag.CommandLine, "cmd", &commandline, nil, nil))
	srcio.RegisterS3()
}

func main() {
	flag.Parse()

	if commandline.Version {
		fmt.Println("cpmarc", version)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cpmarc [flags] <file>")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	if err := run(ctx, args[0]); err != nil {
		log.Printf("cpmarc: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, inputFile string) error {
	rd, _, cleanup, err := srcio.Open(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("open %v: %w", inputFile, err)
	}
	defer cleanup(ctx)

	data, err := ioutil.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("read %v: %w", inputFile, err)
	}

	format := forcedFormat(commandline.Format)
	if format == cpmarc.FormatUnknown {
		format = cpmarc.Detect(data, filepath.Ext(inputFile))
	}
	if format == cpmarc.FormatUnknown {
		return fmt.Errorf("cannot determine format of %v; use -f to force one", inputFile)
	}

	switch format {
	case cpmarc.FormatLBR:
		return handleLBR(ctx, data, inputFile)
	case cpmarc.FormatARC:
		return handleARC(ctx, data, inputFile)
	default:
		return handleStream(data, inputFile, format)
	}
}

func forcedFormat(f string) cpmarc.FormatTag {
	switch strings.ToLower(f) {
	case "lbr":
		return cpmarc.FormatLBR
	case "arc":
		return cpmarc.FormatARC
	case "squeeze":
		return cpmarc.FormatSqueeze
	case "crunch":
		return cpmarc.FormatCrunch
	case "crlzh":
		return cpmarc.FormatCrLZH
	default:
		return cpmarc.FormatUnknown
	}
}

func handleLBR(ctx context.Context, data []byte, inputFile string) error {
	entries, err := cpmarc.ListLBR(data)
	if err != nil {
		return err
	}
	if commandline.List {
		return listTable([]string{"Filename", "Offset", "Size"}, len(entries), func(w *tabwriter.Writer, i int) {
			e := entries[i]
			fmt.Fprintf(w, "%s\t%d\t%d\n", e.Name, e.Offset, e.Length)
		})
	}

	bar := newBar(int64(len(entries)))
	errs := errors.M{}
	for _, e := range entries {
		member, err := cpmarc.ExtractLBRMember(data, e)
		if err != nil {
			errs.Append(fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		errs.Append(writeMember(e.Name, applyTextFilter(member)))
		bar.Add(1)
	}
	finishBar(bar)
	fmt.Printf("extracted %d file(s)\n", len(entries))
	return errs.Err()
}

func handleARC(ctx context.Context, data []byte, inputFile string) error {
	entries, err := cpmarc.ListARC(data)
	if err != nil {
		return err
	}
	if commandline.List {
		return listTable([]string{"Filename", "Original", "Compressed", "Method"}, len(entries), func(w *tabwriter.Writer, i int) {
			e := entries[i]
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\n", e.Name, e.OrigSize, e.CompSize, e.Method)
		})
	}

	bar := newBar(int64(len(entries)))
	errs := errors.M{}
	for _, e := range entries {
		member, err := cpmarc.ExtractARCMember(data, e)
		if err != nil {
			errs.Append(fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		errs.Append(writeMember(e.Name, applyTextFilter(member)))
		bar.Add(1)
	}
	finishBar(bar)
	fmt.Printf("extracted %d file(s)\n", len(entries))
	return errs.Err()
}

func handleStream(data []byte, inputFile string, format cpmarc.FormatTag) error {
	if commandline.List {
		return fmt.Errorf("cannot list contents of a %v stream", format)
	}

	var (
		decoded []byte
		err     error
	)
	switch format {
	case cpmarc.FormatSqueeze:
		decoded, err = cpmarc.Unsqueeze(data)
	case cpmarc.FormatCrunch:
		decoded, err = cpmarc.Uncrunch(data)
	case cpmarc.FormatCrLZH:
		decoded, err = cpmarc.Uncrlzh(data)
	}
	if err != nil {
		return err
	}

	name := outputFilename(inputFile, format, data)
	if err := writeMember(name, applyTextFilter(decoded)); err != nil {
		return err
	}
	fmt.Printf("  %s (%d bytes)\n", name, len(decoded))
	return nil
}

// outputFilename picks a name for a decoded single-stream payload: the
// filename embedded in the stream header if recoverable, else a guess
// reconstructed from the compressed file's own extension.
func outputFilename(inputFile string, format cpmarc.FormatTag, data []byte) string {
	if name, err := cpmarc.GetOriginalFilename(data, format); err == nil && name != "" {
		return name
	}

	ext := strings.ToLower(filepath.Ext(inputFile))
	stem := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	if len(ext) == 4 {
		switch ext {
		case ".qqq", ".zzz", ".yyy":
			return stem
		}
		newExt := string(ext[1]) + string(ext[1]) + string(ext[3])
		return stem + "." + newExt
	}
	return stem + ".out"
}

func applyTextFilter(data []byte) []byte {
	if !commandline.Text {
		return data
	}
	return textfilter.CRLFToLF(textfilter.StripEOF(data))
}

// writeMember writes one extracted member's bytes to the output
// directory (or the current directory if none was given), detokenizing
// tokenized BASIC payloads along the way.
func writeMember(name string, data []byte) error {
	if strings.EqualFold(filepath.Ext(name), ".bas") && basic.IsTokenized(data) {
		data = basic.DetokenizeBytes(data)
	}

	dir := commandline.Output
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("  %s\n", name)
	return nil
}

func listTable(header []string, n int, row func(w *tabwriter.Writer, i int)) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i := 0; i < n; i++ {
		row(w, i)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d file(s)\n", n)
	return nil
}

// newBar starts a member-count progress bar, suppressed for non-TTY
// output (and for single-member archives, where it would just flash by).
func newBar(total int64) *progressbar.ProgressBar {
	if total <= 1 || !terminal.IsTerminal(int(os.Stdout.Fd())) {
		return progressbar.NewOptions64(total, progressbar.OptionSetWriter(ioutil.Discard))
	}
	return progressbar.NewOptions64(total, progressbar.OptionSetWriter(os.Stderr))
}

func finishBar(bar *progressbar.ProgressBar) {
	bar.Finish()
}
