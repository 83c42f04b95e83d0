// Command pdftext extracts the text of a PDF file or URL.
//
// Fonts that use Identity-H without a ToUnicode CMap are repaired from
// "to-unicode-<BaseFont>" files, looked up in the CMaps compiled into the
// binary and then in the --cmap directory (by default the directory
// pdftext was started in).
//
// Usage:
//
//	pdftext --file report.pdf --start 2 --end 5 --sort --out report.txt
//	pdftext --file https://example.com/a.pdf --pages 1,3 --encoding GBK
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/tsawler/pdftext"
	"github.com/tsawler/pdftext/output"
)

var version = "dev"

// pageList collects --pages values: one or more page numbers separated by
// commas or spaces. The flag may be repeated.
type pageList []int

func (p *pageList) String() string {
	parts := make([]string, len(*p))
	for i, n := range *p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (p *pageList) Set(s string) error {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return errors.New("no page numbers")
	}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid page number %q", f)
		}
		nums[i] = n
	}
	*p = append(*p, nums...)
	return nil
}

// afterPages reports whether the last flag in consumed was --pages, whose
// value may continue in the following arguments ("--pages 2 1").
func afterPages(consumed []string) bool {
	n := len(consumed)
	if n >= 1 && (strings.HasPrefix(consumed[n-1], "-pages=") || strings.HasPrefix(consumed[n-1], "--pages=")) {
		return true
	}
	return n >= 2 && (consumed[n-2] == "-pages" || consumed[n-2] == "--pages")
}

type config struct {
	file      string
	start     int
	end       int
	pages     pageList
	sort      bool
	out       string
	encoding  string
	cmapRoot  string
	html      bool
	ocr       bool
	noRepair  bool
	verbose   bool
	version   bool
	cmapIsSet bool
	endIsSet  bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	var cfg config
	fs := flag.NewFlagSet("pdftext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.file, "file", "", "input PDF file path or URL (required)")
	fs.IntVar(&cfg.start, "start", 1, "first page to extract")
	fs.IntVar(&cfg.end, "end", 0, "last page to extract (default: the last page of the document)")
	fs.Var(&cfg.pages, "pages", "pages to extract, comma or space separated; overrides --start and --end")
	fs.BoolVar(&cfg.sort, "sort", false, "sort text by position")
	fs.StringVar(&cfg.out, "out", "", "output file (default stdout)")
	fs.StringVar(&cfg.encoding, "encoding", "UTF-8", "output character set")
	fs.StringVar(&cfg.cmapRoot, "cmap", "", "directory holding to-unicode-<BaseFont> CMaps (default: working directory)")
	fs.BoolVar(&cfg.html, "html", false, "write an HTML document with the document metadata")
	fs.BoolVar(&cfg.ocr, "ocr", false, "recognise images on pages without text (needs a build with -tags ocr)")
	fs.BoolVar(&cfg.noRepair, "no-repair", false, "do not repair fonts lacking a ToUnicode CMap")
	fs.BoolVar(&cfg.verbose, "verbose", false, "log debug details, including fonts left unrepaired")
	fs.BoolVar(&cfg.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	// flag stops at the first non-flag argument. Page numbers following
	// --pages are taken as more pages and parsing resumes after them.
	for rest := fs.Args(); len(rest) > 0; rest = fs.Args() {
		if !afterPages(args[:len(args)-len(rest)]) {
			return nil, fmt.Errorf("unexpected argument %q", rest[0])
		}
		n := 0
		for n < len(rest) && cfg.pages.Set(rest[n]) == nil {
			n++
		}
		if n == 0 {
			return nil, fmt.Errorf("unexpected argument %q", rest[0])
		}
		args = rest[n:]
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cmap":
			cfg.cmapIsSet = true
		case "end":
			cfg.endIsSet = true
		}
	})
	if !cfg.endIsSet {
		cfg.end = math.MaxInt
	}
	if !cfg.version && cfg.file == "" {
		fs.Usage()
		return nil, errors.New("--file is required")
	}
	return &cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "pdftext: %v\n", err)
		return 2
	}
	if cfg.version {
		fmt.Fprintf(stdout, "pdftext %s\n", version)
		return 0
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if !cfg.cmapIsSet {
		if cfg.cmapRoot, err = os.Getwd(); err != nil {
			logger.Warn("cmap directory lookup disabled", "error", err)
			cfg.cmapRoot = ""
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := extract(ctx, cfg, stdout, logger); err != nil {
		logger.Error("extraction failed", "file", cfg.file, "error", err)
		return 1
	}
	return 0
}

func extract(ctx context.Context, cfg *config, stdout io.Writer, logger *slog.Logger) (err error) {
	enc, err := output.LookupEncoding(cfg.encoding)
	if err != nil {
		return err
	}

	out := stdout
	if cfg.out != "" {
		f, cerr := os.Create(cfg.out)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}
	w := enc.NewWriter(out)
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	var sink output.Sink = output.NewTextSink(w)
	if cfg.html {
		sink = output.NewHTMLSink(w, enc.Name)
	}

	ext := pdftext.Open(cfg.file).
		WithContext(ctx).
		PageRange(cfg.start, cfg.end).
		CMapRoot(cfg.cmapRoot)
	if len(cfg.pages) > 0 {
		ext = ext.Pages(cfg.pages...)
	}
	if cfg.sort {
		ext = ext.SortByPosition()
	}
	if cfg.noRepair {
		ext = ext.WithoutCMapRepair()
	}
	if cfg.ocr {
		ext = ext.OCR()
	}

	logger.Debug("extracting", "file", cfg.file, "cmap", cfg.cmapRoot, "encoding", enc.Name)
	warnings, err := ext.WriteTo(sink)
	for _, warn := range warnings {
		if warn.Kind == pdftext.MissingCMap {
			logger.Debug(warn.String())
		} else {
			logger.Warn(warn.String())
		}
	}
	return err
}
