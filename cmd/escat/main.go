package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"runtime/debug"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/arnodel/eventstream/encoding/jsonseq"
	"github.com/arnodel/eventstream/encoding/lines"
	"github.com/arnodel/eventstream/encoding/sse"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
		}
	}()

	// Parse the command line arguments
	var filename string
	var inputFormat string
	var outputFormat string
	var sentinel string
	var useColors bool

	if isatty.IsTerminal(os.Stdout.Fd()) {
		useColors = true
	}

	flag.BoolFunc("colors", "force using colors", func(s string) error {
		useColors = true
		return nil
	})
	flag.BoolFunc("nocolors", "disable colors", func(s string) error {
		useColors = false
		return nil
	})

	flag.StringVar(&filename, "file", "", "input filename (stdin if omitted)")
	flag.StringVar(&inputFormat, "in", "auto", "input format (sse, jsonl, jsonseq, lines)")
	flag.StringVar(&outputFormat, "out", "sse", "output format (sse, jsonl, jsonseq, lines)")
	flag.StringVar(&sentinel, "sentinel", "", "stop at an event whose data equals this value")
	flag.Parse()

	// Set up stdout for handling colors
	var stdout io.Writer = os.Stdout
	if useColors {
		stdout = colorable.NewColorableStdout()
	}

	// Open input file
	var input io.Reader
	if filename != "" {
		var err error
		input, err = os.Open(filename)
		if err != nil {
			fatalError("error opening %q: %s", filename, err)
		}
	} else {
		input = os.Stdin
	}

	// Choose the input decoder
	if inputFormat == "auto" {
		var start = make([]byte, 40)
		n, err := input.Read(start)
		if err == io.EOF {
			fatalError("unable to guess format of empty input")
		}
		if err != nil {
			fatalError("unable to read input: %s", err)
		}
		inputFormat = guessFormat(start[:n])
		if inputFormat == "" {
			fatalError("unable to guess input format, please specify -in FORMAT")
		}
		input = io.MultiReader(bytes.NewReader(start[:n]), input)
	}

	var decoder eventSource
	switch inputFormat {
	case "sse":
		sseDecoder := sse.NewDecoder(input)
		if sentinel != "" {
			sseDecoder.Sentinel = func(data string) bool { return data == sentinel }
		}
		decoder = sseDecoder
	case "jsonl", "lines":
		decoder = lineSource{dec: lines.NewDecoder(input), sentinel: sentinel}
	case "jsonseq", "seq":
		decoder = seqSource{dec: jsonseq.NewDecoder(input), sentinel: sentinel}
	default:
		fatalError("invalid input format: %q", inputFormat)
	}

	// Write the output stream to stdout
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	var encoder eventSink
	switch outputFormat {
	case "sse":
		if useColors {
			encoder = sse.NewEncoder(&fieldColorWriter{w: out})
		} else {
			encoder = sse.NewEncoder(out)
		}
	case "jsonl", "lines":
		encoder = lineSink{enc: lines.NewEncoder(out)}
	case "jsonseq", "seq":
		encoder = seqSink{enc: jsonseq.NewEncoder(out)}
	default:
		fatalError("invalid output format: %q", outputFormat)
	}

	// If we are writing to a terminal, flush after each event so user gets feedback early.
	flushEvery := isatty.IsTerminal(os.Stdout.Fd())

	err := pump(decoder, encoder, out, flushEvery)
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError("error: %s", err)
	}
}

// An eventSource produces events one at a time, Decoder style.
type eventSource interface {
	Next() bool
	Event() sse.Event
	Err() error
}

type eventSink interface {
	Encode(evt sse.Event) error
}

func pump(src eventSource, dst eventSink, out *bufio.Writer, flushEvery bool) error {
	for src.Next() {
		if err := dst.Encode(src.Event()); err != nil {
			return err
		}
		if flushEvery {
			if err := out.Flush(); err != nil {
				return err
			}
		}
	}
	return src.Err()
}

// lineSource adapts a line decoder to the event interface, one line per
// event data payload.
type lineSource struct {
	dec      *lines.Decoder
	sentinel string
}

func (s lineSource) Next() bool {
	if !s.dec.Next() {
		return false
	}
	return s.sentinel == "" || s.dec.Text() != s.sentinel
}

func (s lineSource) Event() sse.Event {
	return sse.Event{Data: s.dec.Text(), Set: sse.FieldData}
}

func (s lineSource) Err() error { return s.dec.Err() }

type seqSource struct {
	dec      *jsonseq.Decoder
	sentinel string
}

func (s seqSource) Next() bool {
	if !s.dec.Next() {
		return false
	}
	return s.sentinel == "" || string(s.dec.Bytes()) != s.sentinel
}

func (s seqSource) Event() sse.Event {
	return sse.Event{Data: string(s.dec.Bytes()), Set: sse.FieldData}
}

func (s seqSource) Err() error { return s.dec.Err() }

type lineSink struct {
	enc *lines.Encoder
}

func (s lineSink) Encode(evt sse.Event) error {
	return s.enc.Encode([]byte(evt.Data))
}

type seqSink struct {
	enc *jsonseq.Encoder
}

func (s seqSink) Encode(evt sse.Event) error {
	return s.enc.Encode([]byte(evt.Data))
}

// fieldColorWriter colors the "name:" prefix of each SSE line.  It relies
// on sse.Encoder writing whole lines, so each Write starts at a field
// name.
type fieldColorWriter struct {
	w io.Writer
}

func (cw *fieldColorWriter) Write(p []byte) (int, error) {
	i := bytes.IndexByte(p, ':')
	if i <= 0 {
		_, err := cw.w.Write(p)
		return len(p), err
	}
	if _, err := cw.w.Write(BrightBlue); err != nil {
		return 0, err
	}
	if _, err := cw.w.Write(p[:i+1]); err != nil {
		return 0, err
	}
	if _, err := cw.w.Write(Reset); err != nil {
		return 0, err
	}
	_, err := cw.w.Write(p[i+1:])
	return len(p), err
}

type FormatGuesser struct {
	pattern *regexp.Regexp
	format  string
}

func formatGuesser(format string, pattern string) FormatGuesser {
	return FormatGuesser{
		pattern: regexp.MustCompile(pattern),
		format:  format,
	}
}

var formatGuessers = []FormatGuesser{
	formatGuesser("jsonseq", `^\x1e`),
	formatGuesser("sse", `^(data|event|id|retry):`),
	formatGuesser("sse", `^:`),
	formatGuesser("jsonl", `^[{[]`),
}

func guessFormat(start []byte) string {
	for _, guesser := range formatGuessers {
		if guesser.pattern.Match(start) {
			return guesser.format
		}
	}
	return "lines"
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg, args...)
	os.Exit(1)
}

// Some color ANSI codes
var (
	Reset      = []byte("\033[0m")
	BrightBlue = []byte("\033[34;1m")
)
