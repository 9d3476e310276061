// Package frame implements incremental delimiter state machines that split a
// stream of byte chunks into frames.
//
// A Framer is driven by its consumer: chunks of any size (including single
// bytes and empty chunks) are fed in with Ingest, the end of the byte source
// is signalled with Close, and frames are pulled out with Next.  A Framer
// owns its buffer and never starts goroutines, so output order is the input
// order and a framer can simply be dropped when the consumer goes away.
//
// Three framings are provided:
//
//   - NewLines splits on LF only (newline-delimited payloads, JSON Lines)
//   - NewEventLines splits on LF, CR or CRLF (the event stream format)
//   - NewRecords splits on the ASCII record separator (RFC 7464)
package frame

import (
	"bytes"
	"errors"
)

// Byte values mandated by the wire formats.
const (
	LF byte = 0x0a // line feed
	CR byte = 0x0d // carriage return
	RS byte = 0x1e // record separator (RFC 7464)
)

// ErrMissingRecordSeparator is returned by a record framer when the first
// byte of a non-empty stream is not a record separator.  It is fatal: no
// frame is emitted before it and none will be emitted after.
var ErrMissingRecordSeparator = errors.New("frame: stream does not start with a record separator")

// Status is the answer a Framer gives when asked for the next frame.
type Status uint8

const (
	// More means the framer cannot make progress until another chunk is
	// ingested or the source is closed.
	More Status = iota

	// Frame means a frame payload was emitted.
	Frame

	// Done means the stream is finished.  Done is terminal: no later call
	// will emit a frame.
	Done
)

type state uint8

const (
	stateInitial state = iota
	stateScan          // scanning for the next delimiter
	stateCR            // just consumed a CR; a following LF must be discarded
	stateRecord        // inside a record, leading separator consumed
	stateDone
)

// A Framer incrementally splits ingested bytes into frames.  The zero value
// is not usable; use one of the constructors.
type Framer struct {
	buf    []byte
	state  state
	closed bool
	err    error

	// Policy, fixed at construction.
	crlf    bool // delimiters are LF, CR and CRLF instead of LF alone
	records bool // record separator prefixed framing
}

// NewLines returns a framer that splits its input on LF bytes.  At the end
// of the stream a non-empty remainder with no final delimiter is emitted
// once as a last frame.  The payload bytes are not validated.
func NewLines() *Framer {
	return &Framer{state: stateScan}
}

// NewEventLines returns a framer for lines of an event stream, where LF, CR
// and CRLF each terminate exactly one line.  A CRLF split across two chunks
// is still recognised as a single terminator.
func NewEventLines() *Framer {
	return &Framer{state: stateScan, crlf: true}
}

// NewRecords returns a framer for RFC 7464 JSON text sequences.  Each record
// is introduced by a record separator byte; the first byte of the stream
// must be one, otherwise Next reports ErrMissingRecordSeparator.  Records
// that turn out empty (two adjacent separators) are skipped silently.
func NewRecords() *Framer {
	return &Framer{records: true}
}

// Ingest appends a chunk of bytes from the source.  Empty chunks are
// allowed.  Ingest panics if called after Close.
func (f *Framer) Ingest(chunk []byte) {
	if f.closed {
		panic("frame: Ingest after Close")
	}
	f.buf = append(f.buf, chunk...)
}

// Close tells the framer that the byte source is exhausted.  Buffered bytes
// can still be drained with Next afterwards.
func (f *Framer) Close() {
	f.closed = true
}

// Next asks the framer what comes next: a frame payload, a request for more
// input, or the end of the stream.  An emitted payload aliases the framer's
// buffer and stays valid until the next call to Ingest or Next; callers that
// keep a frame longer must copy it.
//
// A non-nil error is terminal and is reported together with Done.
func (f *Framer) Next() ([]byte, Status, error) {
	for {
		switch f.state {
		case stateInitial:
			// Only record framers start here: the first byte of the
			// stream is checked before anything is emitted.
			if len(f.buf) == 0 {
				if f.closed {
					f.state = stateDone
					return nil, Done, nil
				}
				return nil, More, nil
			}
			if f.buf[0] != RS {
				f.state = stateDone
				f.err = ErrMissingRecordSeparator
				return nil, Done, f.err
			}
			f.buf = f.buf[1:]
			f.state = stateRecord

		case stateScan:
			i, width := f.delimiterIndex()
			if i >= 0 {
				payload := f.buf[:i]
				if width == 0 {
					// CR was the delimiter; remember to drop a
					// following LF, which may not have arrived yet.
					f.buf = f.buf[i+1:]
					f.state = stateCR
				} else {
					f.buf = f.buf[i+width:]
				}
				return payload, Frame, nil
			}
			return f.finishOrMore()

		case stateCR:
			if len(f.buf) > 0 {
				if f.buf[0] == LF {
					f.buf = f.buf[1:]
				}
				f.state = stateScan
				continue
			}
			if f.closed {
				// Nothing left to discard.
				f.state = stateScan
				continue
			}
			return nil, More, nil

		case stateRecord:
			i := bytes.IndexByte(f.buf, RS)
			if i < 0 {
				return f.finishOrMore()
			}
			payload := f.buf[:i]
			// The separator found starts the following record.
			f.buf = f.buf[i+1:]
			if len(payload) == 0 {
				// Redundant separator, e.g. from an encoder that
				// emitted one too many.  Not a frame.
				continue
			}
			return payload, Frame, nil

		case stateDone:
			return nil, Done, f.err
		}
	}
}

// delimiterIndex locates the next delimiter in the buffer.  The returned
// width is the number of bytes to consume after the payload; a width of
// zero means the delimiter is a CR whose optional LF partner has not been
// resolved yet.
func (f *Framer) delimiterIndex() (index, width int) {
	if !f.crlf {
		return bytes.IndexByte(f.buf, LF), 1
	}
	for i, b := range f.buf {
		switch b {
		case LF:
			return i, 1
		case CR:
			if i+1 < len(f.buf) {
				if f.buf[i+1] == LF {
					return i, 2
				}
				return i, 1
			}
			// CR is the last buffered byte: the next chunk decides
			// whether this is a lone CR or half a CRLF.
			return i, 0
		}
	}
	return -1, 0
}

// finishOrMore handles a buffer with no delimiter in it: either the source
// is exhausted, in which case a non-empty remainder becomes the final frame,
// or more input is needed.
func (f *Framer) finishOrMore() ([]byte, Status, error) {
	if !f.closed {
		return nil, More, nil
	}
	if len(f.buf) > 0 {
		payload := f.buf
		f.buf = nil
		f.state = stateDone
		return payload, Frame, nil
	}
	f.state = stateDone
	return nil, Done, nil
}
