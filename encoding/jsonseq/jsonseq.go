// Package jsonseq implements RFC 7464 JSON text sequences: each record is a
// record separator byte (0x1E) followed by JSON text and a LF.
package jsonseq

import (
	"io"

	"github.com/arnodel/eventstream/frame"
)

// A Decoder reads the records of a JSON text sequence.  The bytes between
// separators are returned verbatim, including the trailing LF a conforming
// encoder emits; JSON parsers skip it as insignificant whitespace.
//
// A stream whose first byte is not a record separator fails with
// frame.ErrMissingRecordSeparator before any record is emitted, and the
// sequence ends there.
type Decoder struct {
	scanner *frame.Scanner
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: frame.NewScanner(r, frame.NewRecords())}
}

// Next advances to the next record, returning false at the end of the
// stream or on error.
func (d *Decoder) Next() bool {
	return d.scanner.Next()
}

// Bytes returns the record emitted by the last successful call to Next.
// The slice is only valid until the following call to Next.
func (d *Decoder) Bytes() []byte {
	return d.scanner.Frame()
}

// Err returns the first error encountered, or nil if the stream ended
// cleanly.
func (d *Decoder) Err() error {
	return d.scanner.Err()
}

// An Encoder writes records in RFC 7464 framing: RS, payload, LF.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one record.
func (e *Encoder) Encode(payload []byte) error {
	if _, err := e.w.Write(rs); err != nil {
		return err
	}
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	_, err := e.w.Write(lf)
	return err
}

var (
	rs = []byte{frame.RS}
	lf = []byte{frame.LF}
)
