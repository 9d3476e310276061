// Package lines implements newline-delimited payload framing: each payload
// is followed by a single LF.  It is the byte layer under JSON Lines.
package lines

import (
	"io"

	"github.com/arnodel/eventstream/frame"
)

// A Decoder reads LF-delimited payloads from a stream.  A non-empty final
// payload with no terminating LF is emitted once when the stream ends.
// Payload bytes are not validated.
type Decoder struct {
	scanner *frame.Scanner
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: frame.NewScanner(r, frame.NewLines())}
}

// Next advances to the next payload, returning false at the end of the
// stream or on error.
func (d *Decoder) Next() bool {
	return d.scanner.Next()
}

// Bytes returns the payload emitted by the last successful call to Next.
// The slice is only valid until the following call to Next.
func (d *Decoder) Bytes() []byte {
	return d.scanner.Frame()
}

// Text returns the last payload as a string.
func (d *Decoder) Text() string {
	return string(d.scanner.Frame())
}

// Err returns the first error encountered, or nil if the stream ended
// cleanly.
func (d *Decoder) Err() error {
	return d.scanner.Err()
}

// An Encoder writes payloads as LF-terminated lines.  Payloads containing
// LF bytes are written as-is; it is the caller's job to hand in payloads
// that fit on one line (JSON encoders do by construction).
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one payload followed by a LF.
func (e *Encoder) Encode(payload []byte) error {
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	_, err := e.w.Write(lf)
	return err
}

var lf = []byte{frame.LF}
