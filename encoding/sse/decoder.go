package sse

import (
	"io"

	"github.com/arnodel/eventstream/frame"
)

// A Decoder reads a Server-Sent Event stream and emits events one at a time:
//
//	dec := sse.NewDecoder(input)
//	for dec.Next() {
//	    handle(dec.Event())
//	}
//	if err := dec.Err(); err != nil {
//	    // handle error
//	}
//
// A Decoder is single pass and single consumer.  Reads from the input happen
// only inside Next, and only when the line framer has run out of buffered
// bytes.
type Decoder struct {
	// Sentinel, when set before the first call to Next, stops the stream
	// on a terminal data payload instead of emitting it.  See
	// Assembler.Sentinel.
	Sentinel func(data string) bool

	scanner *frame.Scanner
	asm     *Assembler
	evt     Event
	done    bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: frame.NewScanner(r, frame.NewEventLines())}
}

// Next advances to the next event, returning false at the end of the stream
// or on error.  An event that the end of input cuts short is discarded.
func (d *Decoder) Next() bool {
	if d.done {
		return false
	}
	if d.asm == nil {
		d.asm = &Assembler{Sentinel: d.Sentinel}
	}
	for d.scanner.Next() {
		evt, emitted := d.asm.Line(d.scanner.Frame())
		if d.asm.Stopped() {
			d.done = true
			return false
		}
		if emitted {
			d.evt = evt
			return true
		}
	}
	d.done = true
	return false
}

// Event returns the event emitted by the last successful call to Next.
func (d *Decoder) Event() Event {
	return d.evt
}

// Err returns the first error encountered by the underlying byte source,
// or nil if the stream ended cleanly.
func (d *Decoder) Err() error {
	return d.scanner.Err()
}
