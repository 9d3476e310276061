package sse

import (
	"strconv"
	"strings"
)

// An Assembler accumulates event stream lines into events.  Lines must
// already be split on LF, CR or CRLF boundaries (see frame.NewEventLines);
// the assembler never sees line terminators.
//
// A blank line closes the current event.  An event that is still open when
// the stream ends is discarded, never emitted partially.
type Assembler struct {
	// Sentinel, when non-nil, is consulted with the finalized data
	// payload of each closed event.  If it returns true the event is a
	// terminal marker (for example a literal "[DONE]" payload): the
	// event is discarded and the sequence ends.
	Sentinel func(data string) bool

	cur     Event
	stopped bool
}

// Line feeds one line to the assembler.  When the line completes an event,
// that event is returned with emitted set to true.
func (a *Assembler) Line(line []byte) (evt Event, emitted bool) {
	if a.stopped {
		return Event{}, false
	}
	if len(line) == 0 {
		return a.finalize()
	}
	if line[0] == ':' {
		// Comment line.
		return Event{}, false
	}
	field, value, found := strings.Cut(string(line), ":")
	if found && strings.HasPrefix(value, " ") {
		// At most one leading space belongs to the separator.
		value = value[1:]
	}
	switch field {
	case "event":
		a.cur.Type = value
		a.cur.Set |= FieldType
	case "data":
		a.cur.Data += value + "\n"
		a.cur.Set |= FieldData
	case "id":
		a.cur.ID = value
		a.cur.Set |= FieldID
	case "retry":
		n, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			a.cur.Retry = n
			a.cur.Set |= FieldRetry
		}
		// A malformed retry value consumes the line with no diagnostic.
	default:
		// Unknown fields are ignored.
	}
	return Event{}, false
}

// finalize closes the accumulated event on a blank line.
func (a *Assembler) finalize() (Event, bool) {
	evt := a.cur
	a.cur = Event{}
	if evt.Set == 0 {
		// Nothing accumulated (for example two blank lines in a row).
		return Event{}, false
	}
	if evt.Has(FieldData) {
		evt.Data = strings.TrimSuffix(evt.Data, "\n")
		if a.Sentinel != nil && a.Sentinel(evt.Data) {
			a.stopped = true
			return Event{}, false
		}
	}
	return evt, true
}

// Stopped reports whether the sentinel predicate ended the sequence.
func (a *Assembler) Stopped() bool {
	return a.stopped
}
