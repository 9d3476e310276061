package sse

import (
	"fmt"
	"io"
	"strings"
)

// An Encoder writes events in the Server-Sent Events wire format.  For each
// event it emits "id", "event" and "retry" lines for the fields present,
// then one "data" line per line of the payload, then a blank line closing
// the event.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes a single event.
func (e *Encoder) Encode(evt Event) error {
	if evt.Has(FieldID) {
		if _, err := fmt.Fprintf(e.w, "id: %s\n", evt.ID); err != nil {
			return err
		}
	}
	if evt.Has(FieldType) {
		if _, err := fmt.Fprintf(e.w, "event: %s\n", evt.Type); err != nil {
			return err
		}
	}
	if evt.Has(FieldRetry) {
		if _, err := fmt.Fprintf(e.w, "retry: %d\n", evt.Retry); err != nil {
			return err
		}
	}
	if evt.Has(FieldData) {
		for _, segment := range splitPayload(evt.Data) {
			if _, err := fmt.Fprintf(e.w, "data: %s\n", segment); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

// WriteComment writes a comment line, which decoders ignore.  Servers use
// comments as keep-alive traffic on idle streams.
func (e *Encoder) WriteComment(comment string) error {
	_, err := fmt.Fprintf(e.w, ": %s\n", comment)
	return err
}

// splitPayload splits a data payload on LF, CR and CRLF boundaries, each
// counting as exactly one break.  The payload itself never contains line
// terminators after this, so the encoded form cannot smuggle a stray frame
// boundary into the stream.
func splitPayload(data string) []string {
	segments := make([]string, 0, 1+strings.Count(data, "\n"))
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			segments = append(segments, data[start:i])
			start = i + 1
		case '\r':
			segments = append(segments, data[start:i])
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(segments, data[start:])
}
