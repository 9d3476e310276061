// Package httpstream attaches the stream codecs to HTTP bodies: response
// writing with per-event flushing on the server side, and transparent
// content decoding on the client side.
package httpstream

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/arnodel/eventstream/encoding/sse"
)

// Content types for the supported wire framings.
const (
	ContentTypeEventStream = "text/event-stream"
	ContentTypeJSONLines   = "application/x-ndjson"
	ContentTypeJSONSeq     = "application/json-seq"
	ContentTypeLines       = "text/plain; charset=utf-8"
)

// ErrFlusherNotSupported is returned when the response writer cannot flush,
// which makes it useless for streaming.
var ErrFlusherNotSupported = errors.New("httpstream: http.ResponseWriter does not implement http.Flusher")

// Options configures a server-side event stream.
type Options struct {
	// Reconnect, when positive, is sent to the client as a retry hint at
	// the start of the stream.
	Reconnect time.Duration

	// StampIDs assigns a fresh UUID to every event sent without an ID of
	// its own.
	StampIDs bool
}

// A Stream writes Server-Sent Events to an HTTP response, flushing after
// each event so they reach the client without delay.  A Stream is used by
// a single handler goroutine.
type Stream struct {
	enc      *sse.Encoder
	flusher  http.Flusher
	stampIDs bool
}

// NewStream prepares w for event streaming: it sets the response headers
// and writes the reconnect hint if one is configured.  It fails with
// ErrFlusherNotSupported if w cannot flush.
func NewStream(w http.ResponseWriter, opts Options) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrFlusherNotSupported
	}

	header := w.Header()
	header.Set("Content-Type", ContentTypeEventStream)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	s := &Stream{
		enc:      sse.NewEncoder(w),
		flusher:  flusher,
		stampIDs: opts.StampIDs,
	}
	if opts.Reconnect > 0 {
		hint := sse.Event{Retry: opts.Reconnect.Milliseconds(), Set: sse.FieldRetry}
		if err := s.Send(hint); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send writes one event and flushes it to the client.
func (s *Stream) Send(evt sse.Event) error {
	if s.stampIDs && !evt.Has(sse.FieldID) {
		evt.ID = uuid.NewString()
		evt.Set |= sse.FieldID
	}
	if err := s.enc.Encode(evt); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// KeepAlive writes a comment line and flushes it.  Proxies tend to drop
// connections that stay silent; a periodic keep-alive prevents that.
func (s *Stream) KeepAlive() error {
	if err := s.enc.WriteComment("keep-alive"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
