// Command esserve replays a JSON Lines file of payloads over HTTP, in any
// of the supported stream framings.  It is meant for exercising stream
// consumers against realistic, slow-arriving data.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/arnodel/eventstream/encoding/jsonseq"
	"github.com/arnodel/eventstream/encoding/lines"
	"github.com/arnodel/eventstream/encoding/sse"
	"github.com/arnodel/eventstream/httpstream"
)

func main() {
	var addr string
	var filename string
	var interval time.Duration
	var reconnect time.Duration
	var stampIDs bool

	flag.StringVar(&addr, "addr", "localhost:8080", "listen address")
	flag.StringVar(&filename, "file", "", "JSON Lines file to replay (required)")
	flag.DurationVar(&interval, "interval", 100*time.Millisecond, "delay between payloads")
	flag.DurationVar(&reconnect, "reconnect", 3*time.Second, "retry hint sent to SSE clients")
	flag.BoolVar(&stampIDs, "stamp-ids", false, "assign a UUID to each SSE event")
	flag.Parse()

	logger := newLogger()

	if filename == "" {
		logger.Error("missing -file argument")
		os.Exit(1)
	}
	payloads, err := loadPayloads(filename)
	if err != nil {
		logger.Error("cannot load payloads", "file", filename, "err", err)
		os.Exit(1)
	}
	logger.Info("loaded payloads", "file", filename, "count", len(payloads))

	srv := &server{
		logger:   logger,
		payloads: payloads,
		interval: interval,
		options: httpstream.Options{
			Reconnect: reconnect,
			StampIDs:  stampIDs,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/events", srv.serveEvents)
	r.Get("/jsonl", srv.serveJSONLines)
	r.Get("/jsonseq", srv.serveJSONSeq)

	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// loadPayloads reads a JSON Lines file into memory, one payload per line.
func loadPayloads(filename string) ([][]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var payloads [][]byte
	dec := lines.NewDecoder(f)
	for dec.Next() {
		line := dec.Bytes()
		payload := make([]byte, len(line))
		copy(payload, line)
		payloads = append(payloads, payload)
	}
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", filename, err)
	}
	return payloads, nil
}

type server struct {
	logger   *slog.Logger
	payloads [][]byte
	interval time.Duration
	options  httpstream.Options
}

func (s *server) serveEvents(w http.ResponseWriter, r *http.Request) {
	stream, err := httpstream.NewStream(w, s.options)
	if err != nil {
		s.logger.Error("cannot stream", "err", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	s.logger.Debug("client connected", "remote", r.RemoteAddr, "format", "sse")
	for _, payload := range s.payloads {
		evt := sse.Event{Data: string(payload), Set: sse.FieldData}
		if err := stream.Send(evt); err != nil {
			s.logger.Debug("client gone", "remote", r.RemoteAddr, "err", err)
			return
		}
		if !s.pause(r) {
			return
		}
	}
}

func (s *server) serveJSONLines(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", httpstream.ContentTypeJSONLines)
	flusher, _ := w.(http.Flusher)
	enc := lines.NewEncoder(w)
	s.logger.Debug("client connected", "remote", r.RemoteAddr, "format", "jsonl")
	for _, payload := range s.payloads {
		if err := enc.Encode(payload); err != nil {
			s.logger.Debug("client gone", "remote", r.RemoteAddr, "err", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if !s.pause(r) {
			return
		}
	}
}

func (s *server) serveJSONSeq(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", httpstream.ContentTypeJSONSeq)
	flusher, _ := w.(http.Flusher)
	enc := jsonseq.NewEncoder(w)
	s.logger.Debug("client connected", "remote", r.RemoteAddr, "format", "jsonseq")
	for _, payload := range s.payloads {
		if err := enc.Encode(payload); err != nil {
			s.logger.Debug("client gone", "remote", r.RemoteAddr, "err", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if !s.pause(r) {
			return
		}
	}
}

// pause waits for the configured interval, returning false if the client
// went away in the meantime.
func (s *server) pause(r *http.Request) bool {
	if s.interval <= 0 {
		return true
	}
	select {
	case <-time.After(s.interval):
		return true
	case <-r.Context().Done():
		return false
	}
}
