package frame

import "io"

const (
	defaultChunkSize         = 8192
	maxConsecutiveEmptyReads = 100
)

// A Scanner drives a Framer from an io.Reader, turning the chunk-oriented
// Ingest/Next protocol into a pull iteration over frames:
//
//	scanner := frame.NewScanner(input, frame.NewLines())
//	for scanner.Next() {
//	    handle(scanner.Frame())
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
//
// The reader is only consulted when the framer asks for more bytes, so the
// Read call is the single suspension point of the whole pipeline.  A Scanner
// is single pass: once Next has returned false it stays false.
type Scanner struct {
	framer *Framer
	reader io.Reader
	chunk  []byte
	frame  []byte
	err    error
}

// NewScanner returns a Scanner reading chunks of a default size.
func NewScanner(r io.Reader, f *Framer) *Scanner {
	return NewScannerSize(r, f, defaultChunkSize)
}

// NewScannerSize returns a Scanner reading chunks of at most size bytes.
func NewScannerSize(r io.Reader, f *Framer, size int) *Scanner {
	return &Scanner{
		framer: f,
		reader: r,
		chunk:  make([]byte, size),
	}
}

// Next advances to the next frame, reading from the source as needed.  It
// returns false at the end of the stream or on error; Err tells which.
func (s *Scanner) Next() bool {
	for {
		payload, status, err := s.framer.Next()
		if err != nil {
			s.err = err
			return false
		}
		switch status {
		case Frame:
			s.frame = payload
			return true
		case Done:
			return false
		}
		if !s.fill() {
			return false
		}
	}
}

// fill reads one chunk from the source into the framer.  It returns false
// if reading failed in a way the framer cannot recover from.
func (s *Scanner) fill() bool {
	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := s.reader.Read(s.chunk)
		if n > 0 {
			s.framer.Ingest(s.chunk[:n])
		}
		if err == io.EOF {
			s.framer.Close()
			return true
		}
		if err != nil {
			s.err = err
			return false
		}
		if n > 0 {
			return true
		}
	}
	s.err = io.ErrNoProgress
	return false
}

// Frame returns the payload emitted by the last successful call to Next.
// It is only valid until the following call to Next.
func (s *Scanner) Frame() []byte {
	return s.frame
}

// Err returns the first error encountered while scanning, or nil if the
// stream ended cleanly.
func (s *Scanner) Err() error {
	return s.err
}
