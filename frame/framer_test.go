package frame

import (
	"errors"
	"fmt"
	"testing"
)

// collectFrames drives a framer by hand, feeding the input in chunks of the
// given size, and gathers every emitted frame.
func collectFrames(t *testing.T, f *Framer, input []byte, chunkSize int) ([]string, error) {
	t.Helper()
	var frames []string
	closed := false
	for {
		payload, status, err := f.Next()
		if err != nil {
			return frames, err
		}
		switch status {
		case Frame:
			frames = append(frames, string(payload))
		case Done:
			return frames, nil
		case More:
			if closed {
				t.Fatal("framer asked for more input after Close")
			}
			if len(input) == 0 {
				f.Close()
				closed = true
				continue
			}
			n := chunkSize
			if n > len(input) {
				n = len(input)
			}
			f.Ingest(input[:n])
			input = input[n:]
		}
	}
}

// runFramerTests checks that each input decodes to the expected frames
// independently of how the bytes are chunked, down to one byte per chunk.
func runFramerTests(t *testing.T, newFramer func() *Framer, tests []framerTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, chunkSize := range []int{1, 2, 3, len(tt.input) + 1} {
				t.Run(fmt.Sprintf("chunkSize=%d", chunkSize), func(t *testing.T) {
					frames, err := collectFrames(t, newFramer(), []byte(tt.input), chunkSize)
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("error: got %v, want %v", err, tt.wantErr)
					}
					assertFramesEqual(t, frames, tt.want)
				})
			}
		})
	}
}

type framerTest struct {
	name    string
	input   string
	want    []string
	wantErr error
}

func assertFramesEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("frame count mismatch: got %d (%q), want %d (%q)", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("frame %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLinesFramer(t *testing.T) {
	runFramerTests(t, NewLines, []framerTest{
		{
			name:  "terminated lines",
			input: "hello\nworld\n",
			want:  []string{"hello", "world"},
		},
		{
			name:  "trailing remainder emitted",
			input: "hello\nworld",
			want:  []string{"hello", "world"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "empty lines preserved",
			input: "\n\na\n",
			want:  []string{"", "", "a"},
		},
		{
			name:  "single newline",
			input: "\n",
			want:  []string{""},
		},
		{
			name:  "carriage return is not a delimiter",
			input: "a\r\nb\n",
			want:  []string{"a\r", "b"},
		},
		{
			name:  "payload bytes are not validated",
			input: "\x00\x1e\xff\n",
			want:  []string{"\x00\x1e\xff"},
		},
	})
}

func TestEventLinesFramer(t *testing.T) {
	runFramerTests(t, NewEventLines, []framerTest{
		{
			name:  "lf terminated",
			input: "hello\nworld\n",
			want:  []string{"hello", "world"},
		},
		{
			name:  "cr terminated",
			input: "hello\rworld\r",
			want:  []string{"hello", "world"},
		},
		{
			name:  "crlf terminated",
			input: "hello\r\nworld\r\n",
			want:  []string{"hello", "world"},
		},
		{
			name:  "crlf is a single terminator",
			input: "a\r\n\r\nb\n",
			want:  []string{"a", "", "b"},
		},
		{
			name:  "two bare crs are two terminators",
			input: "a\r\rb",
			want:  []string{"a", "", "b"},
		},
		{
			name:  "cr at end of stream",
			input: "a\r",
			want:  []string{"a"},
		},
		{
			name:  "trailing remainder emitted",
			input: "a\rb",
			want:  []string{"a", "b"},
		},
		{
			name:  "lf after cr from an earlier line",
			input: "a\n\rb\n",
			want:  []string{"a", "", "b"},
		},
	})
}

func TestRecordsFramer(t *testing.T) {
	runFramerTests(t, NewRecords, []framerTest{
		{
			name:  "two records",
			input: "\x1eone\x1etwo",
			want:  []string{"one", "two"},
		},
		{
			name:  "records keep their trailing newline",
			input: "\x1eone\n\x1etwo\n",
			want:  []string{"one\n", "two\n"},
		},
		{
			name:  "adjacent separators produce no empty frame",
			input: "\x1e\x1eabc",
			want:  []string{"abc"},
		},
		{
			name:  "lone separator at end of stream",
			input: "\x1e",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:    "missing initial separator",
			input:   "abc",
			want:    nil,
			wantErr: ErrMissingRecordSeparator,
		},
		{
			name:    "whitespace before first separator",
			input:   "\n\x1eabc",
			want:    nil,
			wantErr: ErrMissingRecordSeparator,
		},
	})
}

func TestFramerDoneIsTerminal(t *testing.T) {
	f := NewLines()
	f.Ingest([]byte("a\n"))
	f.Close()
	if _, status, _ := f.Next(); status != Frame {
		t.Fatalf("expected a frame, got status %d", status)
	}
	if _, status, _ := f.Next(); status != Done {
		t.Fatalf("expected Done, got status %d", status)
	}
	for i := 0; i < 3; i++ {
		if _, status, err := f.Next(); status != Done || err != nil {
			t.Fatalf("Done not terminal: status %d, err %v", status, err)
		}
	}
}

func TestRecordsFramerErrorIsSticky(t *testing.T) {
	f := NewRecords()
	f.Ingest([]byte("not a record"))
	_, status, err := f.Next()
	if status != Done || !errors.Is(err, ErrMissingRecordSeparator) {
		t.Fatalf("got status %d, err %v", status, err)
	}
	_, status, err = f.Next()
	if status != Done || !errors.Is(err, ErrMissingRecordSeparator) {
		t.Fatalf("error not sticky: status %d, err %v", status, err)
	}
}

func TestFramerIngestAfterClosePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	f := NewLines()
	f.Close()
	f.Ingest([]byte("late"))
}

func TestFramerZeroLengthChunks(t *testing.T) {
	f := NewLines()
	f.Ingest(nil)
	f.Ingest([]byte("he"))
	f.Ingest([]byte{})
	f.Ingest([]byte("llo\n"))
	payload, status, err := f.Next()
	if err != nil || status != Frame || string(payload) != "hello" {
		t.Fatalf("got %q, status %d, err %v", payload, status, err)
	}
}
