package lines

import (
	"bytes"
	"strings"
	"testing"
	"testing/iotest"
)

func TestDecoder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"terminated lines", "hello\nworld\n", []string{"hello", "world"}},
		{"trailing remainder", "hello\nworld", []string{"hello", "world"}},
		{"empty lines", "\na\n\n", []string{"", "a", ""}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, oneByte := range []bool{false, true} {
				var dec *Decoder
				if oneByte {
					dec = NewDecoder(iotest.OneByteReader(strings.NewReader(tt.input)))
				} else {
					dec = NewDecoder(strings.NewReader(tt.input))
				}
				var got []string
				for dec.Next() {
					got = append(got, dec.Text())
				}
				if err := dec.Err(); err != nil {
					t.Fatalf("decode error: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("got %q, want %q", got, tt.want)
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("line %d: got %q, want %q", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, payload := range []string{"hello", "", "world"} {
		if err := enc.Encode([]byte(payload)); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	if buf.String() != "hello\n\nworld\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := []string{"one", "two", "", `{"n": 3}`}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, p := range payloads {
		if err := enc.Encode([]byte(p)); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	var got []string
	for dec.Next() {
		got = append(got, dec.Text())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(got) != len(payloads) {
		t.Fatalf("got %q, want %q", got, payloads)
	}
	for i := range got {
		if got[i] != payloads[i] {
			t.Errorf("payload %d: got %q, want %q", i, got[i], payloads[i])
		}
	}
}
