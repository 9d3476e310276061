package eventstream

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/arnodel/eventstream/encoding/sse"
	"github.com/arnodel/eventstream/frame"
)

type update struct {
	Seq  int    `json:"seq"`
	Text string `json:"text"`
}

var testUpdates = []update{
	{Seq: 1, Text: "hello"},
	{Seq: 2, Text: "multi\nline"},
	{Seq: 3, Text: "<&>"},
}

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewJSONLinesEncoder[update](&buf, Codec{})
	for _, u := range testUpdates {
		if err := enc.Encode(u); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}

	dec := NewJSONLinesDecoder[update](iotest.OneByteReader(&buf), Codec{})
	var got []update
	for dec.Next() {
		got = append(got, dec.Value())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	assertUpdatesEqual(t, got, testUpdates)
}

func TestSeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewSeqEncoder[update](&buf, Codec{})
	for _, u := range testUpdates {
		if err := enc.Encode(u); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}

	dec := NewSeqDecoder[update](iotest.OneByteReader(&buf), Codec{})
	var got []update
	for dec.Next() {
		got = append(got, dec.Value())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	assertUpdatesEqual(t, got, testUpdates)
}

func TestSeqDecoderMissingSeparator(t *testing.T) {
	dec := NewSeqDecoder[update](strings.NewReader(`{"seq":1}`), Codec{})
	if dec.Next() {
		t.Fatal("expected no values")
	}
	if !errors.Is(dec.Err(), frame.ErrMissingRecordSeparator) {
		t.Fatalf("expected ErrMissingRecordSeparator, got %v", dec.Err())
	}
}

func TestEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEventEncoder[update](&buf, Codec{})
	for i, u := range testUpdates {
		evt := sse.Event{}
		if i == 0 {
			evt = sse.Event{Type: "update", Set: sse.FieldType}
		}
		if err := enc.EncodeEvent(evt, u); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}

	dec := NewEventDecoder[update](iotest.OneByteReader(&buf), Codec{})
	var got []update
	for dec.Next() {
		got = append(got, dec.Value())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	assertUpdatesEqual(t, got, testUpdates)
}

func TestEventDecoderSentinel(t *testing.T) {
	input := "data: {\"seq\":1,\"text\":\"a\"}\n\ndata: [DONE]\n\n"
	dec := NewEventDecoder[update](strings.NewReader(input), Codec{})
	dec.Sentinel = func(data string) bool { return data == "[DONE]" }

	var got []update
	for dec.Next() {
		got = append(got, dec.Value())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	assertUpdatesEqual(t, got, []update{{Seq: 1, Text: "a"}})
}

func TestEventDecoderSkipsDatalessEvents(t *testing.T) {
	input := "retry: 5000\n\ndata: {\"seq\":1,\"text\":\"a\"}\n\n"
	dec := NewEventDecoder[update](strings.NewReader(input), Codec{})

	var got []update
	for dec.Next() {
		got = append(got, dec.Value())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	assertUpdatesEqual(t, got, []update{{Seq: 1, Text: "a"}})
}

func TestJSONLinesDecodeErrorEndsStream(t *testing.T) {
	dec := NewJSONLinesDecoder[update](strings.NewReader("{\"seq\":1}\nnot json\n{\"seq\":2}\n"), Codec{})
	if !dec.Next() {
		t.Fatal("expected a first value")
	}
	if dec.Next() {
		t.Fatal("expected the bad payload to end the stream")
	}
	if dec.Err() == nil {
		t.Fatal("expected a decode error")
	}
	if dec.Next() {
		t.Fatal("stream resumed after an error")
	}
}

func assertUpdatesEqual(t *testing.T, got, want []update) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("value count mismatch: got %+v, want %+v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("value %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
