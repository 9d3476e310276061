package eventstream

import (
	"io"

	"github.com/arnodel/eventstream/encoding/jsonseq"
	"github.com/arnodel/eventstream/encoding/lines"
	"github.com/arnodel/eventstream/encoding/sse"
)

// A JSONLinesDecoder reads a JSON Lines stream as values of type T.  Like
// all decoders in this package it is single pass: after Next has returned
// false, or after any error, it stays finished.
type JSONLinesDecoder[T any] struct {
	dec   *lines.Decoder
	codec Codec
	val   T
	err   error
	done  bool
}

// NewJSONLinesDecoder returns a decoder reading from r with the given
// codec.
func NewJSONLinesDecoder[T any](r io.Reader, codec Codec) *JSONLinesDecoder[T] {
	return &JSONLinesDecoder[T]{dec: lines.NewDecoder(r), codec: codec}
}

// Next advances to the next value, returning false at the end of the
// stream or on error.
func (d *JSONLinesDecoder[T]) Next() bool {
	if d.done {
		return false
	}
	if !d.dec.Next() {
		d.done = true
		d.err = d.dec.Err()
		return false
	}
	var v T
	if err := d.codec.Unmarshal(d.dec.Bytes(), &v); err != nil {
		d.done = true
		d.err = err
		return false
	}
	d.val = v
	return true
}

// Value returns the value decoded by the last successful call to Next.
func (d *JSONLinesDecoder[T]) Value() T {
	return d.val
}

// Err returns the error that ended the stream, or nil if it ended cleanly.
func (d *JSONLinesDecoder[T]) Err() error {
	return d.err
}

// A JSONLinesEncoder writes values of type T as a JSON Lines stream.
type JSONLinesEncoder[T any] struct {
	enc   *lines.Encoder
	codec Codec
}

// NewJSONLinesEncoder returns an encoder writing to w with the given
// codec.
func NewJSONLinesEncoder[T any](w io.Writer, codec Codec) *JSONLinesEncoder[T] {
	return &JSONLinesEncoder[T]{enc: lines.NewEncoder(w), codec: codec}
}

// Encode writes one value as a line of JSON.
func (e *JSONLinesEncoder[T]) Encode(v T) error {
	b, err := e.codec.Marshal(v)
	if err != nil {
		return err
	}
	return e.enc.Encode(b)
}

// A SeqDecoder reads an RFC 7464 JSON text sequence as values of type T.
type SeqDecoder[T any] struct {
	dec   *jsonseq.Decoder
	codec Codec
	val   T
	err   error
	done  bool
}

// NewSeqDecoder returns a decoder reading from r with the given codec.
func NewSeqDecoder[T any](r io.Reader, codec Codec) *SeqDecoder[T] {
	return &SeqDecoder[T]{dec: jsonseq.NewDecoder(r), codec: codec}
}

// Next advances to the next value, returning false at the end of the
// stream or on error.  A missing leading record separator surfaces here as
// frame.ErrMissingRecordSeparator before any value is produced.
func (d *SeqDecoder[T]) Next() bool {
	if d.done {
		return false
	}
	if !d.dec.Next() {
		d.done = true
		d.err = d.dec.Err()
		return false
	}
	var v T
	if err := d.codec.Unmarshal(d.dec.Bytes(), &v); err != nil {
		d.done = true
		d.err = err
		return false
	}
	d.val = v
	return true
}

// Value returns the value decoded by the last successful call to Next.
func (d *SeqDecoder[T]) Value() T {
	return d.val
}

// Err returns the error that ended the stream, or nil if it ended cleanly.
func (d *SeqDecoder[T]) Err() error {
	return d.err
}

// A SeqEncoder writes values of type T as an RFC 7464 JSON text sequence.
type SeqEncoder[T any] struct {
	enc   *jsonseq.Encoder
	codec Codec
}

// NewSeqEncoder returns an encoder writing to w with the given codec.
func NewSeqEncoder[T any](w io.Writer, codec Codec) *SeqEncoder[T] {
	return &SeqEncoder[T]{enc: jsonseq.NewEncoder(w), codec: codec}
}

// Encode writes one value as a record.
func (e *SeqEncoder[T]) Encode(v T) error {
	b, err := e.codec.Marshal(v)
	if err != nil {
		return err
	}
	return e.enc.Encode(b)
}

// An EventDecoder reads a Server-Sent Event stream whose data payloads are
// JSON, decoding each payload as a value of type T.
type EventDecoder[T any] struct {
	// Sentinel, when set before the first call to Next, ends the stream
	// on a terminal data payload (such as "[DONE]") instead of trying to
	// decode it.
	Sentinel func(data string) bool

	dec   *sse.Decoder
	codec Codec
	val   T
	err   error
	done  bool
}

// NewEventDecoder returns a decoder reading from r with the given codec.
func NewEventDecoder[T any](r io.Reader, codec Codec) *EventDecoder[T] {
	return &EventDecoder[T]{dec: sse.NewDecoder(r), codec: codec}
}

// Next advances to the next event with a data payload, returning false at
// the end of the stream or on error.  Events carrying no data (a bare
// retry hint, say) are skipped at this layer; use encoding/sse directly to
// observe them.
func (d *EventDecoder[T]) Next() bool {
	if d.done {
		return false
	}
	d.dec.Sentinel = d.Sentinel
	for d.dec.Next() {
		evt := d.dec.Event()
		if !evt.Has(sse.FieldData) {
			continue
		}
		var v T
		if err := d.codec.Unmarshal([]byte(evt.Data), &v); err != nil {
			d.done = true
			d.err = err
			return false
		}
		d.val = v
		return true
	}
	d.done = true
	d.err = d.dec.Err()
	return false
}

// Value returns the value decoded by the last successful call to Next.
func (d *EventDecoder[T]) Value() T {
	return d.val
}

// Event returns the raw event behind the last value, giving access to its
// id, type and retry fields.
func (d *EventDecoder[T]) Event() sse.Event {
	return d.dec.Event()
}

// Err returns the error that ended the stream, or nil if it ended cleanly.
func (d *EventDecoder[T]) Err() error {
	return d.err
}

// An EventEncoder writes values of type T as the JSON data payloads of a
// Server-Sent Event stream.
type EventEncoder[T any] struct {
	enc   *sse.Encoder
	codec Codec
}

// NewEventEncoder returns an encoder writing to w with the given codec.
func NewEventEncoder[T any](w io.Writer, codec Codec) *EventEncoder[T] {
	return &EventEncoder[T]{enc: sse.NewEncoder(w), codec: codec}
}

// Encode writes one value as an event with only a data payload.
func (e *EventEncoder[T]) Encode(v T) error {
	return e.EncodeEvent(sse.Event{}, v)
}

// EncodeEvent writes one value using evt for the id, event and retry
// fields; the data payload is replaced with the encoding of v.
func (e *EventEncoder[T]) EncodeEvent(evt sse.Event, v T) error {
	b, err := e.codec.Marshal(v)
	if err != nil {
		return err
	}
	evt.Data = string(b)
	evt.Set |= sse.FieldData
	return e.enc.Encode(evt)
}
