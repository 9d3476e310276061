// Package sse implements the Server-Sent Events wire format: an incremental
// decoder that assembles events from an arbitrarily chunked byte stream, and
// an encoder producing the exact mirror framing.
package sse

// FieldSet records which fields of an Event are present.  The wire format
// distinguishes an absent field from one set to its zero value, so the set
// travels with the event to make round trips exact.
type FieldSet uint8

const (
	FieldID FieldSet = 1 << iota
	FieldType
	FieldData
	FieldRetry
)

// An Event is a single Server-Sent Event.  Only the fields whose bit is in
// Set are meaningful; the encoder emits nothing for the others.  Event is a
// comparable value, so two decoded events can be compared with ==.
type Event struct {
	// ID is the value of the last "id" field of the event.
	ID string

	// Type is the event type, from the last "event" field.
	Type string

	// Data is the event payload.  Multi-line payloads are joined with
	// single newlines, one per "data" field beyond the first.
	Data string

	// Retry is the reconnection delay in milliseconds, from a "retry"
	// field with a well-formed integer value.
	Retry int64

	// Set tells which of the above fields are present.
	Set FieldSet
}

// Has reports whether all the given fields are present.
func (e Event) Has(fields FieldSet) bool {
	return e.Set&fields == fields
}
