package eventstream

import (
	"bytes"
	"encoding/json"
)

// A Codec holds the JSON encoding policy for a stream.  It is passed
// explicitly to each typed encoder and decoder; there is no package-level
// default to mutate.  The zero value is a useful codec that does not escape
// HTML characters, which is what machine-read event payloads want.
type Codec struct {
	// EscapeHTML makes the encoder escape '<', '>' and '&' inside JSON
	// strings, for payloads that end up embedded in HTML.
	EscapeHTML bool
}

// Marshal encodes v as a single line of JSON with no trailing newline.
func (c Codec) Marshal(v any) ([]byte, error) {
	if c.EscapeHTML {
		return json.Marshal(v)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder terminates the value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Unmarshal decodes JSON bytes into v.  Errors from the underlying JSON
// parser are returned unchanged.
func (c Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
