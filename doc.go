package eventstream

// Package eventstream converts between raw byte chunks arriving from a
// transport and sequences of discrete, typed application events, without
// ever buffering a whole body in memory.
//
// The package is organized into several sub-packages:
//
// - frame: incremental delimiter state machines (LF lines, event stream
//   lines, RFC 7464 record separators) and a pull-driven Scanner
// - encoding/lines: newline-delimited payload decoder and encoder
// - encoding/jsonseq: RFC 7464 JSON text sequence decoder and encoder
// - encoding/sse: Server-Sent Events decoder, assembler and encoder
// - httpstream: helpers for attaching the codecs to HTTP bodies
//
// This package itself holds the typed layer used by generated HTTP client
// and server code: generic decoders and encoders that bind one of the wire
// framings to a JSON codec, so a response body can be consumed as a stream
// of application values:
//
//	dec := eventstream.NewEventDecoder[Update](body, eventstream.Codec{})
//	for dec.Next() {
//	    apply(dec.Value())
//	}
//	if err := dec.Err(); err != nil {
//	    // handle error
//	}
//
// Every stage is pull-driven by a single consumer: the only suspension
// point is the byte source's Read call, output order is input order, and
// results do not depend on how the transport chunks the bytes.  Decoders
// are single pass; a fresh pass needs a fresh byte source.
