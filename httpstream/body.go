package httpstream

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// NewBodyReader returns the response body with its Content-Encoding
// undone, so a stream decoder can be attached directly.  Brotli and gzip
// are supported; an identity body is returned as-is.  Closing the returned
// reader closes the underlying body.
func NewBodyReader(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return resp.Body, nil
	case "br":
		return &decodedBody{reader: brotli.NewReader(resp.Body), body: resp.Body}, nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		return &decodedBody{reader: zr, closer: zr, body: resp.Body}, nil
	default:
		return nil, fmt.Errorf("httpstream: unsupported content encoding %q", encoding)
	}
}

type decodedBody struct {
	reader io.Reader
	closer io.Closer // decompressor, when it needs closing
	body   io.Closer
}

func (b *decodedBody) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *decodedBody) Close() error {
	if b.closer != nil {
		if err := b.closer.Close(); err != nil {
			b.body.Close()
			return err
		}
	}
	return b.body.Close()
}
