package httpclient

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/anna-hope/octo/headers"
)

// DecodeError wraps a failure decoding a gzip-encoded body. Only gzip is
// supported: the client only ever advertises Accept-Encoding: gzip, so
// deflate/brotli never appear on the wire here.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding response body: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// decodeBody applies content-encoding (gzip only) and then interprets the
// result as UTF-8, replacing invalid sequences rather than failing.
func decodeBody(raw []byte, hdrs *headers.Map) (body string, hasBody bool, err error) {
	if len(raw) == 0 {
		return "", false, nil
	}

	if enc, ok := hdrs.Get("content-encoding"); ok && containsFold(enc, "gzip") {
		raw, err = gunzip(raw)
		if err != nil {
			return "", false, err
		}
	}

	if len(raw) == 0 {
		return "", false, nil
	}
	return toValidUTF8(raw), true, nil
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return out, nil
}

func toValidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}
