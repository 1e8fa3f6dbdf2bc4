// Package httpclient implements a minimal HTTP/1.1 client: request framing,
// transport dialing, and response parsing with chunked transfer and gzip
// content decoding.
package httpclient

import (
	"bufio"
	"fmt"

	"github.com/anna-hope/octo/headers"
	"github.com/anna-hope/octo/transport"
	"github.com/anna-hope/octo/weburl"
)

// InvalidSchemeError means Make was asked to fetch a non-http(s) URL.
type InvalidSchemeError struct{ Scheme weburl.Scheme }

func (e *InvalidSchemeError) Error() string {
	return fmt.Sprintf("invalid scheme for HTTP request: %s", e.Scheme)
}

// Request holds a reusable transport slot plus the headers every request it
// issues will carry. Keep-alive reuse is scoped to this value: a new
// Request opens a new connection.
type Request struct {
	Method    string
	KeepAlive bool
	Headers   *headers.Map

	stream transport.Stream
	reader *bufio.Reader
}

// NewRequest seeds the standard headers (Host, Connection, optionally
// Accept-Encoding) for method requests to host.
func NewRequest(method, host string, keepAlive bool, gzip bool) (*Request, error) {
	h := headers.New()
	if err := h.Add("Host", host); err != nil {
		return nil, err
	}
	connection := "close"
	if keepAlive {
		connection = "keep-alive"
	}
	if err := h.Add("Connection", connection); err != nil {
		return nil, err
	}
	if gzip {
		if err := h.Add("Accept-Encoding", "gzip"); err != nil {
			return nil, err
		}
	}
	return &Request{Method: method, KeepAlive: keepAlive, Headers: h}, nil
}

// WithExtraHeaders appends extra key/value pairs without overwriting
// anything NewRequest already seeded.
func (r *Request) WithExtraHeaders(pairs ...[2]string) error {
	for _, p := range pairs {
		if err := r.Headers.Add(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// Make issues the request against url and returns the parsed response. body
// is reserved for future write support; every method this client issues
// today carries none.
func (r *Request) Make(url weburl.WebURL, body string) (*Response, error) {
	if url.Scheme != weburl.SchemeHTTP && url.Scheme != weburl.SchemeHTTPS {
		return nil, &InvalidSchemeError{Scheme: url.Scheme}
	}

	if r.stream == nil {
		stream, err := dial(url)
		if err != nil {
			return nil, err
		}
		r.stream = stream
		r.reader = bufio.NewReader(stream)
	}

	wire := fmt.Sprintf("%s %s HTTP/1.1\r\n%s\r\n", r.Method, url.Path, r.Headers.String())
	if _, err := r.stream.Write([]byte(wire)); err != nil {
		r.poison()
		return nil, &StreamError{Err: err}
	}

	// Reuse the same bufio.Reader across calls on a keep-alive connection:
	// a fresh reader would drop any bytes already buffered ahead from the
	// previous response.
	resp, err := readResponse(r.reader)
	if err != nil {
		r.poison()
		return nil, err
	}

	if !r.KeepAlive {
		r.stream.Close()
		r.stream = nil
		r.reader = nil
	}
	return resp, nil
}

// poison drops the transport slot after any I/O or parse failure; the spec
// treats a failed request object as unfit for reuse.
func (r *Request) poison() {
	if r.stream != nil {
		r.stream.Close()
		r.stream = nil
		r.reader = nil
	}
}

func dial(url weburl.WebURL) (transport.Stream, error) {
	if url.Scheme == weburl.SchemeHTTPS {
		return transport.DialSecure(url.Host, url.Port)
	}
	return transport.DialInsecure(url.Host, url.Port)
}

// Get issues a single non-keep-alive GET with a fixed User-Agent, the
// convenience form used for one-shot fetches (view-source) that don't need
// the caller's configured User-Agent or keep-alive behavior.
func Get(url weburl.WebURL, gzip bool) (*Response, error) {
	req, err := NewRequest("GET", url.Host, false, gzip)
	if err != nil {
		return nil, err
	}
	if err := req.WithExtraHeaders([2]string{"User-Agent", "Octo"}); err != nil {
		return nil, err
	}
	return req.Make(url, "")
}
