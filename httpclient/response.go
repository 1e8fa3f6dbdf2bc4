package httpclient

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/anna-hope/octo/headers"
)

// StatusLine is the parsed first line of an HTTP response.
type StatusLine struct {
	Version     string
	StatusCode  uint16
	Explanation string
}

// Response is an immutable, fully-read HTTP response: a status line, a
// header map, and an optionally-decoded body.
type Response struct {
	StatusLine StatusLine
	Headers    *headers.Map
	Body       string
	HasBody    bool
}

// MissingStatusLineError means the connection closed before a status line
// could be read.
type MissingStatusLineError struct{ Err error }

func (e *MissingStatusLineError) Error() string {
	return fmt.Sprintf("missing status line: %v", e.Err)
}
func (e *MissingStatusLineError) Unwrap() error { return e.Err }

// InvalidStatusLineError means the status line didn't split into three
// space-separated fields.
type InvalidStatusLineError struct{ Line string }

func (e *InvalidStatusLineError) Error() string {
	return fmt.Sprintf("invalid status line: %q", e.Line)
}

// InvalidStatusCodeError means the status code field wasn't a valid uint16.
type InvalidStatusCodeError struct {
	Raw string
	Err error
}

func (e *InvalidStatusCodeError) Error() string {
	return fmt.Sprintf("invalid status code %q: %v", e.Raw, e.Err)
}
func (e *InvalidStatusCodeError) Unwrap() error { return e.Err }

// ParseHeadersError wraps a failure reading the MIME header block.
type ParseHeadersError struct{ Err error }

func (e *ParseHeadersError) Error() string { return fmt.Sprintf("parsing headers: %v", e.Err) }
func (e *ParseHeadersError) Unwrap() error { return e.Err }

// InvalidHeadersError means a header line was rejected by the header map
// (e.g. an illegal value).
type InvalidHeadersError struct{ Err error }

func (e *InvalidHeadersError) Error() string { return fmt.Sprintf("invalid headers: %v", e.Err) }
func (e *InvalidHeadersError) Unwrap() error { return e.Err }

// StreamError wraps an I/O failure on the connection: writing the request or
// reading the response body.
type StreamError struct{ Err error }

func (e *StreamError) Error() string { return fmt.Sprintf("stream error: %v", e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

// readResponse parses a full HTTP/1.1 response off r: status line, headers,
// then the body, decoded per the transfer/content encoding headers.
func readResponse(r *bufio.Reader) (*Response, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, &MissingStatusLineError{Err: err}
	}
	statusLine, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}

	tp := textproto.NewReader(r)
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, &ParseHeadersError{Err: err}
	}

	hdrs := headers.New()
	for name, values := range mimeHeader {
		if err := hdrs.AddMany(name, values); err != nil {
			return nil, &InvalidHeadersError{Err: err}
		}
	}

	raw, err := readBody(r, hdrs)
	if err != nil {
		return nil, err
	}

	decoded, hasBody, err := decodeBody(raw, hdrs)
	if err != nil {
		return nil, err
	}

	return &Response{StatusLine: statusLine, Headers: hdrs, Body: decoded, HasBody: hasBody}, nil
}

func parseStatusLine(line string) (StatusLine, error) {
	line = strings.TrimRight(line, "\r\n")
	version, rest, ok := strings.Cut(line, " ")
	if !ok {
		return StatusLine{}, &InvalidStatusLineError{Line: line}
	}
	codeStr, explanation, ok := strings.Cut(rest, " ")
	if !ok {
		return StatusLine{}, &InvalidStatusLineError{Line: line}
	}
	code, err := strconv.ParseUint(codeStr, 10, 16)
	if err != nil {
		return StatusLine{}, &InvalidStatusCodeError{Raw: codeStr, Err: err}
	}
	return StatusLine{Version: version, StatusCode: uint16(code), Explanation: explanation}, nil
}

func readBody(r *bufio.Reader, hdrs *headers.Map) ([]byte, error) {
	if te, ok := hdrs.Get("transfer-encoding"); ok && containsFold(te, "chunked") {
		return readChunkedBody(r)
	}

	length := 0
	if cl, ok, err := hdrs.GetSingleValue("content-length"); err == nil && ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err == nil && n > 0 {
			length = n
		}
	}
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &StreamError{Err: err}
	}
	return buf, nil
}

func readChunkedBody(r *bufio.Reader) ([]byte, error) {
	var out []byte
	for {
		sizeLine, err := r.ReadString('\n')
		if err != nil {
			return nil, &StreamError{Err: err}
		}
		sizeLine = strings.TrimRight(sizeLine, "\r\n")
		if idx := strings.IndexByte(sizeLine, ';'); idx >= 0 {
			sizeLine = sizeLine[:idx]
		}
		size, err := strconv.ParseUint(sizeLine, 16, 64)
		if err != nil {
			return nil, &StreamError{Err: fmt.Errorf("invalid chunk size %q: %w", sizeLine, err)}
		}
		if size == 0 {
			// consume the trailing CRLF after the terminal 0-length chunk.
			r.ReadString('\n')
			break
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, &StreamError{Err: err}
		}
		out = append(out, chunk...)
		if _, err := r.ReadString('\n'); err != nil {
			return nil, &StreamError{Err: err}
		}
	}
	return out, nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), target) {
			return true
		}
	}
	return false
}
