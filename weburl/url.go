// Package weburl parses and classifies the small family of URL schemes Octo
// understands: http, https, file, data, view-source, and about.
package weburl

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme is the recognized set of URL schemes.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
	SchemeFile
	SchemeData
	SchemeViewSource
	SchemeAbout
)

// DefaultPort returns the scheme's default port, if it has one.
func (s Scheme) DefaultPort() (uint16, bool) {
	switch s {
	case SchemeHTTP:
		return 80, true
	case SchemeHTTPS:
		return 443, true
	default:
		return 0, false
	}
}

func (s Scheme) String() string {
	switch s {
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	case SchemeFile:
		return "file"
	case SchemeData:
		return "data"
	case SchemeViewSource:
		return "view-source"
	case SchemeAbout:
		return "about"
	default:
		return "unknown"
	}
}

func schemeFromString(s string) (Scheme, error) {
	switch s {
	case "http":
		return SchemeHTTP, nil
	case "https":
		return SchemeHTTPS, nil
	case "file":
		return SchemeFile, nil
	case "data":
		return SchemeData, nil
	case "view-source":
		return SchemeViewSource, nil
	case "about":
		return SchemeAbout, nil
	default:
		return 0, &UnknownSchemeError{Scheme: s}
	}
}

// SplitError means the URL could not be split the way the grammar for its
// scheme expects (e.g. missing "://" or missing ":").
type SplitError struct{ Input string }

func (e *SplitError) Error() string { return fmt.Sprintf("error splitting the URL: %q", e.Input) }

// UnknownSchemeError means the scheme prefix isn't one Octo recognizes.
type UnknownSchemeError struct{ Scheme string }

func (e *UnknownSchemeError) Error() string { return fmt.Sprintf("unknown URL scheme: %s", e.Scheme) }

// InvalidPortError wraps a failure to parse a port number.
type InvalidPortError struct{ Err error }

func (e *InvalidPortError) Error() string { return fmt.Sprintf("failed to parse the port: %v", e.Err) }
func (e *InvalidPortError) Unwrap() error { return e.Err }

// InvalidURLError means the URL was syntactically splittable but semantically
// wrong for its scheme (e.g. a view-source target that isn't a Web URL).
type InvalidURLError struct{ Reason string }

func (e *InvalidURLError) Error() string { return fmt.Sprintf("invalid url: %s", e.Reason) }

// URL is the sum type of every URL variant Octo can load. Every value
// produced by Parse is exactly one of WebURL, FileURL, DataURL,
// ViewSourceURL or AboutURL.
type URL interface {
	// String renders the URL back to wire form.
	String() string

	isURL()
}

// WebURL is an http or https URL: the only variant used as a cache key and
// the only variant the HTTP client can fetch.
type WebURL struct {
	Scheme Scheme
	Host   string
	Path   string
	Port   uint16
}

func (WebURL) isURL() {}

// WithPath returns a sibling WebURL preserving scheme/host/port, used to
// resolve a redirect Location that begins with "/".
func (u WebURL) WithPath(path string) WebURL {
	return WebURL{Scheme: u.Scheme, Host: u.Host, Path: path, Port: u.Port}
}

func (u WebURL) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme.String())
	b.WriteString("://")
	b.WriteString(u.Host)
	if port, ok := u.Scheme.DefaultPort(); !ok || port != u.Port {
		fmt.Fprintf(&b, ":%d", u.Port)
	}
	b.WriteString(u.Path)
	return b.String()
}

// FileURL is a file:// URL; host is usually empty and is not used to locate
// the file (the path is always treated as local).
type FileURL struct {
	Host string
	Path string
}

func (FileURL) isURL() {}

func (u FileURL) String() string {
	return "file://" + u.Host + u.Path
}

// DataURL is a data: URL. The base64 flag is not supported; payloads are
// always treated as literal text, a known limitation carried from the
// original implementation.
type DataURL struct {
	Mimetype string
	Data     string
}

func (DataURL) isURL() {}

func (u DataURL) String() string {
	return "data:" + u.Mimetype + "," + u.Data
}

// ViewSourceURL wraps a WebURL; the engine fetches the inner URL and renders
// its body as literal text instead of tokenizing tags.
type ViewSourceURL struct {
	Inner WebURL
}

func (ViewSourceURL) isURL() {}

func (u ViewSourceURL) String() string {
	return "view-source:" + u.Inner.String()
}

// AboutValue enumerates the about: targets Octo understands.
type AboutValue int

const (
	AboutBlank AboutValue = iota
)

func (v AboutValue) String() string {
	switch v {
	case AboutBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// AboutURL is an about: URL.
type AboutURL struct {
	Value AboutValue
}

func (AboutURL) isURL() {}

func (u AboutURL) String() string {
	return "about:" + u.Value.String()
}

// AsWebURL returns the WebURL underneath u, unwrapping ViewSourceURL, and
// reports whether u was a variant that has one.
func AsWebURL(u URL) (WebURL, bool) {
	switch v := u.(type) {
	case WebURL:
		return v, true
	case ViewSourceURL:
		return v.Inner, true
	default:
		return WebURL{}, false
	}
}

// Parse parses a URL string into one of the five recognized variants.
//
// The algorithm mirrors the original implementation: split once on the first
// ':', dispatch on the scheme, and for http/https/file strip a leading "//"
// and split once more on '/' to separate authority from path.
func Parse(raw string) (URL, error) {
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, &SplitError{Input: raw}
	}
	s, err := schemeFromString(scheme)
	if err != nil {
		return nil, err
	}

	switch s {
	case SchemeData:
		return parseDataURL(rest)
	case SchemeViewSource:
		return parseViewSourceURL(rest)
	case SchemeAbout:
		return parseAboutURL(rest)
	}

	if !strings.HasPrefix(rest, "//") {
		return nil, &SplitError{Input: rest}
	}
	rest = strings.TrimPrefix(rest, "//")

	if !strings.Contains(rest, "/") {
		rest += "/"
	}
	authority, path, ok := strings.Cut(rest, "/")
	if !ok {
		return nil, &SplitError{Input: rest}
	}
	path = "/" + path

	switch s {
	case SchemeHTTP, SchemeHTTPS:
		host, port, err := splitAuthority(authority, s)
		if err != nil {
			return nil, err
		}
		return WebURL{Scheme: s, Host: host, Path: path, Port: port}, nil
	case SchemeFile:
		return FileURL{Host: authority, Path: path}, nil
	default:
		// Unreachable: every other scheme was handled above.
		return nil, &UnknownSchemeError{Scheme: scheme}
	}
}

func splitAuthority(authority string, s Scheme) (host string, port uint16, err error) {
	if h, p, ok := strings.Cut(authority, ":"); ok {
		parsed, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return "", 0, &InvalidPortError{Err: err}
		}
		return h, uint16(parsed), nil
	}
	defaultPort, _ := s.DefaultPort()
	return authority, defaultPort, nil
}

func parseDataURL(rest string) (URL, error) {
	mimetype, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, &SplitError{Input: rest}
	}
	return DataURL{Mimetype: mimetype, Data: data}, nil
}

func parseViewSourceURL(rest string) (URL, error) {
	inner, err := Parse(rest)
	if err != nil {
		return nil, err
	}
	web, ok := inner.(WebURL)
	if !ok {
		return nil, &InvalidURLError{Reason: fmt.Sprintf("invalid resource URL for view-source: %s", rest)}
	}
	return ViewSourceURL{Inner: web}, nil
}

func parseAboutURL(rest string) (URL, error) {
	switch rest {
	case "blank":
		return AboutURL{Value: AboutBlank}, nil
	default:
		return nil, &InvalidURLError{Reason: fmt.Sprintf("unrecognized about: value %q", rest)}
	}
}
