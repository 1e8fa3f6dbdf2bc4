// Package engine is the façade that routes a URL string to the right
// loader, following redirects and consulting the cache for Web URLs.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anna-hope/octo/cache"
	"github.com/anna-hope/octo/httpclient"
	"github.com/anna-hope/octo/lex"
	"github.com/anna-hope/octo/weburl"
)

// LoadError wraps any lower-level network or response error surfaced from a
// Web load.
type LoadError struct{ Err error }

func (e *LoadError) Error() string { return fmt.Sprintf("load failed: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// RedirectError means the redirect chain failed: either the cap was hit or
// a 3xx arrived with no usable Location.
type RedirectError struct{ Reason string }

func (e *RedirectError) Error() string { return fmt.Sprintf("redirect error: %s", e.Reason) }

// ParseURLError wraps a weburl.Parse failure of a redirect Location. A parse
// failure of the URL string passed to Load is not reported this way; it
// degrades to about:blank.
type ParseURLError struct{ Err error }

func (e *ParseURLError) Error() string { return fmt.Sprintf("parsing url: %v", e.Err) }
func (e *ParseURLError) Unwrap() error { return e.Err }

// NotWebURLError means a redirect Location resolved to something other than
// an http/https URL.
type NotWebURLError struct{ Raw string }

func (e *NotWebURLError) Error() string { return fmt.Sprintf("not a web url: %s", e.Raw) }

// Engine owns the cache and the client configuration, and is the only
// stateful entry point the UI talks to.
type Engine struct {
	config Config
	cache  *cache.Cache
	logger *slog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithConfig overrides DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.config = cfg }
}

// New builds an Engine with its own cache, ready to Load.
func New(opts ...Option) *Engine {
	e := &Engine{
		config: DefaultConfig(),
		cache:  cache.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load parses urlStr and dispatches to the loader for its scheme. A parse
// failure degrades to about:blank rather than propagating, per the
// engine's total-load contract.
func (e *Engine) Load(urlStr string) ([]lex.Token, error) {
	u, err := weburl.Parse(urlStr)
	if err != nil {
		e.logger.Warn("failed to parse url, falling back to about:blank", "url", urlStr, "error", err)
		u = weburl.AboutURL{Value: weburl.AboutBlank}
	}

	switch v := u.(type) {
	case weburl.WebURL:
		return e.loadWeb(v)
	case weburl.FileURL:
		return e.loadFile(v)
	case weburl.DataURL:
		return lex.Lex(v.Data, true, e.config.MaxEntityLen), nil
	case weburl.ViewSourceURL:
		return e.loadViewSource(v)
	case weburl.AboutURL:
		return e.loadAbout(v)
	default:
		return nil, &LoadError{Err: fmt.Errorf("unhandled url variant %T", u)}
	}
}

func (e *Engine) loadAbout(u weburl.AboutURL) ([]lex.Token, error) {
	// Only about:blank is recognized by weburl.Parse; any AboutURL reaching
	// here already carries that value.
	return []lex.Token{{Kind: lex.Text, Value: ""}}, nil
}

func (e *Engine) loadFile(u weburl.FileURL) ([]lex.Token, error) {
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return []lex.Token{{Kind: lex.Text, Value: string(data)}}, nil
}

func (e *Engine) loadViewSource(u weburl.ViewSourceURL) ([]lex.Token, error) {
	resp, err := httpclient.Get(u.Inner, e.config.GzipEnabled)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return lex.Lex(resp.Body, false, e.config.MaxEntityLen), nil
}

func (e *Engine) loadWeb(u weburl.WebURL) ([]lex.Token, error) {
	if handle, ok := e.cache.Get(u, time.Now()); ok {
		if resp, ok := handle.Value(); ok {
			return lex.Lex(resp.Body, true, e.config.MaxEntityLen), nil
		}
	}

	resp, finalURL, err := e.fetchWithRedirects(u)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Insert(finalURL, resp); err != nil {
		e.logger.Debug("skipping cache insert", "url", finalURL.String(), "error", err)
	}

	return lex.Lex(resp.Body, true, e.config.MaxEntityLen), nil
}

// fetch issues one request against url honoring the engine's configured
// User-Agent and keep-alive setting (unlike httpclient.Get's fixed,
// one-shot convenience behavior).
func (e *Engine) fetch(url weburl.WebURL) (*httpclient.Response, error) {
	req, err := httpclient.NewRequest("GET", url.Host, e.config.KeepAliveEnabled, e.config.GzipEnabled)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if err := req.WithExtraHeaders([2]string{"User-Agent", e.config.UserAgent}); err != nil {
		return nil, &LoadError{Err: err}
	}
	return req.Make(url, "")
}

// fetchWithRedirects issues the request, following up to MaxRedirects 3xx
// hops before giving up.
func (e *Engine) fetchWithRedirects(u weburl.WebURL) (*httpclient.Response, weburl.WebURL, error) {
	current := u
	for hop := 0; ; hop++ {
		resp, err := e.fetch(current)
		if err != nil {
			return nil, weburl.WebURL{}, &LoadError{Err: err}
		}

		if resp.StatusLine.StatusCode < 300 || resp.StatusLine.StatusCode >= 400 {
			return resp, current, nil
		}

		if hop >= e.config.MaxRedirects {
			e.logger.Error("redirect cap exhausted", "url", current.String(), "hops", hop)
			return nil, weburl.WebURL{}, &RedirectError{Reason: "Too many redirects."}
		}

		location, ok, err := resp.Headers.GetSingleValue("location")
		if err != nil || !ok {
			return nil, weburl.WebURL{}, &RedirectError{Reason: "Missing Location header."}
		}

		next, err := resolveRedirect(current, location)
		if err != nil {
			return nil, weburl.WebURL{}, err
		}

		e.logger.Info("following redirect", "from", current.String(), "to", next.String(), "hop", hop+1)
		current = next
	}
}

func resolveRedirect(current weburl.WebURL, location string) (weburl.WebURL, error) {
	if len(location) > 0 && location[0] == '/' {
		return current.WithPath(location), nil
	}
	parsed, err := weburl.Parse(location)
	if err != nil {
		return weburl.WebURL{}, &ParseURLError{Err: err}
	}
	web, ok := parsed.(weburl.WebURL)
	if !ok {
		return weburl.WebURL{}, &NotWebURLError{Raw: location}
	}
	return web, nil
}
