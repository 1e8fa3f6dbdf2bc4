// Package cache implements the engine's freshness-aware, in-memory response
// cache. Entries are held strongly by the cache and handed out to callers as
// weak handles, so a caller cannot keep a body alive past the entry's own
// lifetime.
package cache

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"sync"
	"time"
	"weak"

	"github.com/anna-hope/octo/httpclient"
	"github.com/anna-hope/octo/weburl"
)

// MissingDateError means the response carried no (or an unparseable) Date
// header, so freshness can't be computed.
type MissingDateError struct{ Err error }

func (e *MissingDateError) Error() string { return fmt.Sprintf("missing or invalid date: %v", e.Err) }
func (e *MissingDateError) Unwrap() error { return e.Err }

// MissingCacheControlError means Cache-Control was absent, or present but
// not exactly "max-age=<seconds>".
type MissingCacheControlError struct{ Reason string }

func (e *MissingCacheControlError) Error() string {
	return fmt.Sprintf("missing or unsupported cache-control: %s", e.Reason)
}

// entry is the strongly-owned cache record; the map retains it, callers only
// ever see a weak.Pointer into it.
type entry struct {
	response *httpclient.Response
	date     time.Time
	maxAge   time.Duration
}

// Handle is a weak, upgradable reference to a cached response. A failed
// upgrade (after eviction and collection) is reported as ok=false.
type Handle struct {
	ptr weak.Pointer[httpclient.Response]
}

// Value attempts to upgrade the handle to a live response.
func (h Handle) Value() (*httpclient.Response, bool) {
	v := h.ptr.Value()
	return v, v != nil
}

// Cache maps a Web URL to its most recently inserted, still-fresh response.
type Cache struct {
	mu      sync.Mutex
	entries map[weburl.WebURL]*entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[weburl.WebURL]*entry)}
}

// Insert stores response under url if it carries a well-formed Date and a
// Cache-Control of exactly "max-age=<seconds>". Any other shape is rejected;
// the caller is expected to log and discard on failure, not propagate it as
// a request failure.
func (c *Cache) Insert(url weburl.WebURL, response *httpclient.Response) error {
	dateRaw, ok, err := response.Headers.GetSingleValue("date")
	if err != nil || !ok {
		return &MissingDateError{Err: err}
	}
	date, err := time.Parse(time.RFC1123, dateRaw)
	if err != nil {
		date, err = time.Parse(time.RFC1123Z, dateRaw)
	}
	if err != nil {
		return &MissingDateError{Err: err}
	}

	cc, ok, err := response.Headers.GetSingleValue("cache-control")
	if err != nil || !ok {
		return &MissingCacheControlError{Reason: "absent or ambiguous"}
	}
	maxAge, err := parseMaxAge(cc)
	if err != nil {
		return &MissingCacheControlError{Reason: err.Error()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = &entry{response: response, date: date, maxAge: maxAge}
	return nil
}

// parseMaxAge recognizes only the exact directive "max-age=<seconds>"; any
// other Cache-Control shape is unsupported.
func parseMaxAge(directive string) (time.Duration, error) {
	name, value, ok := strings.Cut(directive, "=")
	if !ok || strings.TrimSpace(name) != "max-age" {
		return 0, fmt.Errorf("unsupported directive %q", directive)
	}
	seconds, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid max-age %q: %w", value, err)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Get returns a weak handle to the entry for url if it is still fresh. A
// stale entry is evicted on this lookup (lazy eviction) and reported as a
// miss.
func (c *Cache) Get(url weburl.WebURL, now time.Time) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return Handle{}, false
	}
	if now.Sub(e.date) >= e.maxAge {
		delete(c.entries, url)
		return Handle{}, false
	}
	return Handle{ptr: weak.Make(e.response)}, true
}

// All iterates every live entry for introspection and tests, yielding the
// URL's wire form alongside a one-line summary of its headers.
func (c *Cache) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		c.mu.Lock()
		snapshot := make(map[string]string, len(c.entries))
		for url, e := range c.entries {
			snapshot[url.String()] = e.response.Headers.String()
		}
		c.mu.Unlock()

		for urlStr, summary := range snapshot {
			if !yield(urlStr, summary) {
				return
			}
		}
	}
}
