// Package headers implements the multi-valued, case-insensitive header map
// used for both HTTP requests and responses.
package headers

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// NotOneValueError is returned by GetSingleValue when a header has zero or
// more than one value, so callers can distinguish "absent" from "ambiguous".
type NotOneValueError struct{ N int }

func (e *NotOneValueError) Error() string {
	return fmt.Sprintf("expected exactly 1 value, got %d", e.N)
}

// InvalidValueError is returned by Add when a header value contains bytes
// that are not legal in an HTTP field value (e.g. an embedded CR or LF).
// The hand-rolled client writes headers directly to the wire with no second
// validation layer, so this check happens at insertion time.
type InvalidValueError struct {
	Name  string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for header %q: %q", e.Name, e.Value)
}

// Map is an ordered, multi-valued, case-insensitive header collection. The
// zero value is not usable; construct one with New.
type Map struct {
	values map[string][]string
	// order preserves first-seen insertion order of header names, so
	// String() produces deterministic output.
	order []string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string][]string)}
}

// From builds a Map from name/values pairs in one call, the bulk form of Add.
func From(pairs ...[2]string) (*Map, error) {
	m := New()
	for _, p := range pairs {
		if err := m.Add(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func lowerKey(name string) string { return strings.ToLower(name) }

// Add lowercases name and appends value to its value list. Empty values are
// dropped silently (matching the original implementation's filtering), and a
// value containing characters illegal in an HTTP field value is rejected.
func (m *Map) Add(name, value string) error {
	if value == "" {
		return nil
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return &InvalidValueError{Name: name, Value: value}
	}
	key := lowerKey(name)
	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = append(m.values[key], value)
	return nil
}

// AddMany appends every value in values under name, in order.
func (m *Map) AddMany(name string, values []string) error {
	for _, v := range values {
		if err := m.Add(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the values associated with name (case-insensitive) and whether
// any were found.
func (m *Map) Get(name string) ([]string, bool) {
	v, ok := m.values[lowerKey(name)]
	return v, ok
}

// First returns the first value associated with name, or "" if absent.
func (m *Map) First(name string) string {
	if v, ok := m.Get(name); ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// GetSingleValue returns the sole value for name. It reports ok=false if the
// header is entirely absent, and a *NotOneValueError if the header has zero
// or more than one value (the zero case is a defensive invariant; Add never
// stores an empty value list once a key exists).
func (m *Map) GetSingleValue(name string) (value string, ok bool, err error) {
	v, found := m.Get(name)
	if !found {
		return "", false, nil
	}
	if len(v) != 1 {
		return "", true, &NotOneValueError{N: len(v)}
	}
	return v[0], true, nil
}

// HasGivenValue reports whether name is present in m (present) and, if so,
// whether value appears among its values (has).
func (m *Map) HasGivenValue(name, value string) (has bool, present bool) {
	v, ok := m.Get(name)
	if !ok {
		return false, false
	}
	for _, existing := range v {
		if existing == value {
			return true, true
		}
	}
	return false, true
}

// Names returns the header names present, in first-insertion order.
func (m *Map) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// String serializes the headers as "name: v1, v2\r\n" lines, CRLF-terminated,
// in insertion order.
func (m *Map) String() string {
	var b strings.Builder
	for _, key := range m.order {
		fmt.Fprintf(&b, "%s: %s\r\n", key, strings.Join(m.values[key], ", "))
	}
	return b.String()
}

