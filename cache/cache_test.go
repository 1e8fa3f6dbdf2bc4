package cache

import (
	"testing"
	"time"

	"github.com/anna-hope/octo/headers"
	"github.com/anna-hope/octo/httpclient"
	"github.com/anna-hope/octo/weburl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(t *testing.T, date string, cacheControl string) *httpclient.Response {
	t.Helper()
	h := headers.New()
	if date != "" {
		require.NoError(t, h.Add("Date", date))
	}
	if cacheControl != "" {
		require.NoError(t, h.Add("Cache-Control", cacheControl))
	}
	return &httpclient.Response{
		StatusLine: httpclient.StatusLine{StatusCode: 200},
		Headers:    h,
		Body:       "hello",
		HasBody:    true,
	}
}

func testURL() weburl.WebURL {
	return weburl.WebURL{Scheme: weburl.SchemeHTTP, Host: "example.org", Path: "/", Port: 80}
}

func TestInsertAndGetFresh(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	resp := newResponse(t, now.Format(time.RFC1123), "max-age=60")

	require.NoError(t, c.Insert(testURL(), resp))

	handle, ok := c.Get(testURL(), now.Add(30*time.Second))
	require.True(t, ok)
	value, ok := handle.Value()
	require.True(t, ok)
	assert.Equal(t, "hello", value.Body)
}

func TestGetStaleEntryIsEvicted(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	resp := newResponse(t, now.Format(time.RFC1123), "max-age=10")

	require.NoError(t, c.Insert(testURL(), resp))

	_, ok := c.Get(testURL(), now.Add(time.Minute))
	assert.False(t, ok)

	_, ok = c.Get(testURL(), now.Add(time.Minute))
	assert.False(t, ok)
}

func TestInsertMissingDateFails(t *testing.T) {
	c := New()
	resp := newResponse(t, "", "max-age=60")
	err := c.Insert(testURL(), resp)
	require.Error(t, err)
	var missingDate *MissingDateError
	assert.ErrorAs(t, err, &missingDate)
}

func TestInsertMissingCacheControlFails(t *testing.T) {
	c := New()
	resp := newResponse(t, time.Now().Format(time.RFC1123), "")
	err := c.Insert(testURL(), resp)
	require.Error(t, err)
	var missingCC *MissingCacheControlError
	assert.ErrorAs(t, err, &missingCC)
}

func TestInsertUnsupportedCacheControlDirectiveFails(t *testing.T) {
	c := New()
	resp := newResponse(t, time.Now().Format(time.RFC1123), "no-cache")
	err := c.Insert(testURL(), resp)
	require.Error(t, err)
}

func TestGetMissingURLIsMiss(t *testing.T) {
	c := New()
	_, ok := c.Get(testURL(), time.Now())
	assert.False(t, ok)
}

func TestAllIteratesInsertedEntries(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	resp := newResponse(t, now.Format(time.RFC1123), "max-age=60")
	require.NoError(t, c.Insert(testURL(), resp))

	seen := map[string]string{}
	for url, summary := range c.All() {
		seen[url] = summary
	}
	assert.Contains(t, seen, testURL().String())
}
