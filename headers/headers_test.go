package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGetIsCaseInsensitive(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("Content-Length", "5"))

	v, ok := h.Get("content-length")
	require.True(t, ok)
	assert.Equal(t, []string{"5"}, v)
}

func TestAddMultiValuePreservesOrder(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("X-Thing", "a"))
	require.NoError(t, h.Add("x-thing", "b"))

	v, ok := h.Get("X-THING")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestAddEmptyValueIsNoop(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("X-Empty", ""))

	_, ok := h.Get("X-Empty")
	assert.False(t, ok)
}

func TestAddRejectsInvalidValue(t *testing.T) {
	h := New()
	err := h.Add("X-Bad", "line1\r\nline2")
	require.Error(t, err)
	var invalid *InvalidValueError
	assert.ErrorAs(t, err, &invalid)
}

func TestGetSingleValueAbsent(t *testing.T) {
	h := New()
	_, ok, err := h.GetSingleValue("X-Missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetSingleValueExactlyOne(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("Content-Type", "text/html"))

	v, ok, err := h.GetSingleValue("content-type")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "text/html", v)
}

func TestGetSingleValueMultipleIsError(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("X-Multi", "a"))
	require.NoError(t, h.Add("X-Multi", "b"))

	_, ok, err := h.GetSingleValue("x-multi")
	assert.True(t, ok)
	require.Error(t, err)
	var notOne *NotOneValueError
	require.ErrorAs(t, err, &notOne)
	assert.Equal(t, 2, notOne.N)
}

func TestHasGivenValue(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("Cache-Control", "no-cache"))

	has, present := h.HasGivenValue("cache-control", "no-cache")
	assert.True(t, has)
	assert.True(t, present)

	has, present = h.HasGivenValue("cache-control", "max-age=5")
	assert.False(t, has)
	assert.True(t, present)

	has, present = h.HasGivenValue("x-absent", "anything")
	assert.False(t, has)
	assert.False(t, present)
}

func TestFrom(t *testing.T) {
	h, err := From([2]string{"Accept", "text/html"}, [2]string{"Accept", "*/*"})
	require.NoError(t, err)
	v, ok := h.Get("accept")
	require.True(t, ok)
	assert.Equal(t, []string{"text/html", "*/*"}, v)
}

func TestStringIsCRLFJoined(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("Accept", "text/html"))
	require.NoError(t, h.Add("Accept", "*/*"))

	assert.Equal(t, "accept: text/html, */*\r\n", h.String())
}

func TestNamesPreservesFirstInsertionOrder(t *testing.T) {
	h := New()
	require.NoError(t, h.Add("B-Header", "1"))
	require.NoError(t, h.Add("A-Header", "2"))
	require.NoError(t, h.Add("b-header", "3"))

	assert.Equal(t, []string{"b-header", "a-header"}, h.Names())
}
