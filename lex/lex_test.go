package lex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLexPlainText(t *testing.T) {
	tokens := Lex("hello world", true, DefaultMaxEntityLen)
	want := []Token{{Kind: Text, Value: "hello world"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexStripsTags(t *testing.T) {
	tokens := Lex("<p>hi</p>", true, DefaultMaxEntityLen)
	want := []Token{
		{Kind: Tag, Value: "p"},
		{Kind: Text, Value: "hi"},
		{Kind: Tag, Value: "/p"},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexViewSourceKeepsTagsLiteral(t *testing.T) {
	tokens := Lex("<p>hi</p>", false, DefaultMaxEntityLen)
	assert.Len(t, tokens, 1)
	assert.Equal(t, Text, tokens[0].Kind)
	assert.True(t, strings.HasPrefix(tokens[0].Value, "<"))
	assert.Contains(t, tokens[0].Value, "<p>hi</p>")
}

func TestLexDecodesKnownEntities(t *testing.T) {
	tokens := Lex("a &lt;b&gt; c", true, DefaultMaxEntityLen)
	want := []Token{{Kind: Text, Value: "a <b> c"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexPassesThroughUnknownEntity(t *testing.T) {
	tokens := Lex("a &amp; b", true, DefaultMaxEntityLen)
	want := []Token{{Kind: Text, Value: "a &amp; b"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexSkipUnknownEntitiesMatchesOriginal(t *testing.T) {
	tokens := Lex("&potato;div&chips;", true, DefaultMaxEntityLen)
	want := []Token{{Kind: Text, Value: "&potato;div&chips;"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestLexUnterminatedEntityRewindsInsteadOfSwallowingATag is the case the
// original rewinds on: a bare '&' that never resolves to a known entity
// must not swallow a tag that follows it later in the scan.
func TestLexUnterminatedEntityRewindsInsteadOfSwallowingATag(t *testing.T) {
	tokens := Lex("a & b <b>", true, DefaultMaxEntityLen)
	want := []Token{
		{Kind: Text, Value: "a & b "},
		{Kind: Tag, Value: "b"},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexEntityOversizedFallsBackToLiteral(t *testing.T) {
	body := "&" + strings.Repeat("x", 40) + ";done"
	tokens := Lex(body, true, DefaultMaxEntityLen)
	assert.NotEmpty(t, tokens)
	assert.Contains(t, tokens[0].Value, "done")
}

func TestLexCustomMaxEntityLenIsHonored(t *testing.T) {
	// &gt; is 4 bytes; with a cap of 3 the scan gives up before the ';'
	// ever arrives, so it falls back to literal text.
	tokens := Lex("a&gt;b", true, 3)
	want := []Token{{Kind: Text, Value: "a&gt;b"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexZeroMaxEntityLenFallsBackToDefault(t *testing.T) {
	tokens := Lex("a &lt; b", true, 0)
	want := []Token{{Kind: Text, Value: "a < b"}}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexEmptyBodyProducesNoTokens(t *testing.T) {
	tokens := Lex("", true, DefaultMaxEntityLen)
	assert.Empty(t, tokens)
}

func TestLexUnicodeGraphemes(t *testing.T) {
	tokens := Lex("café", true, DefaultMaxEntityLen)
	assert.Len(t, tokens, 1)
	assert.Equal(t, "café", tokens[0].Value)
}
