// Package lex tokenizes an HTML body into a flat stream of text and tag
// tokens, without building a DOM. It understands only the two character
// entities the engine's bodies are expected to contain.
package lex

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Kind distinguishes the two token shapes the tokenizer produces.
type Kind int

const (
	Text Kind = iota
	Tag
)

// Token is a single lexical unit: either literal text or a tag's inner
// contents (without the angle brackets).
type Token struct {
	Kind  Kind
	Value string
}

// entities is the whole supported entity table; anything else passes
// through verbatim, a known limitation carried forward from the original
// implementation.
var entities = map[string]string{
	"&lt;": "<",
	"&gt;": ">",
}

// DefaultMaxEntityLen is the entity-scan cap used when callers don't
// override it via engine.Config.MaxEntityLen.
const DefaultMaxEntityLen = 26

// Lex scans body grapheme by grapheme and returns its token stream. When
// render is true, '<'/'>' delimit tags that are stripped into their own
// Tag tokens; when false (view-source), they are left as literal text.
// maxEntityLen bounds how far an entity scan runs before giving up; values
// <= 0 fall back to DefaultMaxEntityLen.
func Lex(body string, render bool, maxEntityLen int) []Token {
	if maxEntityLen <= 0 {
		maxEntityLen = DefaultMaxEntityLen
	}

	var graphemes []string
	gr := uniseg.NewGraphemes(body)
	for gr.Next() {
		graphemes = append(graphemes, gr.Str())
	}

	var tokens []Token
	var textBuf strings.Builder
	inTag := false
	skipEntity := false

	flushText := func() {
		if textBuf.Len() > 0 {
			tokens = append(tokens, Token{Kind: Text, Value: textBuf.String()})
			textBuf.Reset()
		}
	}

	i := 0
	for i < len(graphemes) {
		g := graphemes[i]

		if g == "&" {
			if skipEntity {
				// Already re-scanned this '&' once and failed to match a
				// known entity; treat it as literal this time.
				skipEntity = false
			} else {
				start := i
				var entityBuf strings.Builder
				entityBuf.WriteString(g)
				i++
				for i < len(graphemes) {
					next := graphemes[i]
					entityBuf.WriteString(next)
					i++
					if next == ";" || entityBuf.Len() >= maxEntityLen {
						break
					}
				}

				entity := entityBuf.String()
				if replacement, ok := entities[entity]; ok {
					textBuf.WriteString(replacement)
				} else {
					// Unknown entity: rewind the cursor to the '&' so the
					// buffered graphemes flow through the main loop as
					// literal text on the next pass, instead of being
					// swallowed.
					skipEntity = true
					i = start
				}
				continue
			}
		}

		switch {
		case g == "<" && render:
			flushText()
			inTag = true
		case g == ">" && render:
			tokens = append(tokens, Token{Kind: Tag, Value: textBuf.String()})
			textBuf.Reset()
			inTag = false
		default:
			// Accumulates both plain text (inTag false) and a tag's inner
			// contents (inTag true, cleared again at the next '>').
			textBuf.WriteString(g)
		}
		i++
	}

	if !inTag {
		flushText()
	}

	return tokens
}
