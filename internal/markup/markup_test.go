// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
}

func TestParsePlainOnly(t *testing.T) {
	segs := Parse("Bonjour means hello.")
	require.Len(t, segs, 1)
	assert.Equal(t, KindPlain, segs[0].Kind)
	assert.Equal(t, "Bonjour means hello.", segs[0].Text)
}

func TestParseFrenchSpans(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		phrases []string
	}{
		{
			name:    "single span",
			input:   "Say [fr]bonjour[/fr] to greet someone.",
			phrases: []string{"bonjour"},
		},
		{
			name:    "multiple spans in order",
			input:   "[fr]un[/fr], [fr]deux[/fr], [fr]trois[/fr]",
			phrases: []string{"un", "deux", "trois"},
		},
		{
			name:    "adjacent spans",
			input:   "[fr]le[/fr][fr]chat[/fr]",
			phrases: []string{"le", "chat"},
		},
		{
			name:    "empty span",
			input:   "before [fr][/fr] after",
			phrases: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Parse(tt.input)
			assert.Equal(t, tt.phrases, FrenchPhrases(segs))
		})
	}
}

func TestParseFrenchSpanCount(t *testing.T) {
	// N well-formed spans produce exactly N French segments.
	for n := 1; n <= 5; n++ {
		input := strings.Repeat("text [fr]mot[/fr] ", n)
		segs := Parse(input)

		count := 0
		for _, s := range segs {
			if s.Kind == KindFrench {
				count++
				assert.Equal(t, "mot", s.Text)
			}
		}
		assert.Equal(t, n, count)
	}
}

func TestParseUnterminatedFrenchIsPlain(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"open without close", "This [fr]chien never closes"},
		{"close without open", "stray [/fr] tag"},
		{"open at end", "trailing [fr]"},
		{"close before open", "[/fr] then [fr]oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Parse(tt.input)
			assert.Empty(t, FrenchPhrases(segs))
			assert.Equal(t, tt.input, PlainText(segs))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	// Concatenated segment text equals the input with markers stripped only
	// where matched pairs existed.
	tests := []struct {
		input string
		want  string
	}{
		{"[fr]bonjour[/fr]", "bonjour"},
		{"a [fr]b[/fr] c [fr]d", "a b c [fr]d"},
		{"**bold** and [fr]merci[/fr]", "bold and merci"},
		{"no markers at all", "no markers at all"},
		{"half **bold", "half **bold"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(Parse(tt.input)), "input %q", tt.input)
	}
}

func TestParseBold(t *testing.T) {
	segs := Parse("this is **very** important")
	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Kind: KindPlain, Text: "this is "}, segs[0])
	assert.Equal(t, Segment{Kind: KindBold, Text: "very"}, segs[1])
	assert.Equal(t, Segment{Kind: KindPlain, Text: " important"}, segs[2])
}

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		url   string
	}{
		{"https", "see https://example.com/page for more", "https://example.com/page"},
		{"http", "see http://example.com", "http://example.com"},
		{"trailing period trimmed", "read https://example.com/doc.", "https://example.com/doc"},
		{"at end of input", "go to https://fr.example.org", "https://fr.example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Parse(tt.input)
			var links []string
			for _, s := range segs {
				if s.Kind == KindLink {
					links = append(links, s.Text)
				}
			}
			require.Len(t, links, 1)
			assert.Equal(t, tt.url, links[0])
		})
	}
}

func TestParseLineBreaks(t *testing.T) {
	segs := Parse("line one\nline two")
	require.Len(t, segs, 3)
	assert.Equal(t, KindPlain, segs[0].Kind)
	assert.Equal(t, KindLineBreak, segs[1].Kind)
	assert.Equal(t, KindPlain, segs[2].Kind)
}

func TestParseMarkersInsideFrenchStayLiteral(t *testing.T) {
	// Inline markers are not rescanned inside a French span.
	segs := Parse("[fr]c'est **bon**[/fr]")
	require.Len(t, segs, 1)
	assert.Equal(t, KindFrench, segs[0].Kind)
	assert.Equal(t, "c'est **bon**", segs[0].Text)
}

func TestParseMixed(t *testing.T) {
	input := "Lesson:\nSay [fr]bonjour[/fr] **loudly**.\nMore at https://example.com"
	segs := Parse(input)

	var kinds []Kind
	for _, s := range segs {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{
		KindPlain, KindLineBreak, KindPlain, KindFrench, KindPlain,
		KindBold, KindPlain, KindLineBreak, KindPlain, KindLink,
	}, kinds)
}

func TestParseIsRestartable(t *testing.T) {
	input := "Say [fr]salut[/fr] or **hi**\nhttps://example.com"
	first := Parse(input)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Parse(input))
	}
}
