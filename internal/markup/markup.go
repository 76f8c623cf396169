// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup parses tutor replies into display segments.
//
// Replies are Markdown-flavored text in which every French lexical item is
// wrapped in [fr]...[/fr] markers. The parser recognizes four inline markers:
//   - [fr]...[/fr]  French phrase (playback and practice affordances)
//   - **...**       strong emphasis
//   - http(s)://    bare URL
//   - "\n"          line break inside plain text
//
// Markers never nest. [fr] spans are resolved first; emphasis, links, and
// line breaks are only scanned inside the remaining plain text. Anything
// malformed (an unterminated marker, a stray closing tag) is plain text.
// Parsing is pure: the same input always yields the same segments.
package markup

import "strings"

// Kind identifies what a segment represents.
type Kind int

const (
	// KindPlain is unmarked text.
	KindPlain Kind = iota
	// KindFrench is the text enclosed by one [fr]...[/fr] pair.
	KindFrench
	// KindBold is the text enclosed by one **...** pair.
	KindBold
	// KindLink is a bare http:// or https:// URL.
	KindLink
	// KindLineBreak is a literal newline inside plain text.
	KindLineBreak
)

// Segment is one run of display text with a single rendering treatment.
type Segment struct {
	Kind Kind
	Text string
}

const (
	frenchOpen  = "[fr]"
	frenchClose = "[/fr]"
	boldMarker  = "**"
)

// Parse splits input into an ordered sequence of segments. French spans are
// matched first, left to right and non-overlapping; the text between them is
// then scanned for emphasis, links, and newlines. Parse never fails.
func Parse(input string) []Segment {
	if input == "" {
		return nil
	}

	var segs []Segment
	rest := input
	for {
		open := strings.Index(rest, frenchOpen)
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open+len(frenchOpen):], frenchClose)
		if closing < 0 {
			// Unterminated [fr]: everything from here on is plain text.
			break
		}
		segs = append(segs, parseInline(rest[:open])...)
		segs = append(segs, Segment{Kind: KindFrench, Text: rest[open+len(frenchOpen) : open+len(frenchOpen)+closing]})
		rest = rest[open+len(frenchOpen)+closing+len(frenchClose):]
	}
	segs = append(segs, parseInline(rest)...)
	return segs
}

// parseInline scans text that is known to contain no matched [fr] pair,
// splitting out emphasis, links, and line breaks.
func parseInline(text string) []Segment {
	var segs []Segment
	for text != "" {
		kind, start, end := nextInlineMarker(text)
		if start < 0 {
			segs = appendPlain(segs, text)
			break
		}
		segs = appendPlain(segs, text[:start])
		switch kind {
		case KindBold:
			segs = append(segs, Segment{Kind: KindBold, Text: text[start+len(boldMarker) : end-len(boldMarker)]})
		case KindLink:
			segs = append(segs, Segment{Kind: KindLink, Text: text[start:end]})
		case KindLineBreak:
			segs = append(segs, Segment{Kind: KindLineBreak, Text: "\n"})
		}
		text = text[end:]
	}
	return segs
}

// nextInlineMarker finds the leftmost emphasis span, URL, or newline.
// Returns start < 0 when the text holds none of them.
func nextInlineMarker(text string) (kind Kind, start, end int) {
	start = -1

	if i := strings.Index(text, "\n"); i >= 0 {
		kind, start, end = KindLineBreak, i, i+1
	}

	if i := strings.Index(text, boldMarker); i >= 0 && (start < 0 || i < start) {
		inner := strings.Index(text[i+len(boldMarker):], boldMarker)
		// An unpaired ** stays plain; keep scanning past it is not needed
		// because the remainder cannot contain a pair either side of it
		// that starts earlier.
		if inner >= 0 {
			j := i + len(boldMarker) + inner + len(boldMarker)
			kind, start, end = KindBold, i, j
		}
	}

	if i := indexURL(text); i >= 0 && (start < 0 || i < start) {
		kind, start, end = KindLink, i, i+urlLen(text[i:])
	}

	return kind, start, end
}

// indexURL returns the position of the first http:// or https:// token.
func indexURL(text string) int {
	h := strings.Index(text, "http://")
	hs := strings.Index(text, "https://")
	switch {
	case h < 0:
		return hs
	case hs < 0:
		return h
	case hs < h:
		return hs
	default:
		return h
	}
}

// urlLen measures a URL token starting at the beginning of text. The token
// runs until whitespace, then trailing punctuation that is almost never part
// of a pasted link is trimmed back off.
func urlLen(text string) int {
	end := len(text)
	for i, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			end = i
			break
		}
	}
	for end > 0 && strings.ContainsRune(".,;:!?)]}'\"", rune(text[end-1])) {
		end--
	}
	return end
}

// appendPlain adds text as a plain segment, skipping empties.
func appendPlain(segs []Segment, text string) []Segment {
	if text == "" {
		return segs
	}
	return append(segs, Segment{Kind: KindPlain, Text: text})
}

// FrenchPhrases returns the French span texts in display order. The practice
// overlay and playback keys address phrases by this ordering.
func FrenchPhrases(segs []Segment) []string {
	var phrases []string
	for _, s := range segs {
		if s.Kind == KindFrench {
			phrases = append(phrases, s.Text)
		}
	}
	return phrases
}

// PlainText reassembles the visible text of a segment sequence, markers
// stripped. Useful for previews and width measurement.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
