package annotate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToDisplayText removes every tone cue, including cues inside spans, collapses whitespace
// runs to one space and trims. Emphasis markers are kept. ToDisplayText is idempotent.
func ToDisplayText(annotated string) string {
	return collapseWhitespace(stripCues(collapseWhitespace(annotated), 0, 0))
}

// StripEmphasis replaces every complete span with its trimmed content.
func StripEmphasis(text string) string {
	var b strings.Builder
	for _, tok := range Scan(text) {
		if tok.Kind == TokenSpan {
			b.WriteString(strings.TrimSpace(tok.Inner))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// PlainText is display text without emphasis markers.
func PlainText(annotated string) string {
	return collapseWhitespace(StripEmphasis(ToDisplayText(annotated)))
}

// Cues returns the tone cues of annotated text in order of appearance.
func Cues(annotated string) []string {
	var cues []string
	for _, tok := range Scan(annotated) {
		if tok.Kind == TokenCue {
			cues = append(cues, strings.TrimSpace(tok.Inner))
		}
	}
	return cues
}

// stripCues removes cues until none are left. before and after are the bytes
// around s in the text it was cut from, 0 at the edges of that text.
func stripCues(s string, before, after byte) string {
	// Removing a cue can join its neighbours into a new cue, e.g. "[a[b]c]".
	for {
		next := removeCues(s, before, after)
		if next == s {
			return s
		}
		s = next
	}
}

// removeCues drops each cue once, span content included. A cue between two
// asterisks becomes a space so that removal never forms a new "**".
func removeCues(s string, before, after byte) string {
	var b strings.Builder
	b.Grow(len(s))
	tokens := Scan(s)
	for i, tok := range tokens {
		switch tok.Kind {
		case TokenCue:
			prev, next := before, after
			if b.Len() > 0 {
				prev = b.String()[b.Len()-1]
			}
			if i+1 < len(tokens) {
				next = tokens[i+1].Text[0]
			}
			if prev == '*' && next == '*' {
				b.WriteByte(' ')
			}
		case TokenSpan:
			b.WriteString("**")
			b.WriteString(removeCues(tok.Inner, '*', '*'))
			b.WriteString("**")
		default:
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func leadingSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func trailingSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
