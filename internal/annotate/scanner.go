// Package annotate turns persona-styled text into annotated text, display text and playback segments.
//
// Annotated text grammar:
//
//	cue     = "[" 1*(any byte except "[", "]", "*") "]"
//	span    = "**" 1*(any byte except "*") "**"
//	literal = everything else
//
// A "**" that cannot be closed is literal text.
package annotate

import "strings"

// TokenKind is the type of a scanned token
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenCue
	TokenSpan
)

// Token is one lexical unit of annotated text. Text holds the raw bytes including
// delimiters; Inner holds cue or span content without delimiters.
type Token struct {
	Kind  TokenKind
	Text  string
	Inner string
}

// Scan splits s into literal, cue and span tokens. Concatenating every Token.Text
// reproduces s exactly. Adjacent literal bytes are merged into one token.
func Scan(s string) []Token {
	var (
		tokens []Token
		start  int // start of the pending literal run
	)
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: s[start:end]})
		}
	}

	i := 0
	for i < len(s) {
		switch s[i] {
		case '[':
			if end := cueEnd(s, i); end > 0 {
				flush(i)
				tokens = append(tokens, Token{Kind: TokenCue, Text: s[i : end+1], Inner: s[i+1 : end]})
				i = end + 1
				start = i
				continue
			}
		case '*':
			if end := spanEnd(s, i); end > 0 {
				flush(i)
				tokens = append(tokens, Token{Kind: TokenSpan, Text: s[i:end], Inner: s[i+2 : end-2]})
				i = end
				start = i
				continue
			}
		}
		i++
	}
	flush(len(s))
	return tokens
}

// cueEnd returns the index of the closing bracket of a cue opening at i, or -1.
func cueEnd(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case ']':
			if j == i+1 {
				return -1
			}
			return j
		case '[', '*':
			return -1
		}
	}
	return -1
}

// spanEnd returns the index just past the closing "**" of a span opening at i, or -1.
func spanEnd(s string, i int) int {
	if i+1 >= len(s) || s[i+1] != '*' {
		return -1
	}
	j := i + 2
	for j < len(s) && s[j] != '*' {
		j++
	}
	if j == i+2 || j+1 >= len(s) || s[j+1] != '*' {
		return -1
	}
	return j + 2
}

// strayIndex returns the position of the first "**" in a literal run, or -1.
// Inside a literal every "**" is unterminated.
func strayIndex(literal string) int {
	return strings.Index(literal, "**")
}
