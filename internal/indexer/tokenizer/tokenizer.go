// Package tokenizer splits document text and query lines into the token
// lists consumed by the index and the query parser. Only ASCII letters and
// digits survive in terms, and every token is lower-cased.
package tokenizer

import (
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/adt"
)

// MaxTokenLen is the longest token kept. Longer runs of characters are
// dropped whole rather than truncated.
const MaxTokenLen = 1022

// Document returns the terms of text in order of appearance. Words are
// separated by whitespace; characters that are not ASCII alphanumerics are
// removed from within a word.
func Document(text string) *adt.List[string] {
	return split(text, isSpace, isAlnum)
}

// Query returns the raw tokens of a query line. Parentheses are split off as
// tokens of their own, and the operator characters '&', '|' and '!' are kept
// so the parser sees "&&", "||" and "&!".
func Query(line string) *adt.List[string] {
	return split(line, isSpaceOrParen, isQueryChar)
}

// split walks s once. A delimiter ends the current token; a delimiter that
// also passes keep is emitted as a one-character token.
func split(s string, delim, keep func(c byte) bool) *adt.List[string] {
	tokens := adt.NewList[string]()
	buf := make([]byte, 0, 64)
	skipping := false

	flush := func() {
		if len(buf) > 0 && !skipping {
			tokens.PushBack(string(buf))
		}
		buf = buf[:0]
		skipping = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if delim(c) {
			flush()
			if keep(c) {
				tokens.PushBack(string(lower(c)))
			}
			continue
		}
		if !keep(c) || skipping {
			continue
		}
		buf = append(buf, lower(c))
		if len(buf) >= MaxTokenLen {
			skipping = true
		}
	}
	flush()
	return tokens
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isSpaceOrParen(c byte) bool {
	return c == '(' || c == ')' || isSpace(c)
}

func isOperatorPart(c byte) bool {
	switch c {
	case '(', ')', '&', '|', '!':
		return true
	}
	return false
}

func isQueryChar(c byte) bool {
	return isOperatorPart(c) || isAlnum(c)
}
