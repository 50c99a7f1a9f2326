// Package sentence normalizes the casing of generated summaries.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeSentences 按句子重新规范大小写：每句首字母大写，其余字母小写。
//
// A sentence boundary is a '.', '!' or '?' followed by one or more spaces. The
// punctuation stays with the preceding sentence, the run of spaces is replaced
// by exactly one space. Whitespace anywhere else is left untouched.
func CapitalizeSentences(text string) string {
	if text == "" {
		return ""
	}

	segments := Split(text)
	for i, segment := range segments {
		segments[i] = capitalize(segment)
	}
	return strings.Join(segments, " ")
}

// Split cuts text at sentence boundaries. The result always has at least one
// element; a trailing boundary yields an empty final segment.
func Split(text string) []string {
	segments := make([]string, 0, 4)
	start := 0

	for i := 1; i < len(text); i++ {
		if text[i] != ' ' || !isTerminal(text[i-1]) {
			continue
		}

		end := i
		for i < len(text) && text[i] == ' ' {
			i++
		}
		segments = append(segments, text[start:end])
		start = i
	}

	return append(segments, text[start:])
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func capitalize(segment string) string {
	if segment == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(segment)
	if r == utf8.RuneError && size <= 1 {
		return segment[:size] + strings.ToLower(segment[size:])
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(segment[size:])
}
