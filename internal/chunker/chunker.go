// Package chunker cuts input text into character-bounded pieces.
package chunker

import "unicode/utf8"

// DefaultSampleChars is how much text the detect operation sends.
const DefaultSampleChars = 500

// CountChars returns the number of characters (runes) in text.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Sample returns the first maxChars characters of text. Multi-byte
// characters are never split.
func Sample(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultSampleChars
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}
