package pipeline

import "strings"

// splitSentences splits text into sentences on terminal punctuation.
// Both Latin and Korean sentence endings are handled; empty fragments are
// dropped.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			// Keep decimals like 3.2 together.
			if r == '.' && i+1 < len(runes) && isDigit(runes[i+1]) && i > 0 && isDigit(runes[i-1]) {
				continue
			}
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
