package knowledge

import (
	"strings"
	"unicode"
)

// FirstSentences keeps the first n sentences of text. A sentence ends at
// '.', '!' or '?' followed by whitespace or the end of the text.
func FirstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 || text == "" {
		return text
	}

	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		n--
		if n == 0 {
			return string(runes[:i+1])
		}
	}

	return text
}
