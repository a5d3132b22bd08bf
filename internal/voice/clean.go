package voice

import (
	"regexp"
	"strings"
)

// whisper emits bracketed annotations such as [BLANK_AUDIO] or (music) for
// non-speech.
var annotationRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// Clean normalizes a raw transcript into the form the intent resolver
// matches against: lowercase, single-spaced, without annotations or trailing
// punctuation. It reports false when nothing intelligible is left.
func Clean(raw string) (string, bool) {
	text := annotationRe.ReplaceAllString(raw, " ")
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimRight(text, ".!?,;: ")
	text = strings.ToLower(text)

	if strings.Trim(text, ".!?,;:-' ") == "" {
		return "", false
	}
	return text, true
}
