package surface

import (
	"sort"
	"strings"
	"unicode"
)

type Count struct {
	Text string `json:"text"`
	N    int    `json:"n"`
}

// CommandCounts counts identical history entries, most used first. Ties keep
// first-seen order.
func CommandCounts(history []string) []Count {
	return count(history)
}

// WordCounts counts lowercase words across history and keeps the top n
// (all of them when n <= 0).
func WordCounts(history []string, n int) []Count {
	var words []string
	for _, h := range history {
		words = append(words, strings.FieldsFunc(strings.ToLower(h), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})...)
	}

	out := count(words)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func count(items []string) []Count {
	idx := make(map[string]int)
	var out []Count

	for _, it := range items {
		if i, ok := idx[it]; ok {
			out[i].N++
			continue
		}
		idx[it] = len(out)
		out = append(out, Count{Text: it, N: 1})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].N > out[j].N
	})
	return out
}
