package verify

import (
	"strings"
)

const commentMarker = "//"

// Normalize reduces Move source to a comparison fingerprint: every `//`
// comment is cut, lines are trimmed, blank lines dropped, and the remainder
// concatenated without separators. The result is not valid source.
//
// Joining can bring a trailing "/" next to a leading "/"; such a freshly
// formed comment is cut as well so that Normalize is idempotent.
func Normalize(text string) string {
	out := normalizePass(text)
	for strings.Contains(out, commentMarker) {
		out = normalizePass(out)
	}
	return out
}

func normalizePass(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, commentMarker); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
