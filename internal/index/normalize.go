// Package index builds the per-run, in-memory entity index the linker scans:
// every canonical knowledge entity paired with its matchable search terms.
package index

import "strings"

// Normalize canonicalizes a term for substring matching: lowercase, every
// non-alphanumeric run becomes a single space, whitespace collapsed and
// trimmed.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// SignificantWords returns up to max words of length >= 4 from text, in
// order of first occurrence, deduplicated. Shorter words carry too little
// signal for substring matching.
func SignificantWords(text string, max int) []string {
	words := strings.Fields(Normalize(text))
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, max)
	for _, w := range words {
		if len(w) < 4 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == max {
			break
		}
	}
	return out
}

// StripExtension removes a trailing file extension from a title.
func StripExtension(title string) string {
	if idx := strings.LastIndex(title, "."); idx > 0 {
		return title[:idx]
	}
	return title
}
