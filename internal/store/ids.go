package store

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold strips combining marks so accented labels slug to plain ASCII.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var slugRuns = regexp.MustCompile(`[\s-]+`)

// Slugify turns a free-form label into a lowercase identifier safe for use
// as a JSON id or file name. Input that yields no usable characters falls
// back to a random UUID so callers always get a non-empty id.
func Slugify(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.NewString()
	}
	if folded, _, err := transform.String(asciiFold, value); err == nil {
		value = folded
	}
	value = strings.ToLower(value)

	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	slug := strings.Trim(slugRuns.ReplaceAllString(b.String(), "-"), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

// EnsureUniqueID slugifies base and, when the slug is already claimed,
// appends -2, -3, ... until exists reports a free id.
func EnsureUniqueID(base string, exists func(string) bool) string {
	slug := Slugify(base)
	if !exists(slug) {
		return slug
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", slug, i)
		if !exists(candidate) {
			return candidate
		}
	}
}

// dedupeStrings keeps the first occurrence of each value, preserving order.
func dedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
