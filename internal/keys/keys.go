package keys

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold strips diacritics ("Café" -> "Cafe").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// GameSlug derives the URL slug for a game title. Behavior: folds accents,
// lower-cases, collapses every run of non-alphanumerics into a single '-'
// and trims dashes at both ends. Returns "" when nothing usable remains.
func GameSlug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(fold(strings.TrimSpace(title))) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// AssetSlug produces the stable key for an asset name: lower-case, spaces
// and dashes become underscores, apostrophes are removed.
func AssetSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// NameKey normalizes a display name for case-insensitive lookups.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
