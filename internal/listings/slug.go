package listings

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackSlugBase = "anuncio"

// NormalizeSlug lowercases title, strips diacritics and joins alphanumeric runs with "-".
func NormalizeSlug(title string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return fallbackSlugBase
	}
	return b.String()
}

// BuildSlug returns the creation slug: normalized title plus a millisecond suffix.
func BuildSlug(title string, at time.Time) string {
	return NormalizeSlug(title) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// BuildCopySlug returns the slug used for a duplicated listing.
func BuildCopySlug(title string, at time.Time) string {
	return NormalizeSlug(title) + "-copy-" + strconv.FormatInt(at.UnixMilli(), 10)
}
