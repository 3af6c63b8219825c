package tagging

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Slug returns the canonical form of a tag name: NFKC normalised, case
// folded, with every run of characters other than letters and digits
// replaced by a single hyphen.
func Slug(name string) string {
	name = cases.Fold().String(norm.NFKC.String(name))

	var b strings.Builder
	pendingDash := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
