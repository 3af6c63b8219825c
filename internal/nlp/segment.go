package nlp

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)

	// listMarker matches markdown prefixes left in normalised content.
	listMarker = regexp.MustCompile(`^(?:#{1,6}\s+|>\s*|[-*+]\s+(?:\[[ xX]\]\s+)?|\d+[.)]\s+)`)
)

// Clean removes HTML markup, applies NFKC normalisation and collapses
// horizontal whitespace. Line breaks are kept, runs of blank lines are
// reduced to one.
func (p *Processor) Clean(text string) string {
	if strings.ContainsRune(text, '<') {
		text = html.UnescapeString(p.sanitizer.Sanitize(text))
	}
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Tokenize splits text into case-folded words.
// Tokens without a letter or digit (punctuation, spaces, emoji) are dropped.
func (p *Processor) Tokenize(text string) []string {
	caser := cases.Fold()
	var out []string
	iter := words.FromString(text)
	for iter.Next() {
		tok := iter.Value()
		if !hasWordRune(tok) {
			continue
		}
		out = append(out, strings.ReplaceAll(caser.String(tok), "’", "'"))
	}
	return out
}

// Terms returns the content terms of text: tokens that are not stopwords,
// stemmed when stemming is enabled.
func (p *Processor) Terms(text string) []string {
	lang := p.stemLanguage(text)
	var out []string
	for _, tok := range p.Tokenize(text) {
		if p.IsStopword(tok) {
			continue
		}
		out = append(out, p.stem(tok, lang))
	}
	return out
}

// Sentences splits text into trimmed sentences. Line breaks end a sentence,
// and leading markdown list or heading markers are removed.
func (p *Processor) Sentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		for _, line := range strings.Split(iter.Value(), "\n") {
			s := strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
			if s == "" || !hasLetter(s) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// IsStopword reports whether the folded token is a stopword.
func (p *Processor) IsStopword(tok string) bool {
	_, ok := p.stopwords[tok]
	return ok
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
