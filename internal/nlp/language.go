package nlp

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/kljensen/snowball"
)

// Undetermined is reported when no language can be detected.
const Undetermined = "und"

// snowballLanguages maps ISO 639-1 codes to Snowball stemmer names.
var snowballLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"nb": "norwegian",
	"no": "norwegian",
	"hu": "hungarian",
}

// DetectLanguage returns the ISO 639-1 code of text and the detection
// confidence. Empty text, and text whatlanggo cannot classify reliably
// (short phrases, numbers, mixed languages), is Undetermined; the
// confidence is still reported for the latter.
func (p *Processor) DetectLanguage(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return Undetermined, 0
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return Undetermined, 0
	}
	if !info.IsReliable() {
		return Undetermined, info.Confidence
	}
	return code, info.Confidence
}

// stemLanguage picks the Snowball language for text, or "" when stemming
// is disabled or unsupported.
func (p *Processor) stemLanguage(text string) string {
	if !p.stemming {
		return ""
	}
	lang := p.language
	if code, _ := p.DetectLanguage(text); code != Undetermined {
		lang = code
	}
	return snowballLanguages[lang]
}

func (p *Processor) stem(tok, language string) string {
	if language == "" {
		return tok
	}
	stemmed, err := snowball.Stem(tok, language, false)
	if err != nil || stemmed == "" {
		return tok
	}
	return stemmed
}

// SupportsStemming reports whether a Snowball stemmer exists for the code.
func SupportsStemming(code string) bool {
	_, ok := snowballLanguages[code]
	return ok
}
