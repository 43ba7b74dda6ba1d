// Package language annotates message text with a language code and a
// confidence. Detection is deliberately heuristic: script ranges decide
// between the default and secondary language, and a romanized lexicon
// separates code-switched text from plain default-language text. Below the
// character floor the detector reports unknown instead of guessing.
package language

import (
	"strings"
	"unicode"

	xlang "golang.org/x/text/language"
)

const (
	Unknown  = "unknown"
	English  = "english"
	Hindi    = "hindi"
	Hinglish = "hinglish"
)

// Tags maps detector codes to canonical BCP 47 tags for collaborators that
// want structured language identifiers. Hinglish is Hindi in Latin script.
var Tags = map[string]xlang.Tag{
	English:  xlang.English,
	Hindi:    xlang.Hindi,
	Hinglish: xlang.MustParse("hi-Latn"),
}

// ParseHint normalizes a caller-supplied language hint ("en", "english",
// "hi-Latn", ...) to a detector code, or "" if it names no known language.
func ParseHint(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "":
		return ""
	case English, "en", "eng":
		return English
	case Hindi, "hi", "hin":
		return Hindi
	case Hinglish, "hi-latn":
		return Hinglish
	}
	if tag, err := xlang.Parse(hint); err == nil {
		base, _ := tag.Base()
		switch base.String() {
		case "en":
			return English
		case "hi":
			return Hindi
		}
	}
	return ""
}

// Romanized-Hindi function words. A Latin-script message whose tokens hit
// this list often enough is code-switched rather than English. Entries
// that double as common English words ("the" for थे) are excluded: one
// collision costs less than misreading ordinary English as code-switched.
var romanizedHindi = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"hai", "hain", "nahi", "nahin", "kya", "kyu", "kyun", "kaise", "kab",
		"tum", "tumhara", "mera", "meri", "tera", "teri", "aap", "apna", "hum",
		"acha", "accha", "achha", "theek", "thik", "haan", "han", "yaar",
		"bhai", "didi", "matlab", "abhi", "kal", "aaj", "kuch", "bahut",
		"bohot", "thoda", "sab", "koi", "kaun", "kahan", "wala", "wali",
		"raha", "rahi", "rahe", "gaya", "gayi", "karo", "karna", "kar",
		"mat", "bas", "chalo", "chal", "dekho", "suno", "arre", "are",
		"bata", "batao", "milte", "phir", "fir", "lekin", "magar", "par",
		"aur", "bhi", "toh", "ho", "hoga", "hogi", "tha", "thi",
	} {
		romanizedHindi[w] = struct{}{}
	}
}

type Detector struct {
	floor int    // minimum cleaned-text length, runes
	hint  string // fallback code when detection has no signal
}

func NewDetector(floor int, hint string) *Detector {
	if floor <= 0 {
		floor = 3
	}
	return &Detector{floor: floor, hint: ParseHint(hint)}
}

// Detect returns a language code and a confidence in [0,1].
func (d *Detector) Detect(text string) (string, float64) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < d.floor {
		return Unknown, 0
	}

	devanagari, latin := 0, 0
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			devanagari++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	letters := devanagari + latin
	if letters == 0 {
		return d.fallback()
	}

	devRatio := float64(devanagari) / float64(letters)
	switch {
	case devRatio >= 0.7:
		return Hindi, devRatio
	case devRatio >= 0.15:
		// both scripts carry real content: code-switched
		return Hinglish, 0.5 + devRatio/2
	}

	// Latin script only: lexicon vote between english and hinglish.
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return d.fallback()
	}
	hits := 0
	for _, tok := range tokens {
		if _, ok := romanizedHindi[tok]; ok {
			hits++
		}
	}
	ratio := float64(hits) / float64(len(tokens))
	switch {
	case ratio >= 0.3:
		conf := 0.5 + ratio
		if conf > 1 {
			conf = 1
		}
		return Hinglish, conf
	case ratio >= 0.15 && hits >= 2:
		return Hinglish, 0.4 + ratio
	}
	// confidence grows with how much text there is to judge
	conf := 0.55 + float64(len(tokens))/40
	if conf > 0.95 {
		conf = 0.95
	}
	return English, conf
}

func (d *Detector) fallback() (string, float64) {
	if d.hint != "" {
		return d.hint, 0.25
	}
	return Unknown, 0
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
