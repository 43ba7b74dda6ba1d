package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reURL        = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, transport, supplemental
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	}
	return false
}

// CleanForAnalysis strips URLs and emoji and collapses whitespace so the
// scorers see plain prose. The original text is kept alongside untouched.
func CleanForAnalysis(text string) string {
	if text == "" {
		return ""
	}
	text = reURL.ReplaceAllString(text, " ")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isEmoji(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(reWhitespace.ReplaceAllString(b.String(), " "))
}

// ExtractFeatures computes surface statistics over the raw message text.
func ExtractFeatures(text string) Features {
	f := Features{
		CharCount:        len([]rune(text)),
		WordCount:        len(strings.Fields(text)),
		ExclamationCount: strings.Count(text, "!"),
		QuestionCount:    strings.Count(text, "?"),
	}
	urls := reURL.FindAllString(text, -1)
	f.URLCount = len(urls)
	f.ContainsURL = f.URLCount > 0

	upper, letters := 0, 0
	for _, r := range text {
		if isEmoji(r) && r != 0xFE0F && r != 0x200D {
			f.EmojiCount++
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	f.ContainsEmoji = f.EmojiCount > 0
	if letters > 0 {
		f.CapsRatio = float64(upper) / float64(letters)
	}
	return f
}
