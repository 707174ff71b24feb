package util

import (
	"regexp"
	"strings"
)

const persianRange = `\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}\x{FB50}-\x{FDFF}\x{FE70}-\x{FEFF}`

var (
	reHashtag    = regexp.MustCompile(`#([` + persianRange + `\w]+)`)
	reMention    = regexp.MustCompile(`@(\w+)`)
	reURL        = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	rePersian    = regexp.MustCompile(`[` + persianRange + `]`)
	reLatin      = regexp.MustCompile(`[a-zA-Z]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reDiacritics = regexp.MustCompile(`[\x{064B}-\x{065F}\x{0670}]`)
)

var arabicToPersian = strings.NewReplacer(
	"ك", "ک", // kaf
	"ي", "ی", // yeh
	"ى", "ی", // alef maksura
	"ة", "ه", // teh marbuta
	"ؤ", "و", // waw with hamza
	"إ", "ا", // alef with hamza below
	"أ", "ا", // alef with hamza above
)

var persianDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// NormalizeContent canonicalizes post text before it goes to the analyzer:
// Arabic letter variants map to their Persian forms, Persian digits to ASCII,
// diacritics are stripped, and whitespace collapses to single spaces.
func NormalizeContent(text string) string {
	if text == "" {
		return ""
	}

	text = arabicToPersian.Replace(text)
	text = persianDigits.Replace(text)
	text = reDiacritics.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// ExtractHashtags returns the hashtags in text without the leading '#',
// deduplicated in first-encountered order.
func ExtractHashtags(text string) []string {
	return extractUnique(reHashtag, text, 1)
}

// ExtractMentions returns the @-mentions in text without the leading '@',
// deduplicated in first-encountered order.
func ExtractMentions(text string) []string {
	return extractUnique(reMention, text, 1)
}

// ExtractURLs returns the http/https URLs in text, deduplicated in
// first-encountered order.
func ExtractURLs(text string) []string {
	return extractUnique(reURL, text, 0)
}

func extractUnique(re *regexp.Regexp, text string, group int) []string {
	if text == "" {
		return nil
	}

	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		v := m[group]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// DetectLanguage guesses the language of text by letter ratio: "fa" above
// 70% Persian letters, "en" below 30%, "mixed" in between, "unknown" when
// there are no letters at all.
func DetectLanguage(text string) string {
	if text == "" {
		return "unknown"
	}

	persian := len(rePersian.FindAllString(text, -1))
	latin := len(reLatin.FindAllString(text, -1))
	total := persian + latin
	if total == 0 {
		return "unknown"
	}

	ratio := float64(persian) / float64(total)
	switch {
	case ratio > 0.7:
		return "fa"
	case ratio < 0.3:
		return "en"
	default:
		return "mixed"
	}
}

// TruncateText shortens text to at most maxLen runes, appending "..." when
// it cuts.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SanitizePostgresText strips invalid UTF-8 and NUL bytes, which Postgres
// text columns reject.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
