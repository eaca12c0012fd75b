package convert

import (
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"mdc/config"
)

var (
	reservedCharsRe = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// isEmojiRune covers the common emoji blocks plus flag regional indicators.
func isEmojiRune(r rune) bool {
	return r >= 0x1F000 && r <= 0x1FAFF ||
		r >= 0x1F1E6 && r <= 0x1F1FF ||
		r >= 0x2600 && r <= 0x26FF ||
		r >= 0x2700 && r <= 0x27BF ||
		r >= 0x2300 && r <= 0x23FF ||
		r >= 0x2B00 && r <= 0x2BFF
}

// isEmojiModifier covers VS15/VS16, ZWJ, keycap, skin tones and tag
// characters used in emoji sequences.
func isEmojiModifier(r rune) bool {
	return r == 0x200D || r == 0xFE0E || r == 0xFE0F || r == 0x20E3 ||
		r >= 0x1F3FB && r <= 0x1F3FF ||
		r >= 0xE0020 && r <= 0xE007F
}

// CleanFileName strips emoji and reserved characters, collapses whitespace
// and caps the result at 50 runes.
func CleanFileName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if isEmojiRune(r) || isEmojiModifier(r) {
			continue
		}
		sb.WriteRune(r)
	}
	cleaned := reservedCharsRe.ReplaceAllString(sb.String(), "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(strings.TrimSpace(cleaned), ".")
	runes := []rune(cleaned)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return strings.TrimSpace(string(runes))
}

// DeriveFileName builds the output document name from the resolved title,
// falling back to user plus date when the title cleans down to nothing.
func DeriveFileName(title, userName string, transliterate bool, now time.Time) string {
	cleaned := CleanFileName(title)
	if cleaned == "" {
		cleaned = CleanFileName(userName) + "_" + now.Format("20060102")
	}
	if transliterate {
		if s := slug.Make(cleaned); s != "" {
			cleaned = s
		}
	}
	return config.CleanFileName(cleaned) + ".docx"
}
