package core

import (
	"regexp"
	"strings"

	"github.com/kyokomi/emoji/v2"
)

var (
	shortcodePattern = regexp.MustCompile(`:[a-zA-Z0-9_+\-]+:`)
	emojiCodes       = emoji.CodeMap()
)

// ExpandEmoji replaces known :shortcode: tokens with their glyphs. Unknown
// tokens are kept verbatim. Glyphs never contain ':', so applying it twice
// gives the same result as applying it once.
func ExpandEmoji(text string) string {
	if strings.Count(text, ":") < 2 {
		return text
	}
	return shortcodePattern.ReplaceAllStringFunc(text, func(token string) string {
		if glyph, ok := emojiCodes[token]; ok {
			return glyph
		}
		return token
	})
}
