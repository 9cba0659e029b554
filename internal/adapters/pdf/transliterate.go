package pdf

import (
	"strings"
	"unicode/utf8"
)

// The built-in PDF fonts only cover Latin-1, so currency signs and
// typographic characters outside it are spelled out.
var replacements = strings.NewReplacer(
	"₦", "NGN ",
	"₵", "GHS ",
	"₹", "INR ",
	"€", "EUR ",
	"£", "GBP ",
	"×", "x",
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
)

// Transliterate rewrites s so that every rune is printable with the core
// fonts. Unknown runes outside Latin-1 become '?'.
func Transliterate(s string) string {
	s = replacements.Replace(s)

	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xff {
			r = '?'
		}
		b.WriteRune(r)
	}
	return b.String()
}
