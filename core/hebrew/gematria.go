// Package hebrew provides stateless encoders for Hebrew numerals (gematria)
// and paginated daf addresses. All functions are pure and defined for n >= 1.
package hebrew

import "strings"

// Hebrew letter values for units, tens, and hundreds.
var (
	units    = []string{"", "א", "ב", "ג", "ד", "ה", "ו", "ז", "ח", "ט"}
	tens     = []string{"", "י", "כ", "ל", "מ", "נ", "ס", "ע", "פ", "צ"}
	hundreds = []string{"", "ק", "ר", "ש", "ת"}
)

// Geresh and gershayim are the punctuation marks conventionally inserted
// into Hebrew numerals: geresh after a single letter, gershayim before the
// final letter of a multi-letter numeral.
const (
	Geresh    = "׳"
	Gershayim = "״"
)

// Gematria converts a positive integer to its Hebrew-letter numeral without
// punctuation. The combinations for 15 and 16 avoid spelling the divine name:
// 15 is rendered טו (9+6) and 16 is טז (9+7) in every hundred.
func Gematria(n int) string {
	if n <= 0 {
		return ""
	}

	var sb strings.Builder

	// 400 is the highest single-letter value; larger numbers repeat ת.
	for n >= 500 {
		sb.WriteString(hundreds[4])
		n -= 400
	}
	if n >= 100 {
		sb.WriteString(hundreds[n/100])
		n %= 100
	}

	switch n {
	case 15:
		sb.WriteString("טו")
	case 16:
		sb.WriteString("טז")
	default:
		if n >= 10 {
			sb.WriteString(tens[n/10])
			n %= 10
		}
		if n > 0 {
			sb.WriteString(units[n])
		}
	}

	return sb.String()
}

// GematriaPunctuated converts a positive integer to its Hebrew-letter
// numeral with conventional punctuation: א׳ for single letters, תכ״ה style
// gershayim before the last letter otherwise.
func GematriaPunctuated(n int) string {
	g := Gematria(n)
	if g == "" {
		return ""
	}

	runes := []rune(g)
	if len(runes) == 1 {
		return g + Geresh
	}
	return string(runes[:len(runes)-1]) + Gershayim + string(runes[len(runes)-1:])
}
