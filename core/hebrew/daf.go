package hebrew

import (
	"fmt"
	"strconv"
)

// Hebrew side markers for the two sides of a daf.
var hebrewSides = [2]string{"ע״א", "ע״ב"}

// DafPage maps a 1-based sequential position to its page number. Odd
// positions are side a of page ceil(pos/2), even positions are side b.
func DafPage(pos int) int {
	return (pos + 1) / 2
}

// DafSide returns 0 for side a and 1 for side b of a 1-based position.
func DafSide(pos int) int {
	return (pos + 1) % 2
}

// DafExternal renders a 1-based position as the external page/side label
// used in English canonical references: "2a", "2b", "3a", ...
func DafExternal(pos int) string {
	side := "a"
	if DafSide(pos) == 1 {
		side = "b"
	}
	return strconv.Itoa(DafPage(pos)) + side
}

// DafHebrew renders a 1-based position as the Hebrew page label used in
// Hebrew canonical references: punctuated gematria of the page followed by
// the amud marker, e.g. ב׳ ע״א.
func DafHebrew(pos int) string {
	return fmt.Sprintf("%s %s", GematriaPunctuated(DafPage(pos)), hebrewSides[DafSide(pos)])
}

// DafPosition converts a page number and side (0 for a, 1 for b) back to
// the 1-based sequential position. It is the inverse of DafPage/DafSide and
// is used when linearizing parsed citations like "21b".
func DafPosition(page, side int) int {
	return page*2 - 1 + side
}
