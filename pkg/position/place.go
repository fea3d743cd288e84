package position

import "unicode/utf8"

// Place is a zero-based line/character pair, the coordinate form used on
// the protocol surface. Character counts UTF-16 code units: astral-plane
// runes occupy two.
type Place struct {
	Line      int
	Character int
}

// utf16Width is the number of UTF-16 code units a rune occupies.
func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// PlaceOf calculates the line and character for a byte offset in text.
func PlaceOf(text string, offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := 0
	character := 0
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			character = 0
			continue
		}
		character += utf16Width(r)
	}

	return Place{Line: line, Character: character}
}

// OffsetOf is the inverse of PlaceOf. Places past the end of a line or past
// the last line clamp to the nearest valid offset.
func OffsetOf(text string, p Place) int {
	offset := 0
	line := 0
	for line < p.Line && offset < len(text) {
		if text[offset] == '\n' {
			line++
		}
		offset++
	}

	character := 0
	for offset < len(text) && character < p.Character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		character += utf16Width(r)
		offset += size
	}

	return offset
}

// PlacesOf converts a byte range into its start and end places.
func PlacesOf(text string, r Range) (Place, Place) {
	return PlaceOf(text, r.Start), PlaceOf(text, r.End)
}
