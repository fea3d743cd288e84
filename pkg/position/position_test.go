package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		off  int
		want bool
	}{
		{name: "inside", r: NewRange(2, 8), off: 5, want: true},
		{name: "at start", r: NewRange(2, 8), off: 2, want: true},
		{name: "at end", r: NewRange(2, 8), off: 8, want: true},
		{name: "before", r: NewRange(2, 8), off: 1, want: false},
		{name: "after", r: NewRange(2, 8), off: 9, want: false},
		{name: "empty range at own offset", r: NewRange(4, 4), off: 4, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.off))
		})
	}
}

func TestRangeClamp(t *testing.T) {
	r := NewRange(3, 7)
	assert.Equal(t, 3, r.Clamp(0))
	assert.Equal(t, 5, r.Clamp(5))
	assert.Equal(t, 7, r.Clamp(100))
}

func TestRangeOverlaps(t *testing.T) {
	assert.True(t, NewRange(0, 5).Overlaps(NewRange(4, 9)))
	assert.False(t, NewRange(0, 5).Overlaps(NewRange(5, 9)))
	assert.True(t, NewRange(0, 5).Overlaps(NewRange(2, 2)), "empty range inside")
	assert.True(t, NewRange(3, 3).Overlaps(NewRange(0, 5)), "empty range against wide one")
}

func TestPlaceRoundTrip(t *testing.T) {
	text := "line one\nline two\n\nlast"

	tests := []struct {
		name   string
		offset int
		want   Place
	}{
		{name: "start of document", offset: 0, want: Place{Line: 0, Character: 0}},
		{name: "middle of first line", offset: 5, want: Place{Line: 0, Character: 5}},
		{name: "start of second line", offset: 9, want: Place{Line: 1, Character: 0}},
		{name: "empty line", offset: 18, want: Place{Line: 2, Character: 0}},
		{name: "end of document", offset: len(text), want: Place{Line: 3, Character: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceOf(text, tt.offset)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, OffsetOf(text, got))
		})
	}
}

func TestPlaceCountsUTF16Units(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   Place
	}{
		{name: "two byte rune is one unit", text: "héllo ${name}", offset: 7, want: Place{Line: 0, Character: 6}},
		{name: "astral rune is two units", text: "a\U0001F600b", offset: 5, want: Place{Line: 0, Character: 3}},
		{name: "non ascii before newline does not leak", text: "héllo\n${name}", offset: 7, want: Place{Line: 1, Character: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceOf(tt.text, tt.offset)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, OffsetOf(tt.text, got))
		})
	}
}

func TestOffsetOfClamps(t *testing.T) {
	text := "ab\ncd"
	assert.Equal(t, 2, OffsetOf(text, Place{Line: 0, Character: 99}), "past end of line stops at newline")
	assert.Equal(t, 5, OffsetOf(text, Place{Line: 9, Character: 0}), "past last line stops at end of text")
}
