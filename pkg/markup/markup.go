// Package markup extracts embedded expressions from view templates.
//
// A template embeds expressions two ways: `${...}` interpolations inside
// text, and attribute bindings like `value.bind="count"`. Extraction is
// purely lexical and tolerant of malformed markup: anything that cannot be
// located precisely is skipped, never raised.
package markup

import "github.com/viewbind/viewbind/pkg/position"

// SpanKind distinguishes the two expression forms.
type SpanKind int

const (
	KindInterpolation SpanKind = iota + 1
	KindBinding
)

func (k SpanKind) String() string {
	switch k {
	case KindInterpolation:
		return "interpolation"
	case KindBinding:
		return "binding"
	default:
		return "unknown"
	}
}

// Span is one embedded-expression occurrence. Range is the byte range of
// the expression text inside the template; for an empty attribute value the
// range is zero-length and Text carries the implied literal.
type Span struct {
	Text  string
	Kind  SpanKind
	Range position.Range
}
