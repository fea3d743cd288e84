package markup

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/viewbind/viewbind/pkg/position"
	"golang.org/x/net/html"
)

// Extract returns every expression span in the template, sorted by start
// offset and mutually non-overlapping.
//
// The tokenizer consumes the input token by token; the raw bytes of each
// token tile the source exactly, so a running counter over len(Raw) gives
// the absolute offset of every token. All span arithmetic happens against
// those raw bytes, never against decoded token values, because entity
// decoding would shift offsets.
func Extract(ctx context.Context, content string) []Span {
	z := html.NewTokenizer(strings.NewReader(content))

	var spans []Span
	offset := 0

	for {
		tt := z.Next()
		raw := z.Raw()
		start := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			// The only error a string reader produces is EOF.
			sort.SliceStable(spans, func(i, j int) bool {
				return spans[i].Range.Start < spans[j].Range.Start
			})
			return NonOverlapping(spans)
		case html.TextToken:
			spans = append(spans, interpolations(raw, start)...)
		case html.StartTagToken, html.SelfClosingTagToken:
			spans = append(spans, bindingSpans(ctx, raw, start)...)
		}
	}
}

// interpolations scans a text node for `${...}` pairs. Braces nest, so
// `${ {a: 1}.a }` closes at the right brace. An unterminated opener is
// skipped.
func interpolations(raw []byte, base int) []Span {
	var spans []Span

	for i := 0; i+1 < len(raw); i++ {
		if raw[i] != '$' || raw[i+1] != '{' {
			continue
		}

		depth := 1
		j := i + 2
		for j < len(raw) && depth > 0 {
			switch raw[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth != 0 {
			break
		}

		// j is one past the closing brace.
		spans = append(spans, Span{
			Text:  string(raw[i+2 : j-1]),
			Kind:  KindInterpolation,
			Range: position.NewRange(base+i+2, base+j-1),
		})
		i = j - 1
	}

	return spans
}

// bindingSpans extracts the value of every binding attribute in a start
// tag. A present-but-empty value, or a bare attribute with no value at all,
// yields the literal expression `true` with a zero-length range at the
// value position.
func bindingSpans(ctx context.Context, raw []byte, base int) []Span {
	var spans []Span

	for _, attr := range scanTagAttributes(raw) {
		if !IsBindingAttribute(attr.Name) {
			continue
		}

		if attr.ValueRange.Empty() {
			spans = append(spans, Span{
				Text:  "true",
				Kind:  KindBinding,
				Range: position.NewRange(base+attr.ValueRange.Start, base+attr.ValueRange.Start),
			})
			continue
		}

		value := raw[attr.ValueRange.Start:attr.ValueRange.End]
		spans = append(spans, Span{
			Text:  string(value),
			Kind:  KindBinding,
			Range: position.NewRange(base+attr.ValueRange.Start, base+attr.ValueRange.End),
		})
	}

	if len(spans) > 0 {
		zerolog.Ctx(ctx).Trace().Int("count", len(spans)).Int("tag_offset", base).Msg("extracted binding spans")
	}

	return spans
}

// NonOverlapping drops any span that overlaps an earlier one. The
// tokenizer should never produce such a pair; this keeps the sorted-list
// invariant even if it does.
func NonOverlapping(spans []Span) []Span {
	out := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if !s.Range.Empty() && s.Range.Start < lastEnd {
			continue
		}
		if s.Range.End > lastEnd {
			lastEnd = s.Range.End
		}
		out = append(out, s)
	}
	return out
}
