package bridge

import (
	"context"

	"github.com/viewbind/viewbind/pkg/position"
)

// HoverResult is hover content plus, when it maps cleanly, the highlight
// range in template coordinates.
type HoverResult struct {
	Contents []string
	Range    *position.Range
}

// Hover answers a hover request at a template offset. An unmappable
// highlight span keeps the content and drops the range.
func (b *Bridge) Hover(ctx context.Context, uri string, offset int) *HoverResult {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return nil
	}

	info, err := b.oracle.GetQuickInfoAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "hover", t.file, err)
		return nil
	}
	if info == nil || len(info.Contents) == 0 {
		return nil
	}

	result := &HoverResult{Contents: info.Contents}
	if r, ok := t.record.BackwardRange(info.Span); ok {
		result.Range = &r
	}
	return result
}

// Definition resolves the definition locations for the symbol at a
// template offset.
func (b *Bridge) Definition(ctx context.Context, uri string, offset int) []LocationResult {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return nil
	}

	locs, err := b.oracle.GetDefinitionAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "definition", t.file, err)
		return nil
	}

	var out []LocationResult
	for _, loc := range locs {
		if r, ok := b.translateLocation(ctx, loc); ok {
			out = append(out, r)
		}
	}
	return out
}
