package bridge

import (
	"context"

	"github.com/viewbind/viewbind/pkg/position"
)

// PrepareRename validates a rename request and returns the template span
// of the identifier that would be renamed.
func (b *Bridge) PrepareRename(ctx context.Context, uri string, offset int) (position.Range, bool) {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return position.Range{}, false
	}

	locs, err := b.oracle.FindRenameLocationsAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "prepareRename", t.file, err)
		return position.Range{}, false
	}
	if len(locs) == 0 {
		return position.Range{}, false
	}

	return identRangeAt(t.doc.Content, t.record.Template, offset)
}

// identRangeAt expands the identifier under the offset, bounded by the
// expression span it sits in.
func identRangeAt(content string, bounds position.Range, offset int) (position.Range, bool) {
	start := offset
	for start > bounds.Start && isWordChar(content[start-1]) {
		start--
	}
	end := offset
	for end < bounds.End && isWordChar(content[end]) {
		end++
	}
	if start == end {
		return position.Range{}, false
	}
	return position.NewRange(start, end), true
}

// Rename produces the workspace edits for renaming the symbol at a
// template offset. Edits land in three kinds of files: the companion
// source (native coordinates), templates owning a virtual document that
// references the symbol (mapped back and retargeted), and any other
// project file (passed through). Hits inside synthetic receiver prefixes
// are dropped.
func (b *Bridge) Rename(ctx context.Context, uri string, offset int, newName string) []TextEdit {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return nil
	}

	locs, err := b.oracle.FindRenameLocationsAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "rename", t.file, err)
		return nil
	}

	var edits []TextEdit
	for _, loc := range locs {
		r, ok := b.translateLocation(ctx, loc)
		if !ok {
			continue
		}
		edits = append(edits, TextEdit{URI: r.URI, Range: r.Range, NewText: newName})
	}
	return edits
}

// References resolves every reference to the symbol at a template offset,
// translated into non-virtual coordinates.
func (b *Bridge) References(ctx context.Context, uri string, offset int) []LocationResult {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return nil
	}

	locs, err := b.oracle.FindReferencesAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "references", t.file, err)
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
