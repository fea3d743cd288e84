package bridge

import (
	"context"
	"sort"

	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/session"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

// Token is one semantic highlight span in template coordinates.
type Token struct {
	Range position.Range
	Kind  oracle.SymbolKind
}

// SemanticTokens classifies the expression text of a whole template.
// Classifications on scaffolding lines have no overlapping record and
// disappear here; spans inside a receiver prefix map to nothing.
func (b *Bridge) SemanticTokens(ctx context.Context, uri string) []Token {
	doc, ok := b.session.Document(ctx, uri)
	if !ok || doc.State != session.StateBoundFresh || doc.Virtual == nil {
		return nil
	}
	file := session.VirtualURI(uri)

	classifications, err := b.oracle.GetSemanticClassificationsAt(ctx, file, doc.Virtual.Version)
	if err != nil {
		logOracleErr(ctx, "semanticTokens", file, err)
		return nil
	}

	var tokens []Token
	for _, c := range classifications {
		idx, ok := vdoc.FindByValueRange(doc.Records, c.Span)
		if !ok {
			continue
		}
		rec := doc.Records[idx]
		r, ok := rec.BackwardRange(c.Span)
		if !ok {
			continue
		}
		r = position.NewRange(rec.Template.Clamp(r.Start), rec.Template.Clamp(r.End))
		if r.Start >= r.End {
			continue
		}
		tokens = append(tokens, Token{Range: r, Kind: c.Kind})
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Range.Start < tokens[j].Range.Start
	})
	return tokens
}
