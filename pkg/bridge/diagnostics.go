package bridge

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/session"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

// DiagnosticResult is one diagnostic in template coordinates.
type DiagnosticResult struct {
	Range    position.Range
	Message  string
	Severity oracle.Severity
}

// Diagnostics returns the template's current diagnostics. Spans that map
// to no expression (the import line when the companion is missing, hits
// inside a receiver prefix) have no template position: errors attach at
// the document start so they stay visible, lesser severities are dropped.
func (b *Bridge) Diagnostics(ctx context.Context, uri string) []DiagnosticResult {
	doc, ok := b.session.Document(ctx, uri)
	if !ok || doc.State != session.StateBoundFresh || doc.Virtual == nil {
		return nil
	}
	file := session.VirtualURI(uri)

	diags, err := b.oracle.GetDiagnosticsFor(ctx, file, doc.Virtual.Version)
	if err != nil {
		logOracleErr(ctx, "diagnostics", file, err)
		return nil
	}

	out := make([]DiagnosticResult, 0, len(diags))
	for _, d := range diags {
		r, ok := b.templateSpan(doc.Records, d.Span)
		if !ok {
			if d.Severity != oracle.SeverityError {
				continue
			}
			zerolog.Ctx(ctx).Debug().
				Str("uri", uri).
				Str("message", d.Message).
				Msg("unmappable diagnostic pinned to document start")
			r = position.NewRange(0, 0)
		}
		out = append(out, DiagnosticResult{Range: r, Message: d.Message, Severity: d.Severity})
	}
	return out
}

func (b *Bridge) templateSpan(records []vdoc.Record, span position.Range) (position.Range, bool) {
	idx, ok := vdoc.FindByValueRange(records, span)
	if !ok {
		return position.Range{}, false
	}
	rec := records[idx]
	r, ok := rec.BackwardRange(span)
	if !ok {
		return position.Range{}, false
	}
	return position.NewRange(rec.Template.Clamp(r.Start), rec.Template.Clamp(r.End)), true
}

// CodeAction is a quick fix: a title plus the workspace edits applying
// it.
type CodeAction struct {
	Title string
	Edits []TextEdit
}

// Both forms an unresolved template identifier produces: a bare root the
// rewrite left alone, or an explicit receiver access to a member the
// companion lost.
var missingMemberRe = regexp.MustCompile(
	`^(?:Property '([A-Za-z_$][A-Za-z0-9_$]*)' does not exist on type|Cannot find name '([A-Za-z_$][A-Za-z0-9_$]*)')`)

// CodeActions offers quick fixes for the diagnostics overlapping a
// template range. The only fix currently produced declares a missing
// member on the companion class, inserted right after the class body
// opens.
func (b *Bridge) CodeActions(ctx context.Context, uri string, rng position.Range) []CodeAction {
	doc, ok := b.session.Document(ctx, uri)
	if !ok || doc.State != session.StateBoundFresh || doc.Virtual == nil {
		return nil
	}
	if doc.Companion == nil || doc.Companion.Fallback || doc.Companion.BodyStart <= 0 {
		return nil
	}

	var actions []CodeAction
	seen := map[string]bool{}
	for _, d := range b.Diagnostics(ctx, uri) {
		if !d.Range.Overlaps(rng) && !rng.Contains(d.Range.Start) {
			continue
		}
		m := missingMemberRe.FindStringSubmatch(d.Message)
		if m == nil {
			continue
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		actions = append(actions, CodeAction{
			Title: fmt.Sprintf("Declare member '%s' on %s", name, doc.Companion.ClassName),
			Edits: []TextEdit{{
				URI:     doc.Companion.SourcePath,
				Range:   position.NewRange(doc.Companion.BodyStart, doc.Companion.BodyStart),
				NewText: fmt.Sprintf("\n  %s: any;", name),
			}},
		})
	}
	return actions
}
