// Package bridge translates analysis requests between template
// coordinates and virtual-document coordinates. Every operation follows
// the same shape: find the mapping record under the position, forward the
// offset, query the oracle at the live virtual version, then map the
// results back and drop anything synthetic before it can reach the
// client.
package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/session"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

type Bridge struct {
	session *session.Session
	oracle  oracle.Oracle
}

func New(s *session.Session, o oracle.Oracle) *Bridge {
	return &Bridge{session: s, oracle: o}
}

// LocationResult is a resolved location in non-virtual coordinates: a
// template document or a plain source file.
type LocationResult struct {
	URI   string
	Range position.Range
}

// TextEdit is one edit of a workspace-wide change, again always in
// non-virtual coordinates.
type TextEdit struct {
	URI     string
	Range   position.Range
	NewText string
}

// target resolves a template request position down to the owning
// document, the mapping record under the offset, and the virtual file
// coordinates to query the oracle with.
type target struct {
	doc     *session.TemplateDocument
	record  vdoc.Record
	file    string
	version int
	offset  int
}

func (b *Bridge) resolve(ctx context.Context, uri string, offset int) (target, bool) {
	doc, ok := b.session.Document(ctx, uri)
	if !ok || doc.State != session.StateBoundFresh || doc.Virtual == nil {
		return target{}, false
	}
	idx, ok := vdoc.FindByTemplateOffset(doc.Records, offset)
	if !ok {
		return target{}, false
	}
	rec := doc.Records[idx]
	return target{
		doc:     doc,
		record:  rec,
		file:    session.VirtualURI(uri),
		version: doc.Virtual.Version,
		offset:  rec.ForwardOffset(offset),
	}, true
}

// logOracleErr records an oracle failure. The failure never propagates;
// callers return empty results instead.
func logOracleErr(ctx context.Context, op, file string, err error) {
	zerolog.Ctx(ctx).Warn().Err(err).Str("op", op).Str("file", file).Msg("oracle query failed")
}

// translateLocation maps an oracle location into non-virtual coordinates.
// Companion-source and plain-file locations pass through unchanged;
// locations inside a virtual document are mapped through the owning
// template's records and retargeted to the template URI. ok is false for
// spans that live entirely inside synthetic scaffolding.
func (b *Bridge) translateLocation(ctx context.Context, loc oracle.Location) (LocationResult, bool) {
	templateURI, ok := session.TemplateURI(loc.File)
	if !ok {
		return LocationResult{URI: loc.File, Range: loc.Span}, true
	}

	doc, ok := b.session.Document(ctx, templateURI)
	if !ok || doc.Virtual == nil {
		return LocationResult{}, false
	}
	idx, ok := vdoc.FindByValueRange(doc.Records, loc.Span)
	if !ok {
		return LocationResult{}, false
	}
	r, ok := doc.Records[idx].BackwardRange(loc.Span)
	if !ok {
		return LocationResult{}, false
	}
	return LocationResult{URI: templateURI, Range: r}, true
}
