// Package session owns the per-template state: each open template
// document, its companion binding, and the virtual document plus mapping
// records derived from it. All mutation funnels through one mutex so the
// debounce timer goroutine can post into the session safely; within a
// single protocol turn the stdio loop already serializes callers.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"github.com/viewbind/viewbind/pkg/markup"
	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

// State tracks where a template document sits in its lifecycle.
type State int

const (
	// StateUnbound means no companion could be resolved for the template.
	StateUnbound State = iota
	// StateBoundStale means the companion is known but the virtual
	// document is missing or out of date.
	StateBoundStale
	// StateBoundFresh means the virtual document and mapping records
	// reflect the current template content.
	StateBoundFresh
	// StateClosed means all derived state has been released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBoundStale:
		return "bound/stale"
	case StateBoundFresh:
		return "bound/fresh"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// VirtualSuffix is appended to a template URI to name its virtual
// document. The .ts extension keeps external tooling treating the
// synthesized text as ordinary source.
const VirtualSuffix = ".__vb.ts"

// VirtualURI names the virtual document derived from a template.
func VirtualURI(templateURI string) string {
	return templateURI + VirtualSuffix
}

// TemplateURI recovers the template behind a virtual document name.
func TemplateURI(virtualURI string) (string, bool) {
	if !strings.HasSuffix(virtualURI, VirtualSuffix) {
		return "", false
	}
	return strings.TrimSuffix(virtualURI, VirtualSuffix), true
}

// BindingResolver maps a template URI to its companion binding. A false
// return leaves the document unbound.
type BindingResolver func(templateURI string) (member.Binding, bool)

// TemplateDocument is the session entry for one open template.
type TemplateDocument struct {
	URI     string
	Content string
	Version int
	State   State
	Binding member.Binding

	// Derived state, regenerated atomically. Nil while not bound/fresh.
	Companion *member.Info
	Virtual   *vdoc.Document
	Records   []vdoc.Record
}

// Session is the aggregate of all open template documents.
type Session struct {
	mu       sync.Mutex
	id       string
	resolver *member.Resolver
	bind     BindingResolver
	docs     map[string]*TemplateDocument
}

func New(resolver *member.Resolver, bind BindingResolver) *Session {
	return &Session{
		id:       uuid.NewString(),
		resolver: resolver,
		bind:     bind,
		docs:     make(map[string]*TemplateDocument),
	}
}

// ID is the instance id stamped into log lines.
func (s *Session) ID() string { return s.id }

// Open registers a template and generates its derived state.
func (s *Session) Open(ctx context.Context, uri, content string, version int) *TemplateDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &TemplateDocument{URI: uri, Content: content, Version: version}
	if binding, ok := s.bind(uri); ok {
		doc.Binding = binding
		doc.State = StateBoundStale
	}
	s.docs[uri] = doc
	s.refresh(ctx, doc)

	zerolog.Ctx(ctx).Debug().
		Str("session", s.id).
		Str("uri", uri).
		Stringer("state", doc.State).
		Msg("template opened")
	return doc
}

// Change replaces the template content and regenerates derived state.
// Regeneration is whole-document: the old mapping records are discarded,
// never patched.
func (s *Session) Change(ctx context.Context, uri, content string, version int) (*TemplateDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return nil, errors.Errorf("changing %s: document not open", uri)
	}
	doc.Content = content
	doc.Version = version
	if doc.State != StateUnbound {
		// A template edit also re-reads the companion, so member changes
		// that arrived without a watched-files notification still land.
		s.resolver.Invalidate(doc.Binding.SourcePath)
		doc.State = StateBoundStale
	}
	s.refresh(ctx, doc)
	return doc, nil
}

// Close releases a template's derived state.
func (s *Session) Close(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return errors.Errorf("closing %s: document not open", uri)
	}
	doc.State = StateClosed
	doc.Companion = nil
	doc.Virtual = nil
	doc.Records = nil
	delete(s.docs, uri)

	zerolog.Ctx(ctx).Debug().Str("session", s.id).Str("uri", uri).Msg("template closed")
	return nil
}

// Shutdown closes every open template, collecting the individual errors.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()

	var err error
	for _, uri := range uris {
		err = multierr.Append(err, s.Close(ctx, uri))
	}
	return err
}

// Document returns the session entry for a template URI, bringing it up
// to date first when it went stale.
func (s *Session) Document(ctx context.Context, uri string) (*TemplateDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return nil, false
	}
	if doc.State == StateBoundStale {
		s.refresh(ctx, doc)
	}
	return doc, true
}

// OpenTemplates lists the URIs of currently open templates.
func (s *Session) OpenTemplates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// CompanionChanged invalidates the member cache for a companion source
// and eagerly regenerates every open template bound to it. It returns the
// URIs of the templates that were regenerated so the caller can refresh
// their diagnostics.
func (s *Session) CompanionChanged(ctx context.Context, sourcePath string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolver.Invalidate(sourcePath)

	var touched []string
	for _, doc := range s.docs {
		if doc.State == StateUnbound || doc.Binding.SourcePath != sourcePath {
			continue
		}
		doc.State = StateBoundStale
		s.refresh(ctx, doc)
		touched = append(touched, doc.URI)
	}
	if len(touched) > 0 {
		zerolog.Ctx(ctx).Debug().
			Str("session", s.id).
			Str("companion", sourcePath).
			Int("templates", len(touched)).
			Msg("companion change propagated")
	}
	return touched
}

// refresh regenerates the derived state for a bound document. Caller
// holds the mutex.
func (s *Session) refresh(ctx context.Context, doc *TemplateDocument) {
	if doc.State == StateUnbound || doc.State == StateClosed {
		return
	}

	spans := markup.Extract(ctx, doc.Content)
	info := s.resolver.Resolve(ctx, doc.Binding)
	result := vdoc.Synthesize(spans, info)

	version := 1
	if doc.Virtual != nil {
		version = doc.Virtual.Version + 1
	}
	doc.Companion = info
	doc.Virtual = &vdoc.Document{Content: result.Content, Version: version}
	doc.Records = result.Records
	doc.State = StateBoundFresh
}
