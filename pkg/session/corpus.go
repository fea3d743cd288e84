package session

import (
	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/oracle"
)

// The session is the oracle's corpus: the live virtual documents are
// exactly the ones derived from open, bound/fresh templates.

func (s *Session) VirtualDocument(file string) (string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.virtualOwner(file)
	if !ok {
		return "", 0, false
	}
	return doc.Virtual.Content, doc.Virtual.Version, true
}

func (s *Session) VirtualDocumentFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []string
	for uri, doc := range s.docs {
		if doc.State == StateBoundFresh && doc.Virtual != nil {
			files = append(files, VirtualURI(uri))
		}
	}
	return files
}

func (s *Session) CompanionFor(file string) (oracle.CompanionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.virtualOwner(file)
	if !ok || doc.Companion == nil {
		return oracle.CompanionInfo{}, false
	}
	return companionInfo(doc.Companion), true
}

// virtualOwner resolves a virtual document name to the fresh template
// entry that owns it. Caller holds the mutex.
func (s *Session) virtualOwner(file string) (*TemplateDocument, bool) {
	uri, ok := TemplateURI(file)
	if !ok {
		return nil, false
	}
	doc, ok := s.docs[uri]
	if !ok || doc.State != StateBoundFresh || doc.Virtual == nil {
		return nil, false
	}
	return doc, true
}

func companionInfo(info *member.Info) oracle.CompanionInfo {
	out := oracle.CompanionInfo{
		ClassName:   info.ClassName,
		SourcePath:  info.SourcePath,
		Placeholder: info.Fallback,
		Members:     make([]oracle.CompanionMember, 0, len(info.Members)),
	}
	for _, m := range info.Members {
		kind := oracle.SymbolProperty
		if m.Kind == member.KindMethod {
			kind = oracle.SymbolMethod
		}
		out.Members = append(out.Members, oracle.CompanionMember{
			Name:   m.Name,
			Kind:   kind,
			Detail: m.Type,
			Offset: m.Offset,
		})
	}
	return out
}
