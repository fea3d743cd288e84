package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/viewbind/viewbind/pkg/bridge"
	"github.com/viewbind/viewbind/pkg/format"
)

func (s *Server) textDocumentCompletion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, _, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	results := s.bridge.Completion(s.ctx, path, offset)
	if len(results) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(results))
	for _, r := range results {
		kind := completionKind(r.Kind)
		item := protocol.CompletionItem{
			Label:    r.Label,
			Kind:     &kind,
			SortText: strptr(r.SortText),
		}
		if r.Detail != "" {
			item.Detail = strptr(r.Detail)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Server) textDocumentHover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, content, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	result := s.bridge.Hover(s.ctx, path, offset)
	if result == nil {
		return nil, nil
	}

	hover := &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```typescript\n" + strings.Join(result.Contents, "\n") + "\n```",
		},
	}
	if result.Range != nil {
		r := toProtocolRange(content, *result.Range)
		hover.Range = &r
	}
	return hover, nil
}

func (s *Server) textDocumentDefinition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, _, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.locations(s.bridge.Definition(s.ctx, path, offset)), nil
}

func (s *Server) textDocumentReferences(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	path, _, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.locations(s.bridge.References(s.ctx, path, offset)), nil
}

func (s *Server) textDocumentPrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	path, content, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	r, ok := s.bridge.PrepareRename(s.ctx, path, offset)
	if !ok {
		return nil, nil
	}
	return toProtocolRange(content, r), nil
}

func (s *Server) textDocumentRename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	path, _, offset, ok := s.requestOffset(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.workspaceEdit(s.bridge.Rename(s.ctx, path, offset, params.NewName)), nil
}

func (s *Server) textDocumentSemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path := uriToPath(params.TextDocument.URI)
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return nil, nil
	}

	data := encodeTokens(doc.Content, s.bridge.SemanticTokens(s.ctx, path))
	return &protocol.SemanticTokens{Data: data}, nil
}

func (s *Server) textDocumentCodeAction(context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	path := uriToPath(params.TextDocument.URI)
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return nil, nil
	}

	rng := fromProtocolRange(doc.Content, params.Range)
	actions := s.bridge.CodeActions(s.ctx, path, rng)
	if len(actions) == 0 {
		return nil, nil
	}

	quickFix := protocol.CodeActionKindQuickFix
	out := make([]protocol.CodeAction, 0, len(actions))
	for _, a := range actions {
		out = append(out, protocol.CodeAction{
			Title: a.Title,
			Kind:  &quickFix,
			Edit:  s.workspaceEdit(a.Edits),
		})
	}
	return out, nil
}

func (s *Server) textDocumentFormatting(context *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	path := uriToPath(params.TextDocument.URI)
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return nil, nil
	}

	style := s.formatter.StyleFor(path)
	tabSize := 0
	if v, ok := params.Options[protocol.FormattingOptionTabSize].(float64); ok {
		tabSize = int(v)
	}
	insertSpaces, _ := params.Options[protocol.FormattingOptionInsertSpaces].(bool)
	style.ApplyOptions(tabSize, insertSpaces)

	edits := format.Format(doc.Content, style)
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, protocol.TextEdit{
			Range:   toProtocolRange(doc.Content, e.Range),
			NewText: e.NewText,
		})
	}
	return out, nil
}

func (s *Server) locations(results []bridge.LocationResult) []protocol.Location {
	locations := make([]protocol.Location, 0, len(results))
	for _, r := range results {
		content, ok := s.contentFor(r.URI)
		if !ok {
			continue
		}
		locations = append(locations, protocol.Location{
			URI:   pathToURI(r.URI),
			Range: toProtocolRange(content, r.Range),
		})
	}
	return locations
}

func strptr(s string) *string { return &s }
