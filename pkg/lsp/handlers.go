package lsp

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "{", "$"},
	}
	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: &protocol.True,
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokenTypes,
			TokenModifiers: []string{},
		},
		Full: true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	if err := s.registry.Scan(s.ctx); err != nil {
		// Partial scans are usable; log what failed and keep serving.
		zerolog.Ctx(s.ctx).Warn().Err(err).Msg("initial registry scan had errors")
	}
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	s.rescanner.Stop()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return s.session.Shutdown(s.ctx)
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path := uriToPath(params.TextDocument.URI)
	s.session.Open(s.ctx, path, params.TextDocument.Text, int(params.TextDocument.Version))
	s.publishDiagnostics(context, path)
	return nil
}

func (s *Server) textDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path := uriToPath(params.TextDocument.URI)
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return nil
	}

	content := doc.Content
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				content = c.Text
				continue
			}
			r := fromProtocolRange(content, *c.Range)
			content = content[:r.Start] + c.Text + content[r.End:]
		}
	}

	if _, err := s.session.Change(s.ctx, path, content, int(params.TextDocument.Version)); err != nil {
		return err
	}
	s.publishDiagnostics(context, path)
	return nil
}

func (s *Server) textDocumentDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path := uriToPath(params.TextDocument.URI)
	if err := s.session.Close(s.ctx, path); err != nil {
		zerolog.Ctx(s.ctx).Debug().Err(err).Str("uri", path).Msg("close for untracked document")
		return nil
	}
	// Clear any published diagnostics for the closed template.
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentDidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.publishDiagnostics(context, uriToPath(params.TextDocument.URI))
	return nil
}

func (s *Server) workspaceDidChangeWatchedFiles(context *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, event := range params.Changes {
		path := uriToPath(string(event.URI))
		if !strings.HasSuffix(path, s.cfg.CompanionExtension) {
			continue
		}

		switch event.Type {
		case protocol.FileChangeTypeDeleted:
			s.rescanner.Remove(s.ctx, path)
		default:
			s.rescanner.Enqueue(s.ctx, path)
		}

		for _, uri := range s.session.CompanionChanged(s.ctx, path) {
			s.publishDiagnostics(context, uri)
		}
	}
	return nil
}

func (s *Server) publishDiagnostics(context *glsp.Context, path string) {
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return
	}

	results := s.bridge.Diagnostics(s.ctx, path)
	diagnostics := make([]protocol.Diagnostic, 0, len(results))
	source := serverName
	for _, d := range results {
		severity := diagnosticSeverity(d.Severity)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(doc.Content, d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(pathToURI(path)),
		Diagnostics: diagnostics,
	})
}

// requestOffset resolves a protocol position against the open template it
// names, returning the template path, its content and the byte offset.
func (s *Server) requestOffset(uri string, pos protocol.Position) (string, string, int, bool) {
	path := uriToPath(uri)
	doc, ok := s.session.Document(s.ctx, path)
	if !ok {
		return "", "", 0, false
	}
	return path, doc.Content, fromProtocolPosition(doc.Content, pos), true
}
