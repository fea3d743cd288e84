package lsp

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/viewbind/viewbind/pkg/config"
)

const contactClass = `export class Contact {
  firstName: string = '';
  message: string = '';
}
`

type notification struct {
	method string
	params any
}

func newTestServer(t *testing.T) (*Server, *[]notification, *glsp.Context) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/contact.ts", []byte(contactClass), 0o644))

	s := NewServer(context.Background(), fs, config.Default(), "test")

	var sent []notification
	glspCtx := &glsp.Context{
		Notify: func(method string, params any) {
			sent = append(sent, notification{method: method, params: params})
		},
	}
	return s, &sent, glspCtx
}

func openTemplate(t *testing.T, s *Server, glspCtx *glsp.Context, uri, text string) {
	t.Helper()
	err := s.textDocumentDidOpen(glspCtx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: text, Version: 1},
	})
	require.NoError(t, err)
}

func TestInitializeCapabilities(t *testing.T) {
	s, _, glspCtx := newTestServer(t)

	result, err := s.initialize(glspCtx, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, init.Capabilities.CompletionProvider)
	assert.Contains(t, init.Capabilities.CompletionProvider.TriggerCharacters, ".")
	require.NotNil(t, init.Capabilities.SemanticTokensProvider)
	assert.Equal(t, serverName, init.ServerInfo.Name)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	s, sent, glspCtx := newTestServer(t)

	openTemplate(t, s, glspCtx, "file:///app/contact.html", `<p>${typo}</p>`)

	require.Len(t, *sent, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", (*sent)[0].method)
	params, ok := (*sent)[0].params.(protocol.PublishDiagnosticsParams)
	require.True(t, ok)
	assert.Equal(t, "file:///app/contact.html", params.URI)
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, "Cannot find name 'typo'.", params.Diagnostics[0].Message)
}

func TestDidChangeIncremental(t *testing.T) {
	s, sent, glspCtx := newTestServer(t)
	openTemplate(t, s, glspCtx, "file:///app/contact.html", `<p>${firstName}</p>`)

	// Replace "firstName" with "message" through a ranged change.
	err := s.textDocumentDidChange(glspCtx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 5},
					End:   protocol.Position{Line: 0, Character: 14},
				},
				Text: "message",
			},
		},
	})
	require.NoError(t, err)

	doc, ok := s.session.Document(s.ctx, "/app/contact.html")
	require.True(t, ok)
	assert.Equal(t, `<p>${message}</p>`, doc.Content)
	assert.Contains(t, doc.Virtual.Content, "__vm.message")

	// Clean template, so the second publish is empty.
	last := (*sent)[len(*sent)-1]
	params := last.params.(protocol.PublishDiagnosticsParams)
	assert.Empty(t, params.Diagnostics)
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	s, sent, glspCtx := newTestServer(t)
	openTemplate(t, s, glspCtx, "file:///app/contact.html", `<p>${typo}</p>`)

	err := s.textDocumentDidClose(glspCtx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
	})
	require.NoError(t, err)

	last := (*sent)[len(*sent)-1]
	params := last.params.(protocol.PublishDiagnosticsParams)
	assert.Empty(t, params.Diagnostics)
}

func TestCompletion(t *testing.T) {
	s, _, glspCtx := newTestServer(t)
	template := `<p>${firstName}</p>`
	openTemplate(t, s, glspCtx, "file:///app/contact.html", template)

	result, err := s.textDocumentCompletion(glspCtx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
			Position:     protocol.Position{Line: 0, Character: protocol.UInteger(strings.Index(template, "firstName") + 2)},
		},
	})
	require.NoError(t, err)

	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "firstName")
	assert.Contains(t, labels, "message")
}

func TestHover(t *testing.T) {
	s, _, glspCtx := newTestServer(t)
	template := `<p>${firstName}</p>`
	openTemplate(t, s, glspCtx, "file:///app/contact.html", template)

	hover, err := s.textDocumentHover(glspCtx, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
			Position:     protocol.Position{Line: 0, Character: protocol.UInteger(strings.Index(template, "firstName") + 2)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	markup, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, markup.Value, "(property) Contact.firstName: string")
	require.NotNil(t, hover.Range)
	assert.Equal(t, protocol.UInteger(strings.Index(template, "firstName")), hover.Range.Start.Character)
}

func TestRenameWorkspaceEdit(t *testing.T) {
	s, _, glspCtx := newTestServer(t)
	template := `<p>${firstName}</p>`
	openTemplate(t, s, glspCtx, "file:///app/contact.html", template)

	edit, err := s.textDocumentRename(glspCtx, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
			Position:     protocol.Position{Line: 0, Character: protocol.UInteger(strings.Index(template, "firstName") + 1)},
		},
		NewName: "givenName",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)

	require.Len(t, edit.Changes, 2)
	assert.Contains(t, edit.Changes, "file:///app/contact.ts")
	assert.Contains(t, edit.Changes, "file:///app/contact.html")
	for _, edits := range edit.Changes {
		require.Len(t, edits, 1)
		assert.Equal(t, "givenName", edits[0].NewText)
	}
}

func TestSemanticTokensEncoding(t *testing.T) {
	s, _, glspCtx := newTestServer(t)
	template := "<p>${firstName}</p>\n<em>${message}</em>"
	openTemplate(t, s, glspCtx, "file:///app/contact.html", template)

	tokens, err := s.textDocumentSemanticTokensFull(glspCtx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	require.Len(t, tokens.Data, 10)

	// First token: line 0, the `firstName` property.
	assert.Equal(t, protocol.UInteger(0), tokens.Data[0])
	assert.Equal(t, protocol.UInteger(strings.Index(template, "firstName")), tokens.Data[1])
	assert.Equal(t, protocol.UInteger(len("firstName")), tokens.Data[2])
	assert.Equal(t, protocol.UInteger(0), tokens.Data[3])

	// Second token: next line, delta-encoded from the first.
	assert.Equal(t, protocol.UInteger(1), tokens.Data[5])
	assert.Equal(t, protocol.UInteger(strings.Index("<em>${message}</em>", "message")), tokens.Data[6])
	assert.Equal(t, protocol.UInteger(len("message")), tokens.Data[7])
}

func TestFormatting(t *testing.T) {
	s, _, glspCtx := newTestServer(t)
	template := "<div>\n\t<p>${firstName}</p>\n</div>\n"
	openTemplate(t, s, glspCtx, "file:///app/contact.html", template)

	edits, err := s.textDocumentFormatting(glspCtx, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///app/contact.html"},
		Options: protocol.FormattingOptions{
			protocol.FormattingOptionTabSize:      float64(2),
			protocol.FormattingOptionInsertSpaces: true,
		},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "  ", edits[0].NewText)
	assert.Equal(t, protocol.UInteger(1), edits[0].Range.Start.Line)
}

func TestWatchedCompanionChangeRefreshesTemplates(t *testing.T) {
	s, sent, glspCtx := newTestServer(t)
	openTemplate(t, s, glspCtx, "file:///app/contact.html", `<p>${nickname}</p>`)

	// nickname is unknown until the companion gains it.
	first := (*sent)[0].params.(protocol.PublishDiagnosticsParams)
	require.Len(t, first.Diagnostics, 1)

	updated := strings.Replace(contactClass, "firstName: string = '';",
		"firstName: string = '';\n  nickname: string = '';", 1)
	require.NoError(t, afero.WriteFile(s.fs, "/app/contact.ts", []byte(updated), 0o644))

	err := s.workspaceDidChangeWatchedFiles(glspCtx, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{
			{URI: "file:///app/contact.ts", Type: protocol.FileChangeTypeChanged},
		},
	})
	require.NoError(t, err)

	last := (*sent)[len(*sent)-1].params.(protocol.PublishDiagnosticsParams)
	assert.Equal(t, "file:///app/contact.html", last.URI)
	assert.Empty(t, last.Diagnostics)
}
