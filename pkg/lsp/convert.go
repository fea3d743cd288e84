package lsp

import (
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/viewbind/viewbind/pkg/bridge"
	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/position"
)

// tokenTypes is the semantic token legend, indexed by the values
// tokenTypeIndex returns.
var tokenTypes = []string{"property", "method", "variable", "function", "class", "keyword"}

func tokenTypeIndex(kind oracle.SymbolKind) (int, bool) {
	switch kind {
	case oracle.SymbolProperty:
		return 0, true
	case oracle.SymbolMethod:
		return 1, true
	case oracle.SymbolVariable:
		return 2, true
	case oracle.SymbolFunction:
		return 3, true
	case oracle.SymbolClass:
		return 4, true
	case oracle.SymbolKeyword:
		return 5, true
	default:
		return 0, false
	}
}

func completionKind(kind oracle.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case oracle.SymbolProperty:
		return protocol.CompletionItemKindProperty
	case oracle.SymbolMethod:
		return protocol.CompletionItemKindMethod
	case oracle.SymbolVariable:
		return protocol.CompletionItemKindVariable
	case oracle.SymbolFunction:
		return protocol.CompletionItemKindFunction
	case oracle.SymbolClass:
		return protocol.CompletionItemKindClass
	case oracle.SymbolKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

func diagnosticSeverity(sev oracle.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case oracle.SeverityError:
		return protocol.DiagnosticSeverityError
	case oracle.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case oracle.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

// toProtocolRange converts a byte range into line/character coordinates
// against the content it indexes into.
func toProtocolRange(content string, r position.Range) protocol.Range {
	start, end := position.PlacesOf(content, r)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(start.Line), Character: protocol.UInteger(start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(end.Line), Character: protocol.UInteger(end.Character)},
	}
}

func fromProtocolPosition(content string, p protocol.Position) int {
	return position.OffsetOf(content, position.Place{Line: int(p.Line), Character: int(p.Character)})
}

func fromProtocolRange(content string, r protocol.Range) position.Range {
	return position.NewRange(
		fromProtocolPosition(content, r.Start),
		fromProtocolPosition(content, r.End),
	)
}

// workspaceEdit groups per-file text edits into an LSP workspace edit,
// converting each file's byte ranges against that file's own content.
func (s *Server) workspaceEdit(edits []bridge.TextEdit) *protocol.WorkspaceEdit {
	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, e := range edits {
		content, ok := s.contentFor(e.URI)
		if !ok {
			continue
		}
		uri := protocol.DocumentUri(pathToURI(e.URI))
		changes[uri] = append(changes[uri], protocol.TextEdit{
			Range:   toProtocolRange(content, e.Range),
			NewText: e.NewText,
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}
}

// encodeTokens packs semantic tokens into the LSP delta-encoded integer
// stream. Tokens crossing a line break are clamped to their first line;
// the protocol cannot express multi-line tokens without a capability we
// do not advertise.
func encodeTokens(content string, tokens []bridge.Token) []protocol.UInteger {
	type placed struct {
		line, char, length int
		typeIndex          int
	}

	var out []placed
	for _, tok := range tokens {
		idx, ok := tokenTypeIndex(tok.Kind)
		if !ok {
			continue
		}
		text := content[tok.Range.Start:tok.Range.End]
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		length := 0
		for _, r := range text {
			length++
			if r > 0xFFFF {
				length++
			}
		}
		if length == 0 {
			continue
		}
		p := position.PlaceOf(content, tok.Range.Start)
		out = append(out, placed{line: p.Line, char: p.Character, length: length, typeIndex: idx})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].line != out[j].line {
			return out[i].line < out[j].line
		}
		return out[i].char < out[j].char
	})

	data := make([]protocol.UInteger, 0, len(out)*5)
	prevLine, prevChar := 0, 0
	for _, t := range out {
		deltaLine := t.line - prevLine
		deltaChar := t.char
		if deltaLine == 0 {
			deltaChar = t.char - prevChar
		}
		data = append(data,
			protocol.UInteger(deltaLine),
			protocol.UInteger(deltaChar),
			protocol.UInteger(t.length),
			protocol.UInteger(t.typeIndex),
			0,
		)
		prevLine, prevChar = t.line, t.char
	}
	return data
}
