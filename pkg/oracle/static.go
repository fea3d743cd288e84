package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

// expressionKeywords are the literals left untouched by the receiver
// rewrite; they classify as keywords and complete outside member context.
var expressionKeywords = []string{"this", "true", "false", "null", "undefined"}

// Static answers oracle queries from the corpus's member tables alone,
// without an external analysis engine. It is exact for the member-access
// surface the virtual documents expose and silent about everything else.
type Static struct {
	corpus Corpus
}

var _ Oracle = (*Static)(nil)

func NewStatic(corpus Corpus) *Static {
	return &Static{corpus: corpus}
}

// doc fetches a virtual document and its companion table, enforcing the
// version handshake: a caller asking about a version other than the live
// one gets nothing.
func (o *Static) doc(ctx context.Context, file string, version int) (string, CompanionInfo, bool) {
	content, live, ok := o.corpus.VirtualDocument(file)
	if !ok {
		return "", CompanionInfo{}, false
	}
	if live != version {
		zerolog.Ctx(ctx).Debug().
			Str("file", file).
			Int("asked", version).
			Int("live", live).
			Msg("stale oracle query dropped")
		return "", CompanionInfo{}, false
	}
	info, ok := o.corpus.CompanionFor(file)
	if !ok {
		return "", CompanionInfo{}, false
	}
	return content, info, true
}

func (o *Static) GetCompletionsAt(ctx context.Context, file string, version, offset int) ([]Completion, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}

	if o.memberContextAt(content, offset) {
		items := make([]Completion, 0, len(info.Members))
		for _, m := range info.Members {
			items = append(items, Completion{Label: m.Name, Kind: m.Kind, Detail: m.Detail})
		}
		return items, nil
	}

	items := make([]Completion, 0, len(expressionKeywords)+1)
	items = append(items, Completion{Label: vdoc.Receiver, Kind: SymbolVariable, Detail: info.ClassName})
	for _, kw := range expressionKeywords {
		items = append(items, Completion{Label: kw, Kind: SymbolKeyword})
	}
	return items, nil
}

// memberContextAt reports whether a completion at the offset should offer
// members: the cursor follows `__vm.`, possibly with a partial member name
// already typed, or sits on the receiver identifier itself.
func (o *Static) memberContextAt(content string, offset int) bool {
	if name, r, ok := identAt(content, offset); ok {
		if name == vdoc.Receiver {
			return true
		}
		return afterReceiverDot(content, r.Start)
	}
	return afterReceiverDot(content, offset)
}

func (o *Static) GetQuickInfoAt(ctx context.Context, file string, version, offset int) (*QuickInfo, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}

	name, r, ok := identAt(content, offset)
	if !ok {
		return nil, nil
	}
	if name == vdoc.Receiver {
		return &QuickInfo{
			Contents: []string{fmt.Sprintf("const %s: %s", vdoc.Receiver, info.ClassName)},
			Span:     r,
		}, nil
	}
	if !afterReceiverDot(content, r.Start) {
		return nil, nil
	}
	m, ok := info.lookup(name)
	if !ok {
		return nil, nil
	}
	return &QuickInfo{Contents: []string{memberSignature(info.ClassName, m)}, Span: r}, nil
}

// memberSignature renders the hover line for a member, in the
// "(property) Contact.firstName: string" shape.
func memberSignature(className string, m CompanionMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s) %s.%s", m.Kind, className, m.Name)
	if m.Detail != "" {
		if m.Kind == SymbolMethod {
			b.WriteString(m.Detail)
		} else {
			b.WriteString(": ")
			b.WriteString(m.Detail)
		}
	}
	return b.String()
}

func (o *Static) GetDefinitionAt(ctx context.Context, file string, version, offset int) ([]Location, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}
	name, _, ok := receiverMemberAt(content, offset)
	if !ok {
		return nil, nil
	}
	m, ok := info.lookup(name)
	if !ok {
		return nil, nil
	}
	return []Location{declarationLocation(info, m)}, nil
}

func declarationLocation(info CompanionInfo, m CompanionMember) Location {
	return Location{
		File: info.SourcePath,
		Span: position.NewRange(m.Offset, m.Offset+len(m.Name)),
	}
}

func (o *Static) FindRenameLocationsAt(ctx context.Context, file string, version, offset int) ([]Location, error) {
	return o.occurrences(ctx, file, version, offset)
}

func (o *Static) FindReferencesAt(ctx context.Context, file string, version, offset int) ([]Location, error) {
	return o.occurrences(ctx, file, version, offset)
}

// occurrences collects every location of the member under the cursor: its
// declaration in the companion source, then each `__vm.<name>` access in
// every virtual document that shares the same companion.
func (o *Static) occurrences(ctx context.Context, file string, version, offset int) ([]Location, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}
	name, _, ok := receiverMemberAt(content, offset)
	if !ok {
		return nil, nil
	}
	m, ok := info.lookup(name)
	if !ok {
		return nil, nil
	}

	locations := []Location{declarationLocation(info, m)}
	for _, other := range o.corpus.VirtualDocumentFiles() {
		otherInfo, ok := o.corpus.CompanionFor(other)
		if !ok || otherInfo.SourcePath != info.SourcePath {
			continue
		}
		otherContent, _, ok := o.corpus.VirtualDocument(other)
		if !ok {
			continue
		}
		for _, span := range receiverAccesses(otherContent, name) {
			locations = append(locations, Location{File: other, Span: span})
		}
	}
	return locations, nil
}

func (o *Static) GetSemanticClassificationsAt(ctx context.Context, file string, version int) ([]Classification, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}

	var out []Classification
	for _, tok := range scanIdentifiers(content) {
		switch {
		case tok.AfterReceiver:
			kind := SymbolOther
			if m, ok := info.lookup(tok.Name); ok {
				kind = m.Kind
			}
			out = append(out, Classification{Span: tok.Range, Kind: kind})
		case isExpressionKeyword(tok.Name):
			out = append(out, Classification{Span: tok.Range, Kind: SymbolKeyword})
		}
	}
	return out, nil
}

func isExpressionKeyword(name string) bool {
	for _, kw := range expressionKeywords {
		if name == kw {
			return true
		}
	}
	return false
}

func (o *Static) GetDiagnosticsFor(ctx context.Context, file string, version int) ([]Diagnostic, error) {
	content, info, ok := o.doc(ctx, file, version)
	if !ok {
		return nil, nil
	}

	if info.Placeholder {
		return []Diagnostic{{
			Span:     firstLineRange(content),
			Message:  fmt.Sprintf("Cannot find module '%s'.", vdoc.ImportSpecifier(info.SourcePath)),
			Severity: SeverityError,
		}}, nil
	}

	stmtStart := strings.Index(content, "\nconst ")
	if stmtStart < 0 {
		stmtStart = len(content)
	}

	var out []Diagnostic
	for _, tok := range scanIdentifiers(content) {
		switch {
		case tok.AfterReceiver:
			if _, ok := info.lookup(tok.Name); ok {
				continue
			}
			out = append(out, Diagnostic{
				Span:     tok.Range,
				Message:  fmt.Sprintf("Property '%s' does not exist on type '%s'.", tok.Name, info.ClassName),
				Severity: SeverityError,
			})
		case unresolvableRoot(tok, stmtStart):
			out = append(out, Diagnostic{
				Span:     tok.Range,
				Message:  fmt.Sprintf("Cannot find name '%s'.", tok.Name),
				Severity: SeverityError,
			})
		}
	}
	return out, nil
}

// unresolvableRoot reports whether a token is a bare expression root that
// resolves to nothing: not a member access (those were rewritten onto the
// receiver before this document existed), not a property tail, not a
// keyword, declaration syntax, synthetic name, or ambient host global.
func unresolvableRoot(tok identToken, stmtStart int) bool {
	if tok.Range.Start < stmtStart || tok.PrecededByDot {
		return false
	}
	if isExpressionKeyword(tok.Name) || jsKeywords[tok.Name] {
		return false
	}
	if vdoc.IsSyntheticName(tok.Name) || ambientGlobals[tok.Name] {
		return false
	}
	return true
}

// jsKeywords covers the operator and declaration keywords that may appear
// inside an expression statement.
var jsKeywords = map[string]bool{
	"const": true, "let": true, "var": true,
	"new": true, "typeof": true, "instanceof": true,
	"in": true, "of": true, "void": true, "delete": true,
	"function": true, "return": true, "if": true, "else": true,
	"async": true, "await": true,
}

// ambientGlobals are host globals the reference oracle always resolves.
var ambientGlobals = map[string]bool{
	"Math": true, "JSON": true, "Date": true, "Object": true,
	"Array": true, "String": true, "Number": true, "Boolean": true,
	"RegExp": true, "Promise": true, "console": true,
	"window": true, "document": true,
	"parseInt": true, "parseFloat": true, "isNaN": true, "isFinite": true,
	"Infinity": true, "NaN": true,
}

func firstLineRange(content string) position.Range {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return position.NewRange(0, i)
	}
	return position.NewRange(0, len(content))
}
