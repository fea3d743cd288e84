// Package oracle defines the narrow interface to the type-analysis engine
// behind the virtual documents, plus a self-contained reference
// implementation that answers from the resolved member tables.
//
// Everything the rest of the server knows about analysis results is
// expressed in the closed kind set below; decoding an engine's own
// classification enumeration happens once, inside an Oracle
// implementation.
package oracle

import (
	"context"

	"github.com/viewbind/viewbind/pkg/position"
)

// SymbolKind is the closed classification variant set.
type SymbolKind int

const (
	SymbolOther SymbolKind = iota
	SymbolProperty
	SymbolMethod
	SymbolVariable
	SymbolFunction
	SymbolClass
	SymbolKeyword
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolProperty:
		return "property"
	case SymbolMethod:
		return "method"
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolKeyword:
		return "keyword"
	default:
		return "other"
	}
}

type Completion struct {
	Label  string
	Kind   SymbolKind
	Detail string
}

// QuickInfo is hover content plus the highlight span in the queried
// file's own coordinates.
type QuickInfo struct {
	Contents []string
	Span     position.Range
}

// Location is a span inside some file, in that file's own coordinates.
type Location struct {
	File string
	Span position.Range
}

type Classification struct {
	Span position.Range
	Kind SymbolKind
}

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

type Diagnostic struct {
	Span     position.Range
	Message  string
	Severity Severity
}

// Oracle is the type-analysis engine. Every query names the file and the
// version the caller believes is current; implementations answer against
// exactly that version or return empty results, never stale ones.
type Oracle interface {
	GetCompletionsAt(ctx context.Context, file string, version, offset int) ([]Completion, error)
	GetQuickInfoAt(ctx context.Context, file string, version, offset int) (*QuickInfo, error)
	GetDefinitionAt(ctx context.Context, file string, version, offset int) ([]Location, error)
	FindRenameLocationsAt(ctx context.Context, file string, version, offset int) ([]Location, error)
	FindReferencesAt(ctx context.Context, file string, version, offset int) ([]Location, error)
	GetSemanticClassificationsAt(ctx context.Context, file string, version int) ([]Classification, error)
	GetDiagnosticsFor(ctx context.Context, file string, version int) ([]Diagnostic, error)
}

// Corpus is the oracle's window onto the session: the set of live virtual
// documents and the companion tables behind them.
type Corpus interface {
	// VirtualDocument returns the content and current version of a virtual
	// document, or ok == false if the file is not a live virtual document.
	VirtualDocument(file string) (content string, version int, ok bool)
	// VirtualDocumentFiles lists the live virtual document file names.
	VirtualDocumentFiles() []string
	// CompanionFor returns the member table backing a virtual document.
	CompanionFor(file string) (CompanionInfo, bool)
}

// CompanionInfo is the slice of the member table the oracle needs.
// Placeholder marks a table synthesized for a companion that could not be
// read or parsed; member-miss checks are suppressed against it.
type CompanionInfo struct {
	ClassName   string
	SourcePath  string
	Members     []CompanionMember
	Placeholder bool
}

type CompanionMember struct {
	Name   string
	Kind   SymbolKind
	Detail string
	Offset int
}

func (c CompanionInfo) lookup(name string) (CompanionMember, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return CompanionMember{}, false
}
