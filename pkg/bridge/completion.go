package bridge

import (
	"context"
	"strings"

	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

// CompletionItem carries a ranked completion. SortText encodes the rank
// bucket: companion members sort before local identifiers, which sort
// before functions, classes and keywords.
type CompletionItem struct {
	Label    string
	Kind     oracle.SymbolKind
	Detail   string
	SortText string
}

const (
	rankMember  = "0_"
	rankLocal   = "1_"
	rankDefault = "2_"
)

// Completion answers a completion request at a template offset. When the
// cursor sits where a bare term is expected and the primary query found
// no companion members, a second query right after the receiver fills in
// the member list, so a half-typed `${mess}` still offers `message`.
func (b *Bridge) Completion(ctx context.Context, uri string, offset int) []CompletionItem {
	t, ok := b.resolve(ctx, uri, offset)
	if !ok {
		return nil
	}

	raw, err := b.oracle.GetCompletionsAt(ctx, t.file, t.version, t.offset)
	if err != nil {
		logOracleErr(ctx, "completion", t.file, err)
		return nil
	}

	if !hasMemberKind(raw) && b.bareTermAt(t, offset) {
		fallbackOffset := t.record.Value.Start
		if t.record.RewroteImplicitReceiver {
			fallbackOffset += vdoc.ReceiverPrefixLen
		}
		fallbackOffset = t.record.Value.Clamp(fallbackOffset)

		extra, err := b.oracle.GetCompletionsAt(ctx, t.file, t.version, fallbackOffset)
		if err != nil {
			logOracleErr(ctx, "completion-fallback", t.file, err)
		} else {
			raw = mergeMembers(raw, extra)
		}
	}

	items := make([]CompletionItem, 0, len(raw))
	for _, c := range raw {
		if vdoc.IsSyntheticName(c.Label) {
			continue
		}
		items = append(items, CompletionItem{
			Label:    c.Label,
			Kind:     c.Kind,
			Detail:   c.Detail,
			SortText: rankOf(c.Kind) + c.Label,
		})
	}
	return items
}

func rankOf(kind oracle.SymbolKind) string {
	switch kind {
	case oracle.SymbolProperty, oracle.SymbolMethod:
		return rankMember
	case oracle.SymbolVariable:
		return rankLocal
	default:
		return rankDefault
	}
}

func hasMemberKind(items []oracle.Completion) bool {
	for _, c := range items {
		if c.Kind == oracle.SymbolProperty || c.Kind == oracle.SymbolMethod {
			return true
		}
	}
	return false
}

// mergeMembers appends the member-kind results of the fallback query that
// the primary query did not already produce.
func mergeMembers(primary, fallback []oracle.Completion) []oracle.Completion {
	seen := make(map[string]bool, len(primary))
	for _, c := range primary {
		seen[c.Label] = true
	}
	for _, c := range fallback {
		if c.Kind != oracle.SymbolProperty && c.Kind != oracle.SymbolMethod {
			continue
		}
		if seen[c.Label] {
			continue
		}
		primary = append(primary, c)
		seen[c.Label] = true
	}
	return primary
}

// bareTermAt reports whether the template text before the cursor, inside
// the expression under it, expects a bare term: the expression start, or
// the position right after an operator or opening bracket. The partially
// typed identifier itself does not count.
func (b *Bridge) bareTermAt(t target, offset int) bool {
	expr := t.doc.Content[t.record.Template.Start:t.record.Template.End]
	rel := offset - t.record.Template.Start
	if rel < 0 {
		return false
	}
	if rel > len(expr) {
		rel = len(expr)
	}

	i := rel
	for i > 0 && isWordChar(expr[i-1]) {
		i--
	}
	before := strings.TrimRight(expr[:i], " \t\r\n")
	if before == "" {
		return true
	}
	return strings.ContainsRune("+-*/%<>=&|!?:;,([{", rune(before[len(before)-1]))
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
