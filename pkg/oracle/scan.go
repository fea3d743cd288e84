package oracle

import (
	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/vdoc"
)

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// identAt expands the identifier token around (or immediately before) the
// offset. ok is false when the offset touches no identifier.
func identAt(content string, offset int) (string, position.Range, bool) {
	if offset < 0 || offset > len(content) {
		return "", position.Range{}, false
	}

	start := offset
	for start > 0 && isIdentChar(content[start-1]) {
		start--
	}
	end := offset
	for end < len(content) && isIdentChar(content[end]) {
		end++
	}
	if start == end {
		return "", position.Range{}, false
	}
	if !isIdentStart(content[start]) {
		return "", position.Range{}, false
	}
	return content[start:end], position.NewRange(start, end), true
}

// receiverMemberAt returns the member name under the offset when the
// identifier there is a `__vm.<name>` access.
func receiverMemberAt(content string, offset int) (string, position.Range, bool) {
	name, r, ok := identAt(content, offset)
	if !ok || name == vdoc.Receiver {
		return "", position.Range{}, false
	}
	if !afterReceiverDot(content, r.Start) {
		return "", position.Range{}, false
	}
	return name, r, true
}

// afterReceiverDot reports whether the position directly follows `__vm.`.
func afterReceiverDot(content string, pos int) bool {
	if pos < 1 || content[pos-1] != '.' {
		return false
	}
	recv, rr, ok := identAt(content, pos-1)
	return ok && recv == vdoc.Receiver && rr.End == pos-1
}

type identToken struct {
	Name          string
	Range         position.Range
	AfterReceiver bool
	PrecededByDot bool
}

// scanIdentifiers yields every identifier token in the content outside
// string literals, in order, noting which ones are receiver member
// accesses and which are property tails.
func scanIdentifiers(content string) []identToken {
	var tokens []identToken

	for i := 0; i < len(content); {
		c := content[i]
		if c == '\'' || c == '"' || c == '`' {
			i = skipString(content, i)
			continue
		}
		if !isIdentStart(c) || (i > 0 && isIdentChar(content[i-1])) {
			i++
			continue
		}
		j := i + 1
		for j < len(content) && isIdentChar(content[j]) {
			j++
		}
		tokens = append(tokens, identToken{
			Name:          content[i:j],
			Range:         position.NewRange(i, j),
			AfterReceiver: afterReceiverDot(content, i),
			PrecededByDot: i > 0 && content[i-1] == '.',
		})
		i = j
	}

	return tokens
}

// skipString advances past a quoted literal starting at i, honoring
// backslash escapes. Unterminated literals run to the end of content.
func skipString(content string, i int) int {
	quote := content[i]
	for j := i + 1; j < len(content); j++ {
		switch content[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(content)
}

// receiverAccesses returns the name-span of every `__vm.<name>` occurrence
// of the given member in content.
func receiverAccesses(content, name string) []position.Range {
	var spans []position.Range
	for _, tok := range scanIdentifiers(content) {
		if tok.AfterReceiver && tok.Name == name {
			spans = append(spans, tok.Range)
		}
	}
	return spans
}
