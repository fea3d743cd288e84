package vdoc

import "strings"

// literal keywords that never rewrite, even when a member shares the name.
var rewriteKeywords = map[string]bool{
	"this":      true,
	"true":      true,
	"false":     true,
	"null":      true,
	"undefined": true,
}

// rewriteExpression qualifies implicit member references with the
// receiver. A single lexical left-to-right pass over the expression: every
// word-boundary identifier that is not preceded by a dot, is not a literal
// keyword, and exactly matches a member name becomes `__vm.<name>`. Only
// chain roots rewrite; the `.member` tail of a chain is preceded by a dot
// and stays untouched.
//
// The pass is deliberately not scope-aware: a loop-local that shadows a
// member name rewrites anyway. Fixing that needs real scope analysis of
// the surrounding markup constructs.
//
// An empty (or blank) expression synthesizes the bare receiver so the
// position still lands in typed context.
func rewriteExpression(expr string, members map[string]bool) (string, bool) {
	if strings.TrimSpace(expr) == "" {
		return Receiver, true
	}

	var out strings.Builder
	out.Grow(len(expr) + ReceiverPrefixLen)
	rewrote := false

	for i := 0; i < len(expr); {
		c := expr[i]
		if !isIdentStart(c) || (i > 0 && isIdentChar(expr[i-1])) {
			// Not a word boundary, e.g. the `px` in `1px`.
			out.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		for j < len(expr) && isIdentChar(expr[j]) {
			j++
		}
		token := expr[i:j]

		precededByDot := i > 0 && expr[i-1] == '.'
		if !precededByDot && !rewriteKeywords[token] && members[token] {
			out.WriteString(receiverPrefix)
			rewrote = true
		}
		out.WriteString(token)
		i = j
	}

	return out.String(), rewrote
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
