// Package vdoc synthesizes the typed virtual document for one template and
// owns the bidirectional offset mapping between the two.
//
// Layout of a synthesized document:
//
//	import { Contact } from './contact';
//	declare const __vm: Contact;
//	const __vbExpr0000 = (__vm.firstName);
//	const __vbExpr0001 = (__vm.fullName());
//
// Everything before the first const statement is scaffolding; the text
// between the parentheses of each statement is the (possibly rewritten)
// template expression. Mapping records tie each statement back to its
// expression span in the template.
package vdoc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viewbind/viewbind/pkg/markup"
	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/position"
)

// Receiver stands in for the companion instance inside the virtual
// document.
const Receiver = "__vm"

const receiverPrefix = Receiver + "."

// ReceiverPrefixLen is the offset shift introduced in front of a rewritten
// expression root.
const ReceiverPrefixLen = len(receiverPrefix)

const placeholderPrefix = "__vbExpr"

const blockSuffix = ");"

// BlockPrefixLen is the fixed distance from a statement's start to its
// value text. The placeholder index is zero-padded so every statement
// shares it.
const BlockPrefixLen = len("const " + placeholderPrefix + "0000 = (")

func blockPrefix(i int) string {
	// Indexes wrap at the pad width; a template with ten thousand
	// expressions gets duplicate placeholder names rather than a broken
	// offset invariant.
	return fmt.Sprintf("const %s%04d = (", placeholderPrefix, i%10000)
}

// IsSyntheticName reports whether an identifier exists only in the virtual
// document and must never surface in user-visible results.
func IsSyntheticName(name string) bool {
	return name == Receiver || strings.HasPrefix(name, placeholderPrefix)
}

// Document is the synthesized source for one template. Version counts
// regenerations, not template edits.
type Document struct {
	Content string
	Version int
}

// Record maps one expression span to its statement in the virtual
// document. Template is the span's byte range in the template, Block the
// whole statement, Value just the rewritten expression text.
type Record struct {
	Template                position.Range
	Block                   position.Range
	Value                   position.Range
	RewroteImplicitReceiver bool
	Kind                    markup.SpanKind
}

// Result is the output of one synthesis pass. Records are ordered by
// template start offset, matching the span order.
type Result struct {
	Content string
	Records []Record
}

// Synthesize produces the virtual document for the given spans and member
// table. It is a pure function: identical inputs yield byte-identical
// content and identical records.
func Synthesize(spans []markup.Span, info *member.Info) *Result {
	names := make(map[string]bool, len(info.Members))
	for _, m := range info.Members {
		names[m.Name] = true
	}

	var b strings.Builder
	b.WriteString("import { ")
	b.WriteString(info.ClassName)
	b.WriteString(" } from '")
	b.WriteString(ImportSpecifier(info.SourcePath))
	b.WriteString("';\n")
	b.WriteString("declare const ")
	b.WriteString(Receiver)
	b.WriteString(": ")
	b.WriteString(info.ClassName)
	b.WriteString(";\n")

	records := make([]Record, 0, len(spans))
	for i, span := range spans {
		value, rewrote := rewriteExpression(span.Text, names)

		blockStart := b.Len()
		b.WriteString(blockPrefix(i))
		b.WriteString(value)
		b.WriteString(blockSuffix)
		b.WriteString("\n")

		valueStart := blockStart + BlockPrefixLen
		records = append(records, Record{
			Template:                span.Range,
			Block:                   position.NewRange(blockStart, blockStart+BlockPrefixLen+len(value)+len(blockSuffix)),
			Value:                   position.NewRange(valueStart, valueStart+len(value)),
			RewroteImplicitReceiver: rewrote,
			Kind:                    span.Kind,
		})
	}

	return &Result{Content: b.String(), Records: records}
}

// ImportSpecifier derives the module specifier for a companion source
// path, e.g. `/src/contact.ts` becomes `./contact`.
func ImportSpecifier(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return "./" + strings.TrimSuffix(base, filepath.Ext(base))
}
