package vdoc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewbind/viewbind/pkg/markup"
	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/position"
)

func infoWith(names ...string) *member.Info {
	info := &member.Info{ClassName: "Contact", SourcePath: "/src/contact.ts"}
	for _, n := range names {
		info.Members = append(info.Members, member.Member{Name: n, Kind: member.KindProperty})
	}
	return info
}

func valueText(res *Result, i int) string {
	r := res.Records[i]
	return res.Content[r.Value.Start:r.Value.End]
}

func TestSynthesizeScaffolding(t *testing.T) {
	res := Synthesize(nil, infoWith("user"))

	lines := strings.Split(res.Content, "\n")
	require.True(t, len(lines) >= 2)
	assert.Equal(t, "import { Contact } from './contact';", lines[0])
	assert.Equal(t, "declare const __vm: Contact;", lines[1])
	assert.Empty(t, res.Records)
}

func TestSynthesizeRewritesRootOnly(t *testing.T) {
	spans := []markup.Span{{
		Text:  "user.name",
		Kind:  markup.KindInterpolation,
		Range: position.NewRange(10, 19),
	}}

	res := Synthesize(spans, infoWith("user"))
	require.Len(t, res.Records, 1)

	assert.Equal(t, "__vm.user.name", valueText(res, 0))
	assert.True(t, res.Records[0].RewroteImplicitReceiver)
}

func TestSynthesizeAttributeBinding(t *testing.T) {
	spans := []markup.Span{{
		Text:  "count + 1",
		Kind:  markup.KindBinding,
		Range: position.NewRange(19, 28),
	}}

	res := Synthesize(spans, infoWith("count"))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "__vm.count + 1", valueText(res, 0))
}

func TestSynthesizeEmptyExpression(t *testing.T) {
	spans := []markup.Span{{
		Text:  "",
		Kind:  markup.KindInterpolation,
		Range: position.NewRange(8, 8),
	}}

	res := Synthesize(spans, infoWith("message"))
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, Receiver, valueText(res, 0))
	assert.True(t, rec.RewroteImplicitReceiver)

	// Both span boundaries forward-map to the end of the receiver.
	assert.Equal(t, rec.Value.End, rec.ForwardOffset(8))
	assert.Equal(t, rec.Value.End, rec.ForwardOffset(8))
}

func TestSynthesizeValueOffsetInvariant(t *testing.T) {
	spans := []markup.Span{
		{Text: "a", Kind: markup.KindInterpolation, Range: position.NewRange(3, 4)},
		{Text: "b + c", Kind: markup.KindBinding, Range: position.NewRange(20, 25)},
	}

	res := Synthesize(spans, infoWith("a", "b"))
	for i, rec := range res.Records {
		assert.Equal(t, rec.Block.Start+BlockPrefixLen, rec.Value.Start, "record %d", i)
		assert.True(t, rec.Value.End <= len(res.Content), "value range inside document")
		assert.True(t, rec.Block.End <= len(res.Content), "block range inside document")
	}
}

func TestSynthesizeIdempotent(t *testing.T) {
	spans := markup.Extract(context.Background(), `<p>${user.name}</p><input value.bind="count + 1">`)
	info := infoWith("user", "count")

	first := Synthesize(spans, info)
	second := Synthesize(spans, info)

	assert.Equal(t, first.Content, second.Content, "byte-identical content")
	assert.Equal(t, first.Records, second.Records, "identical records")
}

func TestSynthesizeRecordsSortedNonOverlapping(t *testing.T) {
	content := `<p>${a}${b}</p><input if.bind="c" value.bind="d">`
	spans := markup.Extract(context.Background(), content)
	res := Synthesize(spans, infoWith("a", "b", "c", "d"))

	for i := 1; i < len(res.Records); i++ {
		prev, cur := res.Records[i-1], res.Records[i]
		assert.LessOrEqual(t, prev.Template.Start, cur.Template.Start)
		assert.LessOrEqual(t, prev.Template.End, cur.Template.Start, "template ranges must not overlap")
		assert.LessOrEqual(t, prev.Value.End, cur.Value.Start, "virtual ranges must not overlap")
	}
}

func TestRewriteExpression(t *testing.T) {
	members := map[string]bool{"user": true, "count": true, "items": true, "true": false}

	tests := []struct {
		name    string
		expr    string
		want    string
		rewrote bool
	}{
		{name: "bare member", expr: "count", want: "__vm.count", rewrote: true},
		{name: "chain root only", expr: "user.name", want: "__vm.user.name", rewrote: true},
		{name: "binary expression", expr: "count + 1", want: "__vm.count + 1", rewrote: true},
		{name: "non-member untouched", expr: "local + 2", want: "local + 2", rewrote: false},
		{name: "this never rewrites", expr: "this.count", want: "this.count", rewrote: false},
		{name: "keyword literal", expr: "true", want: "true", rewrote: false},
		{name: "member after keyword", expr: "true && count", want: "true && __vm.count", rewrote: true},
		{name: "call on member", expr: "items.filter(x => x)", want: "__vm.items.filter(x => x)", rewrote: true},
		{name: "empty synthesizes receiver", expr: "", want: "__vm", rewrote: true},
		{name: "blank synthesizes receiver", expr: "   ", want: "__vm", rewrote: true},
		{name: "digit prefix is no boundary", expr: "1count", want: "1count", rewrote: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rewrote := rewriteExpression(tt.expr, members)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rewrote, rewrote)
		})
	}
}

func TestIsSyntheticName(t *testing.T) {
	assert.True(t, IsSyntheticName("__vm"))
	assert.True(t, IsSyntheticName("__vbExpr0003"))
	assert.False(t, IsSyntheticName("user"))
}

func TestImportSpecifier(t *testing.T) {
	assert.Equal(t, "./contact", ImportSpecifier("/deep/dir/contact.ts"))
	assert.Equal(t, "./app", ImportSpecifier("app.ts"))
}
