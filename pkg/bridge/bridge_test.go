package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/position"
	"github.com/viewbind/viewbind/pkg/session"
)

const contactClass = `export class Contact {
  firstName: string = '';
  message: string = '';

  fullName(): string {
    return this.firstName;
  }
}
`

const contactTemplate = `<p>${firstName}</p><input value.bind="message">`

func newFixture(t *testing.T) (*Bridge, *session.Session, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/contact.ts", []byte(contactClass), 0o644))

	s := session.New(member.NewResolver(fs), session.NewSuffixBinding(".html", ".ts"))
	return New(s, oracle.NewStatic(s)), s, fs
}

func openContact(t *testing.T, s *session.Session) {
	t.Helper()
	ctx := context.Background()
	doc := s.Open(ctx, "/app/contact.html", contactTemplate, 1)
	require.Equal(t, session.StateBoundFresh, doc.State)
}

func TestCompletionInsideInterpolation(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	// Cursor in the middle of `firstName`, which was rewritten to a
	// member access, so the primary query already sees member context.
	offset := strings.Index(contactTemplate, "firstName") + 4
	items := b.Completion(ctx, "/app/contact.html", offset)
	require.NotEmpty(t, items)

	labels := map[string]string{}
	for _, it := range items {
		labels[it.Label] = it.SortText
		assert.False(t, strings.HasPrefix(it.Label, "__v"), "synthetic name leaked: %s", it.Label)
	}
	require.Contains(t, labels, "firstName")
	require.Contains(t, labels, "message")
	assert.True(t, strings.HasPrefix(labels["firstName"], "0_"))
}

func TestCompletionOutsideExpressions(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	items := b.Completion(ctx, "/app/contact.html", strings.Index(contactTemplate, "<input"))
	assert.Empty(t, items)
}

// scriptedOracle returns canned completions per offset, standing in for
// an engine whose primary answer misses the member list.
type scriptedOracle struct {
	oracle.Oracle
	byOffset map[int][]oracle.Completion
}

func (o *scriptedOracle) GetCompletionsAt(_ context.Context, _ string, _, offset int) ([]oracle.Completion, error) {
	return o.byOffset[offset], nil
}

func TestCompletionBareTermFallback(t *testing.T) {
	ctx := context.Background()
	_, s, _ := newFixture(t)
	openContact(t, s)

	doc, ok := s.Document(ctx, "/app/contact.html")
	require.True(t, ok)

	// Query in the middle of `message`, inside the attribute binding.
	offset := strings.Index(contactTemplate, "message") + 3
	idx := 1
	rec := doc.Records[idx]
	require.True(t, rec.Template.Contains(offset))

	primary := rec.ForwardOffset(offset)
	fallback := rec.Value.Start
	if rec.RewroteImplicitReceiver {
		fallback += 5
	}

	scripted := &scriptedOracle{byOffset: map[int][]oracle.Completion{
		primary: {
			{Label: "undefined", Kind: oracle.SymbolKeyword},
			{Label: "__vm", Kind: oracle.SymbolVariable},
		},
		fallback: {
			{Label: "message", Kind: oracle.SymbolProperty, Detail: "string"},
			{Label: "fullName", Kind: oracle.SymbolMethod},
			{Label: "window", Kind: oracle.SymbolVariable},
		},
	}}
	b := New(s, scripted)

	items := b.Completion(ctx, "/app/contact.html", offset)
	require.NotEmpty(t, items)

	sortTexts := map[string]string{}
	for _, it := range items {
		sortTexts[it.Label] = it.SortText
	}
	// Members merged from the fallback query, synthetic receiver dropped,
	// non-member fallback results excluded.
	require.Contains(t, sortTexts, "message")
	require.Contains(t, sortTexts, "fullName")
	assert.NotContains(t, sortTexts, "__vm")
	assert.NotContains(t, sortTexts, "window")
	assert.Less(t, sortTexts["message"], sortTexts["undefined"])
}

func TestHover(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	offset := strings.Index(contactTemplate, "firstName") + 2
	h := b.Hover(ctx, "/app/contact.html", offset)
	require.NotNil(t, h)
	require.Len(t, h.Contents, 1)
	assert.Equal(t, "(property) Contact.firstName: string", h.Contents[0])

	require.NotNil(t, h.Range)
	start := strings.Index(contactTemplate, "firstName")
	assert.Equal(t, position.NewRange(start, start+len("firstName")), *h.Range)

	assert.Nil(t, b.Hover(ctx, "/app/contact.html", 0))
}

func TestDefinition(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	offset := strings.Index(contactTemplate, "message") + 1
	locs := b.Definition(ctx, "/app/contact.html", offset)
	require.Len(t, locs, 1)
	assert.Equal(t, "/app/contact.ts", locs[0].URI)

	declStart := strings.Index(contactClass, "message")
	assert.Equal(t, position.NewRange(declStart, declStart+len("message")), locs[0].Range)
}

func TestRenameAcrossCompanionAndTemplates(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	// A second open template binds a different companion path, so it must
	// stay out of this rename even though the member names collide.
	s.Open(ctx, "/app/contact-card.html", `<h1>${firstName}</h1>`, 1)

	offset := strings.Index(contactTemplate, "firstName") + 1
	edits := b.Rename(ctx, "/app/contact.html", offset, "givenName")

	// One edit in the companion declaration, one in the open template.
	// The card template resolves a different companion path, so it is not
	// part of this rename.
	require.Len(t, edits, 2)
	byURI := map[string]TextEdit{}
	for _, e := range edits {
		assert.Equal(t, "givenName", e.NewText)
		byURI[e.URI] = e
	}

	decl := byURI["/app/contact.ts"]
	declStart := strings.Index(contactClass, "firstName")
	assert.Equal(t, position.NewRange(declStart, declStart+len("firstName")), decl.Range)

	tmpl := byURI["/app/contact.html"]
	tmplStart := strings.Index(contactTemplate, "firstName")
	assert.Equal(t, position.NewRange(tmplStart, tmplStart+len("firstName")), tmpl.Range)
}

func TestRenameThreeLocations(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	// Two references to the member across the open template plus its
	// declaration in the companion class.
	twice := `<p>${firstName}</p><em title.bind="firstName"></em>`
	_, err := s.Change(ctx, "/app/contact.html", twice, 2)
	require.NoError(t, err)

	offset := strings.Index(twice, "firstName") + 1
	edits := b.Rename(ctx, "/app/contact.html", offset, "givenName")

	// Declaration plus both template references, all in non-virtual
	// coordinates.
	require.Len(t, edits, 3)
	var inTemplate int
	for _, e := range edits {
		assert.NotContains(t, e.URI, session.VirtualSuffix)
		if e.URI == "/app/contact.html" {
			inTemplate++
			assert.Equal(t, "firstName", twice[e.Range.Start:e.Range.End])
		}
	}
	assert.Equal(t, 2, inTemplate)
}

func TestPrepareRename(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	offset := strings.Index(contactTemplate, "firstName") + 3
	r, ok := b.PrepareRename(ctx, "/app/contact.html", offset)
	require.True(t, ok)
	start := strings.Index(contactTemplate, "firstName")
	assert.Equal(t, position.NewRange(start, start+len("firstName")), r)

	_, ok = b.PrepareRename(ctx, "/app/contact.html", 0)
	assert.False(t, ok)
}

func TestReferences(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	offset := strings.Index(contactTemplate, "firstName") + 1
	refs := b.References(ctx, "/app/contact.html", offset)
	require.Len(t, refs, 2)
	for _, ref := range refs {
		assert.NotContains(t, ref.URI, session.VirtualSuffix)
	}
}

func TestSemanticTokens(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	tokens := b.SemanticTokens(ctx, "/app/contact.html")
	require.Len(t, tokens, 2)

	assert.Equal(t, oracle.SymbolProperty, tokens[0].Kind)
	assert.Equal(t, "firstName", contactTemplate[tokens[0].Range.Start:tokens[0].Range.End])
	assert.Equal(t, "message", contactTemplate[tokens[1].Range.Start:tokens[1].Range.End])
	assert.True(t, tokens[0].Range.Start < tokens[1].Range.Start)
}

func TestDiagnosticsUnknownMember(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)

	tmpl := `<p>${firstName} ${bogus}</p>`
	s.Open(ctx, "/app/contact.html", tmpl, 1)

	diags := b.Diagnostics(ctx, "/app/contact.html")
	require.Len(t, diags, 1)
	assert.Equal(t, "Cannot find name 'bogus'.", diags[0].Message)
	assert.Equal(t, oracle.SeverityError, diags[0].Severity)
	assert.Equal(t, "bogus", tmpl[diags[0].Range.Start:diags[0].Range.End])
}

func TestDiagnosticsCleanTemplate(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)
	openContact(t, s)

	assert.Empty(t, b.Diagnostics(ctx, "/app/contact.html"))
}

func TestDiagnosticsMissingCompanionPinnedAtStart(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)

	s.Open(ctx, "/app/ghost.html", `<p>${value}</p>`, 1)
	diags := b.Diagnostics(ctx, "/app/ghost.html")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Cannot find module")
	assert.Equal(t, position.NewRange(0, 0), diags[0].Range)
}

func TestCodeActionDeclareMissingMember(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newFixture(t)

	tmpl := `<p>${bogus}</p>`
	s.Open(ctx, "/app/contact.html", tmpl, 1)

	start := strings.Index(tmpl, "bogus")
	actions := b.CodeActions(ctx, "/app/contact.html", position.NewRange(start, start+len("bogus")))
	require.Len(t, actions, 1)
	assert.Equal(t, "Declare member 'bogus' on Contact", actions[0].Title)

	require.Len(t, actions[0].Edits, 1)
	edit := actions[0].Edits[0]
	assert.Equal(t, "/app/contact.ts", edit.URI)
	assert.Equal(t, edit.Range.Start, edit.Range.End)
	assert.Equal(t, contactClass[edit.Range.Start-1], byte('{'))
	assert.Contains(t, edit.NewText, "bogus: any;")
}
