package session

import (
	"path"
	"strings"

	"github.com/viewbind/viewbind/pkg/member"
)

// NewSuffixBinding is the conventional companion resolver: the companion
// source sits next to the template with the extension swapped, and the
// class is the Pascal-cased file base name. contact-card.html binds to
// class ContactCard in contact-card.ts.
func NewSuffixBinding(templateExt, companionExt string) BindingResolver {
	return func(templateURI string) (member.Binding, bool) {
		if !strings.HasSuffix(templateURI, templateExt) {
			return member.Binding{}, false
		}
		base := strings.TrimSuffix(path.Base(templateURI), templateExt)
		if base == "" {
			return member.Binding{}, false
		}
		return member.Binding{
			TypeName:   PascalCase(base),
			SourcePath: strings.TrimSuffix(templateURI, templateExt) + companionExt,
		}, true
	}
}

// PascalCase converts a kebab- or snake-cased name to PascalCase.
func PascalCase(name string) string {
	var b strings.Builder
	upper := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '-' || c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}
