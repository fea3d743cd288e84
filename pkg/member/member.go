// Package member resolves the set of names visible on a template's
// companion view-model class.
package member

// Binding associates a template with its companion type. It is produced
// outside this package, by naming convention or explicit declaration.
type Binding struct {
	TypeName   string
	SourcePath string
}

type Kind int

const (
	KindProperty Kind = iota + 1
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Member is one resolvable name on the companion class. Offset is the byte
// offset of the name inside the companion source, kept so definitions and
// renames can target the declaration directly.
type Member struct {
	Name     string
	Kind     Kind
	Type     string
	Offset   int
	Bindable bool
}

// Info is the resolved member table for one companion class. Fallback
// marks the degraded single-placeholder table returned when resolution
// fails; it is never cached.
type Info struct {
	ClassName   string
	SourcePath  string
	ClassOffset int
	BodyStart   int
	Members     []Member
	Fallback    bool
}

func (i *Info) Names() []string {
	names := make([]string, 0, len(i.Members))
	for _, m := range i.Members {
		names = append(names, m.Name)
	}
	return names
}

func (i *Info) Lookup(name string) (Member, bool) {
	for _, m := range i.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func (i *Info) Bindables() []string {
	var names []string
	for _, m := range i.Members {
		if m.Bindable {
			names = append(names, m.Name)
		}
	}
	return names
}
