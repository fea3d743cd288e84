package markup

import "strings"

// bindingCommands are the attribute-name suffixes that turn an attribute
// into an expression binding, e.g. `value.bind`, `click.trigger`,
// `repeat.for`.
var bindingCommands = map[string]bool{
	"bind":      true,
	"one-way":   true,
	"two-way":   true,
	"to-view":   true,
	"from-view": true,
	"one-time":  true,
	"trigger":   true,
	"delegate":  true,
	"capture":   true,
	"call":      true,
	"for":       true,
	"ref":       true,
}

// templateControllers are bare attribute names that always carry an
// expression even without a binding command.
var templateControllers = map[string]bool{
	"if":     true,
	"else":   true,
	"switch": true,
	"case":   true,
	"with":   true,
	"show":   true,
	"hide":   true,
	"repeat": true,
	"portal": true,
}

// staticNamespaces are dotted-name prefixes that never bind, such as
// `data-id.x` or `aria-label`.
var staticNamespaces = map[string]bool{
	"data": true,
	"aria": true,
}

// IsBindingAttribute decides whether an attribute's value is an embedded
// expression: an explicit binding-command suffix, a template-controller
// name, or any dotted name outside the static namespaces.
func IsBindingAttribute(name string) bool {
	name = strings.ToLower(name)

	if templateControllers[name] {
		return true
	}

	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return false
	}
	if bindingCommands[name[dot+1:]] {
		return true
	}

	first := name
	if i := strings.IndexAny(name, ".-"); i >= 0 {
		first = name[:i]
	}
	return !staticNamespaces[first]
}
