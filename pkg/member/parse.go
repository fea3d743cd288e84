package member

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var classRe = regexp.MustCompile(`(?m)\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

// modifiers that may precede a member name. `private` additionally hides
// the member from the resolved table.
var memberModifiers = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"readonly":  true,
	"static":    true,
	"async":     true,
	"abstract":  true,
	"override":  true,
	"declare":   true,
	"get":       true,
	"set":       true,
}

// ParseSource scans companion source text for the named class and returns
// its member table. This is a lexical scan, not a full parse: it tracks
// strings, comments and brace depth, and reads member declarations at class
// body depth. className may be empty, in which case the first class wins.
func ParseSource(src, className string) (*Info, error) {
	var classOffset int
	found := false
	for _, m := range classRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[m[2]:m[3]]
		if className == "" || name == className {
			className = name
			classOffset = m[2]
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Errorf("class %q not found in companion source", className)
	}

	s := &scanner{src: src, i: classOffset}
	// Skip the heritage clause (extends/implements) up to the class body.
	for s.i < len(s.src) && s.src[s.i] != '{' {
		s.skipNonCode()
		if s.i < len(s.src) && s.src[s.i] != '{' {
			s.i++
		}
	}
	if s.i >= len(s.src) {
		return nil, errors.Errorf("class %q has no body", className)
	}
	s.i++
	bodyStart := s.i

	members, err := s.scanBody()
	if err != nil {
		return nil, errors.Errorf("scanning body of class %q: %w", className, err)
	}

	return &Info{
		ClassName:   className,
		ClassOffset: classOffset,
		BodyStart:   bodyStart,
		Members:     members,
	}, nil
}

type scanner struct {
	src string
	i   int
}

func (s *scanner) scanBody() ([]Member, error) {
	var members []Member
	bindableNext := false

	for s.i < len(s.src) {
		s.skipNonCode()
		if s.i >= len(s.src) {
			break
		}

		c := s.src[s.i]
		switch {
		case c == '}':
			return members, nil
		case c == ';' || c == ',':
			s.i++
		case c == '@':
			s.i++
			name := s.readWord()
			if name == "bindable" {
				bindableNext = true
			}
			if s.peek() == '(' {
				s.skipBalanced('(', ')')
			}
		case isWordStart(c):
			m, keep := s.scanMember()
			if keep {
				m.Bindable = bindableNext && m.Kind == KindProperty
				members = append(members, m)
			}
			bindableNext = false
		default:
			s.i++
		}
	}

	return members, errors.Errorf("unterminated class body")
}

// scanMember consumes one member declaration. keep is false for the
// constructor, private members, and leading-underscore names; the
// declaration is consumed either way.
func (s *scanner) scanMember() (Member, bool) {
	private := false
	var name string
	var offset int

	for {
		start := s.i
		word := s.readWord()
		if word == "" {
			return Member{}, false
		}
		if memberModifiers[word] {
			if word == "private" {
				private = true
			}
			// A modifier keyword directly followed by `(`, `:`, `=` or `;`
			// is actually a member named like the modifier (e.g. `get()`).
			s.skipNonCode()
			if s.i < len(s.src) && isWordStart(s.src[s.i]) {
				continue
			}
			if c := s.peek(); c == '(' || c == ':' || c == '=' || c == ';' || c == '?' {
				name, offset = word, start
				break
			}
			continue
		}
		name, offset = word, start
		break
	}

	m := Member{Name: name, Offset: offset}
	s.skipNonCode()

	if c := s.peek(); c == '(' || c == '<' {
		m.Kind = KindMethod
		if c == '<' {
			s.skipBalanced('<', '>')
			s.skipNonCode()
		}
		sigStart := s.i
		s.skipBalanced('(', ')')
		s.skipNonCode()
		if s.peek() == ':' {
			s.i++
			s.consumeReturnType()
		}
		m.Type = strings.TrimSpace(s.src[sigStart:s.i])
		s.skipNonCode()
		if s.peek() == '{' {
			s.skipBalanced('{', '}')
		}
	} else {
		m.Kind = KindProperty
		if s.peek() == '?' || s.peek() == '!' {
			s.i++
			s.skipNonCode()
		}
		if s.peek() == ':' {
			s.i++
			s.skipNonCode()
			typeStart := s.i
			s.consumeType()
			m.Type = strings.TrimSpace(s.src[typeStart:s.i])
		}
		s.skipNonCode()
		if s.peek() == '=' {
			s.i++
			s.consumeInitializer()
		}
	}

	if private || name == "constructor" || strings.HasPrefix(name, "_") {
		return Member{}, false
	}
	return m, true
}

// consumeType reads a type annotation up to the first `;`, `=`, `}` or
// newline at bracket depth zero.
func (s *scanner) consumeType() {
	depth := 0
	for s.i < len(s.src) {
		if s.skipNonCodeAt() {
			continue
		}
		c := s.src[s.i]
		switch c {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '>':
			depth--
		case '}':
			if depth == 0 {
				return
			}
			depth--
		case ';', '=', '\n':
			if depth == 0 {
				return
			}
		}
		s.i++
	}
}

// consumeReturnType reads a method return type, stopping at the body's
// opening brace. Object-literal return types are beyond this scanner.
func (s *scanner) consumeReturnType() {
	depth := 0
	for s.i < len(s.src) {
		if s.skipNonCodeAt() {
			continue
		}
		c := s.src[s.i]
		switch c {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case '{', '}', ';', '\n':
			if depth == 0 {
				return
			}
		}
		s.i++
	}
}

// consumeInitializer reads an initializer expression up to the first `;`
// or newline at bracket depth zero.
func (s *scanner) consumeInitializer() {
	depth := 0
	for s.i < len(s.src) {
		if s.skipNonCodeAt() {
			continue
		}
		c := s.src[s.i]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				return
			}
			depth--
		case ';', '\n':
			if depth == 0 {
				return
			}
		}
		s.i++
	}
}

func (s *scanner) peek() byte {
	if s.i < len(s.src) {
		return s.src[s.i]
	}
	return 0
}

func (s *scanner) readWord() string {
	start := s.i
	for s.i < len(s.src) && isWordChar(s.src[s.i]) {
		s.i++
	}
	return s.src[start:s.i]
}

// skipNonCode advances past whitespace, comments and string literals.
func (s *scanner) skipNonCode() {
	for s.skipNonCodeAt() {
	}
}

// skipNonCodeAt skips one run of whitespace, one comment, or one string
// literal. It reports whether anything was consumed.
func (s *scanner) skipNonCodeAt() bool {
	if s.i >= len(s.src) {
		return false
	}
	c := s.src[s.i]

	if c == ' ' || c == '\t' || c == '\r' {
		s.i++
		return true
	}
	if c == '/' && s.i+1 < len(s.src) {
		switch s.src[s.i+1] {
		case '/':
			for s.i < len(s.src) && s.src[s.i] != '\n' {
				s.i++
			}
			return true
		case '*':
			s.i += 2
			for s.i+1 < len(s.src) && !(s.src[s.i] == '*' && s.src[s.i+1] == '/') {
				s.i++
			}
			s.i += 2
			if s.i > len(s.src) {
				s.i = len(s.src)
			}
			return true
		}
	}
	if c == '\'' || c == '"' || c == '`' {
		quote := c
		s.i++
		for s.i < len(s.src) && s.src[s.i] != quote {
			if s.src[s.i] == '\\' {
				s.i++
			}
			s.i++
		}
		if s.i < len(s.src) {
			s.i++
		}
		return true
	}
	return false
}

// skipBalanced consumes a balanced open/close pair starting at the current
// position, comments and strings excluded from the count.
func (s *scanner) skipBalanced(open, close byte) {
	if s.peek() != open {
		return
	}
	depth := 0
	for s.i < len(s.src) {
		if s.skipNonCodeAt() {
			continue
		}
		c := s.src[s.i]
		s.i++
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func isWordStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}
