package markup

import "github.com/viewbind/viewbind/pkg/position"

// rawAttribute is one attribute located inside the raw bytes of a start
// tag. ValueRange is relative to the tag start; for a valueless or empty
// attribute it is a zero-length range at the spot a value would occupy.
type rawAttribute struct {
	Name       string
	NameStart  int
	ValueRange position.Range
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// scanTagAttributes re-lexes the raw bytes of a start tag. The tokenizer
// already validated the tag shape; this pass exists only to recover byte
// offsets, which the tokenizer's decoded Attr values cannot provide.
func scanTagAttributes(raw []byte) []rawAttribute {
	var attrs []rawAttribute

	i := 0
	// Opening angle bracket and tag name.
	if i < len(raw) && raw[i] == '<' {
		i++
	}
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++
	}

	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		nameStart := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		name := string(raw[nameStart:i])
		if name == "" {
			i++
			continue
		}

		attr := rawAttribute{
			Name:       name,
			NameStart:  nameStart,
			ValueRange: position.NewRange(i, i),
		}

		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			if j < len(raw) && (raw[j] == '"' || raw[j] == '\'') {
				quote := raw[j]
				j++
				valStart := j
				for j < len(raw) && raw[j] != quote {
					j++
				}
				attr.ValueRange = position.NewRange(valStart, j)
				if j < len(raw) {
					j++
				}
			} else {
				valStart := j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				attr.ValueRange = position.NewRange(valStart, j)
			}
			i = j
		}

		attrs = append(attrs, attr)
	}

	return attrs
}
