// Package format produces whitespace edits for template documents driven
// by the workspace's .editorconfig. It deliberately leaves markup
// structure alone: only indentation characters, trailing whitespace and
// the final newline are touched, so formatting can never invalidate
// expression offsets by more than the whitespace deltas reported back.
package format

import (
	"bytes"
	"path"
	"strconv"
	"strings"

	editorconfig "github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"

	"github.com/viewbind/viewbind/pkg/position"
)

// Edit replaces a byte range of the document with new text.
type Edit struct {
	Range   position.Range
	NewText string
}

// Style is the resolved whitespace policy for one file.
type Style struct {
	IndentStyle  string
	IndentSize   int
	TabWidth     int
	TrimTrailing bool
	FinalNewline bool
}

func defaultStyle() Style {
	return Style{
		IndentStyle:  editorconfig.IndentStyleSpaces,
		IndentSize:   2,
		TabWidth:     2,
		TrimTrailing: true,
		FinalNewline: true,
	}
}

// ApplyOptions overlays the formatting options sent with the request.
// Client options win over .editorconfig because they reflect the
// buffer's live settings.
func (s *Style) ApplyOptions(tabSize int, insertSpaces bool) {
	if tabSize > 0 {
		s.IndentSize = tabSize
		s.TabWidth = tabSize
	}
	if insertSpaces {
		s.IndentStyle = editorconfig.IndentStyleSpaces
	} else {
		s.IndentStyle = editorconfig.IndentStyleTab
	}
}

// Formatter resolves per-file styles from the nearest .editorconfig.
type Formatter struct {
	fs afero.Fs
}

func NewFormatter(fs afero.Fs) *Formatter {
	return &Formatter{fs: fs}
}

// StyleFor walks from the file's directory upward looking for an
// .editorconfig section matching the file. Absent configuration falls
// back to two-space indentation.
func (f *Formatter) StyleFor(file string) Style {
	style := defaultStyle()

	dir := path.Dir(file)
	for {
		cfgPath := path.Join(dir, ".editorconfig")
		content, err := afero.ReadFile(f.fs, cfgPath)
		if err == nil {
			ec, perr := editorconfig.Parse(bytes.NewReader(content))
			if perr == nil {
				def, derr := ec.GetDefinitionForFilename(path.Base(file))
				if derr == nil && def != nil {
					applyDefinition(&style, def)
					return style
				}
			}
		}
		parent := path.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return style
}

func applyDefinition(style *Style, def *editorconfig.Definition) {
	if def.IndentStyle != "" {
		style.IndentStyle = def.IndentStyle
	}
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		style.IndentSize = n
	}
	if def.TabWidth > 0 {
		style.TabWidth = def.TabWidth
	}
	if def.TrimTrailingWhitespace != nil {
		style.TrimTrailing = *def.TrimTrailingWhitespace
	}
	if def.InsertFinalNewline != nil {
		style.FinalNewline = *def.InsertFinalNewline
	}
}

// Format computes the edits bringing content in line with the style.
func Format(content string, style Style) []Edit {
	var edits []Edit

	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		body := strings.TrimRight(line, "\n")
		nl := len(line) - len(body)

		if e, ok := indentEdit(body, offset, style); ok {
			edits = append(edits, e)
		}
		if style.TrimTrailing {
			trimmed := strings.TrimRight(body, " \t")
			if len(trimmed) < len(body) && trimmed != "" {
				edits = append(edits, Edit{
					Range: position.NewRange(offset+len(trimmed), offset+len(body)),
				})
			}
			// A whitespace-only line empties out entirely.
			if trimmed == "" && len(body) > 0 {
				edits = dropIndentEditAt(edits, offset)
				edits = append(edits, Edit{
					Range: position.NewRange(offset, offset+len(body)),
				})
			}
		}
		offset += len(body) + nl
	}

	if style.FinalNewline && content != "" && !strings.HasSuffix(content, "\n") {
		edits = append(edits, Edit{
			Range:   position.NewRange(len(content), len(content)),
			NewText: "\n",
		})
	}
	return edits
}

// indentEdit rewrites a line's leading whitespace into the configured
// indent characters, preserving its visual depth.
func indentEdit(line string, offset int, style Style) (Edit, bool) {
	end := 0
	columns := 0
	for end < len(line) {
		switch line[end] {
		case ' ':
			columns++
		case '\t':
			columns += style.TabWidth
		default:
			goto done
		}
		end++
	}
done:
	if end == 0 || end == len(line) {
		return Edit{}, false
	}

	var replacement string
	if style.IndentStyle == editorconfig.IndentStyleTab {
		tabs := columns / style.TabWidth
		replacement = strings.Repeat("\t", tabs) + strings.Repeat(" ", columns%style.TabWidth)
	} else {
		replacement = strings.Repeat(" ", columns)
	}
	if replacement == line[:end] {
		return Edit{}, false
	}
	return Edit{
		Range:   position.NewRange(offset, offset+end),
		NewText: replacement,
	}, true
}

func dropIndentEditAt(edits []Edit, offset int) []Edit {
	for i, e := range edits {
		if e.Range.Start == offset {
			return append(edits[:i], edits[i+1:]...)
		}
	}
	return edits
}
