// Package registry maintains the project-wide index of known components:
// which tag and attribute names correspond to which companion classes,
// and which of their properties are bindable.
package registry

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/session"
)

// Kind distinguishes custom elements from custom attributes.
type Kind int

const (
	KindElement Kind = iota + 1
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// attributeMarker in a companion source declares the class as a custom
// attribute instead of an element.
const attributeMarker = "@customAttribute"

// Entry is one registered component.
type Entry struct {
	Name       string
	Kind       Kind
	SourcePath string
	Bindables  []string
}

// Registry indexes companion classes found under the configured globs.
type Registry struct {
	fs    afero.Fs
	globs []string

	mu      sync.RWMutex
	entries map[string]Entry
	sources map[string]string
}

func New(fs afero.Fs, globs []string) *Registry {
	return &Registry{
		fs:      fs,
		globs:   globs,
		entries: make(map[string]Entry),
		sources: make(map[string]string),
	}
}

// Scan walks the workspace and indexes every companion source matching
// the configured globs. Per-file failures are collected, not fatal: one
// unparsable source must not hide the rest of the project.
func (r *Registry) Scan(ctx context.Context) error {
	var errs *multierror.Error

	globs := make([]string, 0, len(r.globs))
	for _, glob := range r.globs {
		if !doublestar.ValidatePattern(glob) {
			errs = multierror.Append(errs, errors.Errorf("invalid glob %q", glob))
			continue
		}
		globs = append(globs, glob)
	}

	walkErr := afero.Walk(r.fs, "/", func(p string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(p, "/")
		for _, glob := range globs {
			if ok, _ := doublestar.Match(glob, rel); !ok {
				continue
			}
			if serr := r.ScanFile(ctx, p); serr != nil {
				errs = multierror.Append(errs, serr)
			}
			break
		}
		return nil
	})
	if walkErr != nil {
		errs = multierror.Append(errs, errors.Errorf("walking workspace: %w", walkErr))
	}

	zerolog.Ctx(ctx).Debug().Int("components", r.Len()).Msg("registry scan finished")
	return errs.ErrorOrNil()
}

// ScanFile indexes (or re-indexes) one companion source.
func (r *Registry) ScanFile(ctx context.Context, sourcePath string) error {
	content, err := afero.ReadFile(r.fs, sourcePath)
	if err != nil {
		return errors.Errorf("reading %s: %w", sourcePath, err)
	}

	className := session.PascalCase(baseName(sourcePath))
	info, err := member.ParseSource(string(content), className)
	if err != nil {
		return errors.Errorf("indexing %s: %w", sourcePath, err)
	}

	kind := KindElement
	if strings.Contains(string(content), attributeMarker) {
		kind = KindAttribute
	}
	entry := Entry{
		Name:       KebabCase(info.ClassName),
		Kind:       kind,
		SourcePath: sourcePath,
		Bindables:  info.Bindables(),
	}

	r.mu.Lock()
	if old, ok := r.sources[sourcePath]; ok && old != entry.Name {
		delete(r.entries, old)
	}
	r.entries[entry.Name] = entry
	r.sources[sourcePath] = entry.Name
	r.mu.Unlock()

	zerolog.Ctx(ctx).Trace().
		Str("name", entry.Name).
		Stringer("kind", kind).
		Str("source", sourcePath).
		Msg("component indexed")
	return nil
}

// Remove drops the component backed by a source path, typically after the
// file was deleted.
func (r *Registry) Remove(sourcePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.sources[sourcePath]
	if !ok {
		return
	}
	delete(r.sources, sourcePath)
	delete(r.entries, name)
}

// Lookup finds a component by its tag or attribute name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToLower(name)]
	return e, ok
}

// Entries lists all components ordered by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// KebabCase converts a PascalCase class name to the tag name convention:
// ContactCard becomes contact-card.
func KebabCase(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func baseName(sourcePath string) string {
	base := path.Base(sourcePath)
	return strings.TrimSuffix(base, path.Ext(base))
}
