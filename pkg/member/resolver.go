package member

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// FallbackMemberName is the single placeholder member returned when a
// companion cannot be resolved, so expression rewriting downstream always
// has a defined member set to work against.
const FallbackMemberName = "value"

// Resolver loads and caches companion member tables. The cache is keyed by
// companion source path; entries are plain member lists recomputed on
// invalidation. Failed resolutions produce an uncached fallback table.
type Resolver struct {
	fs afero.Fs

	mu    sync.Mutex
	cache map[string]*Info
}

func NewResolver(fs afero.Fs) *Resolver {
	return &Resolver{
		fs:    fs,
		cache: make(map[string]*Info),
	}
}

// Resolve returns the member table for a companion binding. It never
// returns nil: resolution failures degrade to the fallback table, logged
// but not treated as errors.
func (r *Resolver) Resolve(ctx context.Context, binding Binding) *Info {
	r.mu.Lock()
	if info, ok := r.cache[binding.SourcePath]; ok {
		r.mu.Unlock()
		return info
	}
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx)

	content, err := afero.ReadFile(r.fs, binding.SourcePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", binding.SourcePath).Msg("companion source unreadable, using fallback members")
		return r.fallback(binding)
	}

	info, err := ParseSource(string(content), binding.TypeName)
	if err != nil {
		logger.Warn().Err(err).Str("path", binding.SourcePath).Str("class", binding.TypeName).Msg("companion class unresolvable, using fallback members")
		return r.fallback(binding)
	}
	info.SourcePath = binding.SourcePath

	r.mu.Lock()
	r.cache[binding.SourcePath] = info
	r.mu.Unlock()

	logger.Debug().Str("class", info.ClassName).Int("members", len(info.Members)).Msg("resolved companion members")
	return info
}

// Invalidate drops the cached table for a companion path. The next Resolve
// recomputes it from source.
func (r *Resolver) Invalidate(path string) {
	r.mu.Lock()
	delete(r.cache, path)
	r.mu.Unlock()
}

func (r *Resolver) fallback(binding Binding) *Info {
	return &Info{
		ClassName:  binding.TypeName,
		SourcePath: binding.SourcePath,
		Members:    []Member{{Name: FallbackMemberName, Kind: KindProperty}},
		Fallback:   true,
	}
}
