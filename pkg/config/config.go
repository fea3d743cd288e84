// Package config loads the optional viewbind.hcl workspace file.
package config

import (
	"path"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// FileName is looked up at the workspace root.
const FileName = "viewbind.hcl"

// Config carries the workspace-tunable knobs. Zero values mean "use the
// default".
type Config struct {
	// TemplateExtension and CompanionExtension drive the companion
	// binding convention.
	TemplateExtension  string `hcl:"template_extension,optional"`
	CompanionExtension string `hcl:"companion_extension,optional"`

	// RegistryGlobs select the sources scanned for components.
	RegistryGlobs []string `hcl:"registry_globs,optional"`

	// DebounceMs is the registry rescan quiescence window.
	DebounceMs int `hcl:"debounce_ms,optional"`
}

func Default() Config {
	return Config{
		TemplateExtension:  ".html",
		CompanionExtension: ".ts",
		RegistryGlobs:      []string{"**/*.ts"},
		DebounceMs:         250,
	}
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Load reads the workspace config, falling back to defaults when the
// file does not exist. A present but invalid file is an error: silently
// ignoring a typo'd config is worse than refusing to start.
func Load(fs afero.Fs, workspaceRoot string) (Config, error) {
	cfg := Default()

	file := path.Join(workspaceRoot, FileName)
	content, err := afero.ReadFile(fs, file)
	if err != nil {
		if ok, _ := afero.Exists(fs, file); !ok {
			return cfg, nil
		}
		return cfg, errors.Errorf("reading %s: %w", file, err)
	}

	var loaded Config
	if err := hclsimple.Decode(FileName, content, nil, &loaded); err != nil {
		return cfg, errors.Errorf("parsing %s: %w", file, err)
	}

	if loaded.TemplateExtension != "" {
		cfg.TemplateExtension = loaded.TemplateExtension
	}
	if loaded.CompanionExtension != "" {
		cfg.CompanionExtension = loaded.CompanionExtension
	}
	if len(loaded.RegistryGlobs) > 0 {
		cfg.RegistryGlobs = loaded.RegistryGlobs
	}
	if loaded.DebounceMs > 0 {
		cfg.DebounceMs = loaded.DebounceMs
	}
	return cfg, nil
}
