// Package config defines RuntimeConfig, the small set of knobs the
// evaluator and lifecycle controller take (spec §9's open questions name
// two of them: the retry bound, and whether it is per-node or per-invoke —
// resolved here as per-node, see DESIGN.md). Loading from YAML uses
// goccy/go-yaml, promoted from an indirect teacher dependency to a direct
// one (SPEC_FULL.md §4.8).
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// RuntimeConfig holds the engine's tunables.
type RuntimeConfig struct {
	// MaxRetries bounds the async invoke retry loop per node (spec §4.5,
	// §5). Default 10, matching the source constant spec §9 calls out.
	MaxRetries int `yaml:"maxRetries"`

	// MaxScopeDepth is loaded and defaulted (64) like the other fields, but
	// no part of the engine reads it: ITERATE nesting and the scope stack
	// are not bounded by it.
	MaxScopeDepth int `yaml:"maxScopeDepth"`

	// StrictReferences, when true, makes a REFERENCE handler return a
	// TYPE_MISMATCH ThunkError instead of Undefined when a dynamic path
	// segment evaluates to a non-string/non-number value. Default false
	// (spec §4.4: "non-string dynamic segment where string required =>
	// undefined").
	StrictReferences bool `yaml:"strictReferences"`

	// DefaultLocale seeds the BCP-47 tag used by locale-aware built-ins
	// (golang.org/x/text/collate, golang.org/x/text/cases) when a call
	// site doesn't specify one.
	DefaultLocale string `yaml:"defaultLocale"`
}

// Default returns the engine's built-in defaults.
func Default() RuntimeConfig {
	return RuntimeConfig{
		MaxRetries:       10,
		MaxScopeDepth:    64,
		StrictReferences: false,
		DefaultLocale:    "en",
	}
}

// Load reads a YAML runtime config file, defaulting any field left unset.
func Load(path string) (RuntimeConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading runtime config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing runtime config %s: %w", path, err)
	}
	return cfg, nil
}
