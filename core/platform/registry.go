package platform

import (
	"fmt"
	"strings"

	"github.com/issuebridge/bridge-core/core/config"
)

// Registry maps platform identifiers to adapters. Identifiers match
// case-insensitively; an empty identifier resolves to the default platform.
type Registry struct {
	adapters    map[string]Adapter
	defaultName string
}

// NewRegistry builds the registry over the fixed set of supported platforms,
// each adapter constructed once from the given configuration.
func NewRegistry(cfg config.Config) *Registry {
	return NewRegistryFor(cfg.DefaultPlatform, NewJira(cfg.Jira), NewGitLab(cfg.GitLab))
}

// NewRegistryFor builds a registry over explicit adapters. The first adapter
// is the fallback default when defaultName is empty.
func NewRegistryFor(defaultName string, adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[strings.ToLower(a.Name())] = a
	}
	r.defaultName = strings.ToLower(strings.TrimSpace(defaultName))
	if r.defaultName == "" && len(adapters) > 0 {
		r.defaultName = strings.ToLower(adapters[0].Name())
	}
	return r
}

// Resolve returns the adapter for the given identifier, or the default
// platform's adapter when the identifier is empty.
func (r *Registry) Resolve(name string) (Adapter, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = r.defaultName
	}
	adapter, ok := r.adapters[n]
	if !ok {
		// Report the identifier as the caller wrote it, not the folded form.
		reported := strings.TrimSpace(name)
		if reported == "" {
			reported = n
		}
		return nil, fmt.Errorf("Unsupported platform: %s", reported)
	}
	return adapter, nil
}
