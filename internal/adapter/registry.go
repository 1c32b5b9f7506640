package adapter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/docscrape/internal/config"
)

// Registry maps platform names to adapter factories and URL patterns to
// platform names. It is built once at startup and passed to whatever needs
// lookups.
type Registry struct {
	factories map[string]Factory
	patterns  []urlPattern
	opts      []Option
}

type urlPattern struct {
	substr   string
	platform string
}

// NewRegistry creates an empty registry. opts are applied to every adapter
// it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		opts:      opts,
	}
}

// NewDefaultRegistry creates a registry holding the built-in platforms.
func NewDefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	defs := Builtins()
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		//nolint:errcheck // built-in names are never empty
		_ = r.RegisterDefinition(name, defs[name])
	}
	return r
}

// Register adds or replaces a platform. URLs containing any of patterns
// are detected as this platform.
func (r *Registry) Register(name string, factory Factory, patterns ...string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ErrEmptyPlatformName
	}
	r.factories[name] = factory
	for _, p := range patterns {
		if p == "" {
			continue
		}
		r.patterns = append(r.patterns, urlPattern{substr: p, platform: name})
	}
	return nil
}

// RegisterDefinition registers a platform built from def. Its URL patterns
// are def.URLPatterns.
func (r *Registry) RegisterDefinition(name string, def config.PlatformConfig) error {
	factory := func(_ string, opts ...Option) Adapter {
		return New(strings.ToLower(name), def, opts...)
	}
	return r.Register(name, factory, def.URLPatterns...)
}

// RegisterPlatforms validates and registers the platforms of a config file.
func (r *Registry) RegisterPlatforms(platforms map[string]config.PlatformConfig) error {
	for _, name := range slices.Sorted(maps.Keys(platforms)) {
		def := platforms[name]
		if err := def.Validate(); err != nil {
			return fmt.Errorf("platform %q: %w", name, err)
		}
		if err := r.RegisterDefinition(name, def); err != nil {
			return err
		}
	}
	return nil
}

// Detect returns the platform whose URL pattern occurs in rawURL.
func (r *Registry) Detect(rawURL string) (string, bool) {
	for _, p := range r.patterns {
		if strings.Contains(rawURL, p.substr) {
			return p.platform, true
		}
	}
	return "", false
}

// Get returns the adapter for platform, or for the platform detected from
// rawURL when platform is empty. Undetected URLs get the generic adapter.
func (r *Registry) Get(platform, rawURL string) (Adapter, error) {
	if platform != "" {
		name := strings.ToLower(platform)
		if name == GenericName && rawURL != "" {
			return NewGeneric(rawURL, r.opts...), nil
		}
		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPlatform, platform, strings.Join(r.Names(), ", "))
		}
		return factory(rawURL, r.opts...), nil
	}

	if rawURL == "" {
		return nil, fmt.Errorf("%w: neither platform nor URL given", ErrUnknownPlatform)
	}
	if name, ok := r.Detect(rawURL); ok {
		return r.factories[name](rawURL, r.opts...), nil
	}
	return NewGeneric(rawURL, r.opts...), nil
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}
