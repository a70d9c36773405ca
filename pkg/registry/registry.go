// Package registry wires storage backends to the rest of ferry.
//
// A Registry maps URI schemes to backend factories, so callers can open a
// store from a location string ("s3://bucket/backup", "file:///tmp/data")
// or from a named profile in a config file without importing any backend
// package. The Default registry knows every built-in backend; programs with
// custom backends register their own factories on a fresh Registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/storage"
)

// Factory creates a store from a decoded option map. Factories must reject
// options they cannot serve with an error wrapping storage.ErrUnsupported,
// so chained factories can fall through.
type Factory func(ctx context.Context, options map[string]any) (storage.Store, error)

// Registry maps URI schemes to factories and profile names to option sets.
// Safe for concurrent use once populated.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	profiles  map[string]Profile
}

// New creates an empty registry with no backends registered.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		profiles:  make(map[string]Profile),
	}
}

// Default returns a registry with every built-in backend registered:
// mem, file, s3 and badger.
func Default() *Registry {
	r := New()

	// Registering on a fresh registry cannot collide.
	_ = r.Register("mem", memoryFactory)
	_ = r.Register("file", filesystemFactory)
	_ = r.Register("s3", s3Factory)
	_ = r.Register("badger", badgerFactory)

	return r
}

// Register binds a factory to a URI scheme. Registering a scheme twice is
// an error.
func (r *Registry) Register(scheme string, factory Factory) error {
	if scheme == "" {
		return fmt.Errorf("scheme is required")
	}
	if factory == nil {
		return fmt.Errorf("factory for scheme %q is nil", scheme)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[scheme]; exists {
		return fmt.Errorf("scheme %q is already registered", scheme)
	}

	r.factories[scheme] = factory

	return nil
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)

	return schemes
}

// SetProfiles installs the named profiles used to resolve "profile://"
// locations, replacing any previous set.
func (r *Registry) SetProfiles(profiles map[string]Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = profiles
}

// Open resolves a location string into a store and the operation path
// inside it. See ParseLocation for the accepted URI forms.
//
// An unknown scheme fails with storage.ErrUnsupported.
func (r *Registry) Open(ctx context.Context, rawLocation string) (storage.Store, string, error) {
	loc, err := ParseLocation(rawLocation)
	if err != nil {
		return nil, "", err
	}

	if loc.Scheme == "profile" {
		return r.openProfile(ctx, loc)
	}

	factory, err := r.factory(loc.Scheme)
	if err != nil {
		return nil, "", err
	}

	logger.Debug("opening %s store for %s", loc.Scheme, rawLocation)

	store, err := factory(ctx, loc.BackendOptions())
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", rawLocation, err)
	}

	return store, loc.StorePath(), nil
}

// OpenKind creates a store directly from a scheme and an option map,
// bypassing URI parsing. This is the entry point for config-driven wiring.
func (r *Registry) OpenKind(ctx context.Context, scheme string, options map[string]any) (storage.Store, error) {
	factory, err := r.factory(scheme)
	if err != nil {
		return nil, err
	}

	return factory(ctx, options)
}

func (r *Registry) openProfile(ctx context.Context, loc *Location) (storage.Store, string, error) {
	r.mu.RLock()
	profile, ok := r.profiles[loc.Host]
	r.mu.RUnlock()

	if !ok {
		return nil, "", fmt.Errorf("unknown profile %q: %w", loc.Host, storage.ErrUnsupported)
	}

	factory, err := r.factory(profile.Type)
	if err != nil {
		return nil, "", err
	}

	// Query parameters override the profile's stored options.
	options := make(map[string]any, len(profile.Options)+len(loc.Options))
	for k, v := range profile.Options {
		options[k] = v
	}
	for k, v := range loc.Options {
		options[k] = v
	}

	store, err := factory(ctx, options)
	if err != nil {
		return nil, "", fmt.Errorf("open profile %q: %w", loc.Host, err)
	}

	return store, loc.Path, nil
}

func (r *Registry) factory(scheme string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[normalizeScheme(scheme)]
	if !ok {
		return nil, fmt.Errorf("unknown storage scheme %q: %w", scheme, storage.ErrUnsupported)
	}

	return factory, nil
}

// normalizeScheme folds scheme aliases onto their canonical names.
func normalizeScheme(scheme string) string {
	switch scheme {
	case "memory":
		return "mem"
	case "fs", "filesystem":
		return "file"
	default:
		return scheme
	}
}

// Chain combines factories into one that tries each in order. A factory
// that fails with storage.ErrUnsupported passes the options to the next
// one; any other error short-circuits. When every factory declines, the
// last ErrUnsupported failure is returned.
func Chain(factories ...Factory) Factory {
	return func(ctx context.Context, options map[string]any) (storage.Store, error) {
		var lastErr error

		for _, factory := range factories {
			store, err := factory(ctx, options)
			if err == nil {
				return store, nil
			}
			if !errors.Is(err, storage.ErrUnsupported) {
				return nil, err
			}

			lastErr = err
		}

		if lastErr == nil {
			return nil, fmt.Errorf("no factories to try: %w", storage.ErrUnsupported)
		}

		return nil, lastErr
	}
}
