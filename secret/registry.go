package secret

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrProviderExists is returned when a provider name is registered twice.
var ErrProviderExists = errors.New("secret: provider already registered")

// ProviderFactory builds a Provider from a loosely typed config, as decoded
// from YAML or assembled by the CLI.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Register adds factory under name.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return errors.New("secret: provider needs a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %q", ErrProviderExists, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the provider registered as name. Unknown names are
// ErrInvalidRef, as they would be inside a secretref.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: provider %q is not registered", ErrInvalidRef, name)
	}
	return factory(cfg)
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// NewSlotProviderFactory returns a factory building SlotProviders.
//
// Recognised config keys:
//   - "prefix":   string, per-slot variable prefix
//   - "bulk_var": string, bulk variable name
//   - "lookup":   LookupFunc, key/value source
func NewSlotProviderFactory() ProviderFactory {
	return func(cfg map[string]any) (Provider, error) {
		var opts []Option
		if s, ok, err := configValue[string](cfg, "prefix"); err != nil {
			return nil, err
		} else if ok {
			opts = append(opts, WithPrefix(s))
		}
		if s, ok, err := configValue[string](cfg, "bulk_var"); err != nil {
			return nil, err
		} else if ok {
			opts = append(opts, WithBulkVar(s))
		}
		if fn, ok, err := configValue[LookupFunc](cfg, "lookup"); err != nil {
			return nil, err
		} else if ok {
			opts = append(opts, WithLookup(fn))
		}
		return NewSlotProvider(NewAccessor(opts...)), nil
	}
}

func configValue[T any](cfg map[string]any, key string) (T, bool, error) {
	var zero T
	v, ok := cfg[key]
	if !ok {
		return zero, false, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("secret provider %q: %s must be a %T, got %T", SlotProviderName, key, zero, v)
	}
	return t, true, nil
}

// DefaultRegistry has the slot provider registered under SlotProviderName.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(SlotProviderName, NewSlotProviderFactory())
	return r
}
