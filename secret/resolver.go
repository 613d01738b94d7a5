package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RefScheme prefixes a credential reference: secretref:<provider>:<name>.
const RefScheme = "secretref:"

// Ref names one value held by a provider.
type Ref struct {
	Provider string
	Name     string
}

// String returns the reference in its secretref:<provider>:<name> form.
func (r Ref) String() string {
	return RefScheme + r.Provider + ":" + r.Name
}

// ParseRef parses a whole value as a reference. ok is false when value does
// not carry the secretref scheme; err is ErrInvalidRef when it does but the
// provider or name is missing.
func ParseRef(value string) (ref Ref, ok bool, err error) {
	rest, found := strings.CutPrefix(value, RefScheme)
	if !found {
		return Ref{}, false, nil
	}
	provider, name, _ := strings.Cut(rest, ":")
	if provider == "" || name == "" {
		return Ref{}, true, fmt.Errorf("%w: %q", ErrInvalidRef, value)
	}
	return Ref{Provider: provider, Name: name}, true, nil
}

// Resolver turns values that mention credentials into the credentials
// themselves. ${VAR} expansion runs first and is always strict; refs are
// then resolved whole or inline through the registered providers.
//
// With strict set, a provider answering with an empty value is an
// ErrNotFound error instead of an empty substitution.
type Resolver struct {
	providers map[string]Provider
	strict    bool
	lookup    LookupFunc
}

// NewResolver returns a Resolver using providers and the process
// environment for expansion. Nil providers are skipped.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider, len(providers)),
		strict:    strict,
		lookup:    EnvLookup,
	}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// SetLookup sets the source used for variable expansion. Nil restores
// EnvLookup.
func (r *Resolver) SetLookup(fn LookupFunc) {
	if r == nil {
		return
	}
	if fn == nil {
		fn = EnvLookup
	}
	r.lookup = fn
}

// ResolveValue expands variables in value, then resolves a whole-value ref
// or any refs embedded in it.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	if r == nil {
		return ExpandEnvStrict(value)
	}

	expanded, err := ExpandStrict(value, r.lookup)
	if err != nil {
		return "", err
	}

	ref, ok, err := ParseRef(expanded)
	if err != nil {
		return "", err
	}
	if ok {
		return r.resolve(ctx, ref)
	}
	return r.resolveInline(ctx, expanded)
}

// ResolveSlice resolves values in order and stops at the first error.
// Order matters for refs such as secretref:jules:next.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for i, v := range values {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, ref Ref) (string, error) {
	p, ok := r.providers[ref.Provider]
	if !ok {
		return "", fmt.Errorf("%w: provider %q is not registered", ErrInvalidRef, ref.Provider)
	}
	v, err := p.Resolve(ctx, ref.Name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref, err)
	}
	if v == "" && r.strict {
		return "", fmt.Errorf("%w: %s resolved to an empty value", ErrNotFound, ref)
	}
	return v, nil
}

// inlineRef matches a ref embedded in surrounding text, such as
// "Bearer secretref:jules:1".
var inlineRef = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	var firstErr error
	out := inlineRef.ReplaceAllStringFunc(value, func(m string) string {
		if firstErr != nil {
			return m
		}
		sub := inlineRef.FindStringSubmatch(m)
		v, err := r.resolve(ctx, Ref{Provider: sub[1], Name: sub[2]})
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
