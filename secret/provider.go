package secret

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// SlotProviderName is the provider name used in secretref values.
const SlotProviderName = "jules"

// SlotProvider exposes an Accessor as a Provider.
//
// Supported refs:
//   - "1".."12": the credential in that slot
//   - "all":     every credential from Accessor.All, comma-joined
//   - "next":    the next credential in round-robin order
type SlotProvider struct {
	accessor *Accessor
	rr       *RoundRobin
}

// NewSlotProvider creates a SlotProvider over a.
func NewSlotProvider(a *Accessor) *SlotProvider {
	return &SlotProvider{accessor: a, rr: NewRoundRobin(a)}
}

// Name returns SlotProviderName.
func (p *SlotProvider) Name() string { return SlotProviderName }

// Resolve resolves ref against the underlying Accessor.
func (p *SlotProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref = strings.TrimSpace(ref)
	switch ref {
	case "all":
		keys := p.accessor.All()
		if len(keys) == 0 {
			return "", fmt.Errorf("%w: no credentials available", ErrNotFound)
		}
		return strings.Join(keys, ","), nil
	case "next":
		v, ok := p.rr.Next()
		if !ok {
			return "", fmt.Errorf("%w: no credentials available", ErrNotFound)
		}
		return v, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	v, ok, err := p.accessor.Get(n)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, Slot(n).Key(p.accessor.Prefix()))
	}
	return v, nil
}

// Close is a no-op.
func (p *SlotProvider) Close() error { return nil }

var _ Provider = (*SlotProvider)(nil)
