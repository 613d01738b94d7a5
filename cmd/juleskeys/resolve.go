package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// newResolver builds a Resolver with the slot provider created from the
// default registry, both reading through the instrumented lookup.
func (a *app) newResolver(ctx context.Context, strict bool) (*secret.Resolver, error) {
	lookup := a.instrumentedLookup(ctx)

	provider, err := secret.DefaultRegistry.Create(secret.SlotProviderName, map[string]any{
		"prefix":   a.cfg.Prefix,
		"bulk_var": a.cfg.BulkVar,
		"lookup":   lookup,
	})
	if err != nil {
		return nil, err
	}

	r := secret.NewResolver(strict, provider)
	r.SetLookup(lookup)
	return r, nil
}

func (a *app) resolveCmd() *cobra.Command {
	var reveal, strict bool

	cmd := &cobra.Command{
		Use:   "resolve <value>...",
		Short: "Resolve secretref values and ${VAR} references",
		Long: `Resolve each value, expanding ${VAR} references and replacing
secretref:jules:<ref> with a credential. A ref is a slot number (1-12),
"all" for every credential comma-joined, or "next" for round-robin
selection across the values given in one invocation.

Resolved values are masked unless --reveal is given.

Examples:
  juleskeys resolve secretref:jules:1 --reveal
  juleskeys resolve "Bearer secretref:jules:next" "Bearer secretref:jules:next"`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.start(ctx); err != nil {
				return err
			}
			return a.run(ctx, "resolve", 0, func(ctx context.Context, _ observe.OpMeta) error {
				r, err := a.newResolver(ctx, strict)
				if err != nil {
					return err
				}
				resolved, err := r.ResolveSlice(ctx, args)
				if err != nil {
					return resolveExit(err)
				}
				for _, v := range resolved {
					if !reveal {
						v = secret.Mask(v)
					}
					fmt.Fprintln(a.stdout, v)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print raw values instead of masked ones")
	cmd.Flags().BoolVar(&strict, "strict", true, "fail when a reference resolves to an empty value")
	return cmd
}

func resolveExit(err error) error {
	switch {
	case errors.Is(err, secret.ErrInvalidSlot), errors.Is(err, secret.ErrInvalidRef):
		return withExitCode(ExitUsage, err)
	case errors.Is(err, secret.ErrNotFound):
		return withExitCode(ExitNotFound, err)
	}
	return err
}
