package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

func (a *app) getCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <slot>",
		Short: "Print the credential in one slot",
		Long: `Print the credential stored in a slot (1-12). The value is masked
unless --reveal is given.

Exit codes:
  0  the slot holds a credential
  2  the slot number is invalid
  3  the slot variable is unset

A variable set to the empty string counts as set and prints masked.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return withExitCode(ExitUsage, fmt.Errorf("slot must be a number, got %q", args[0]))
			}

			ctx := cmd.Context()
			if err := a.start(ctx); err != nil {
				return err
			}
			return a.run(ctx, "get", n, func(ctx context.Context, _ observe.OpMeta) error {
				acc := a.accessor(ctx)
				v, ok, err := acc.Get(n)
				if err != nil {
					if errors.Is(err, secret.ErrInvalidSlot) {
						return withExitCode(ExitUsage, err)
					}
					return err
				}
				if !ok {
					return withExitCode(ExitNotFound,
						fmt.Errorf("%w: %s is not set", secret.ErrNotFound, secret.Slot(n).Key(acc.Prefix())))
				}
				if reveal {
					fmt.Fprintln(a.stdout, v)
					return nil
				}
				fmt.Fprintln(a.stdout, secret.Mask(v))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the raw value instead of a masked one")
	return cmd
}
