package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// listing is the structured form of the list command.
type listing struct {
	Prefix    string            `json:"prefix" yaml:"prefix"`
	BulkVar   string            `json:"bulk_var" yaml:"bulk_var"`
	Available int               `json:"available" yaml:"available"`
	Slots     []secret.SlotInfo `json:"slots" yaml:"slots"`
}

func newListing(acc *secret.Accessor) listing {
	return listing{
		Prefix:    acc.Prefix(),
		BulkVar:   acc.BulkVar(),
		Available: acc.Count(),
		Slots:     acc.Slots(),
	}
}

func (a *app) listCmd() *cobra.Command {
	var output string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List credential slots (masked)",
		Long: `List the credential slots with masked values, a short fingerprint
and whether each value looks like a Jules API key.

Examples:
  juleskeys list
  juleskeys list --all
  juleskeys list --output json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.start(ctx); err != nil {
				return err
			}
			return a.run(ctx, "list", 0, func(ctx context.Context, _ observe.OpMeta) error {
				l := newListing(a.accessor(ctx))
				if output != outputText {
					return writeStructured(a.stdout, output, l)
				}
				return writeListing(a.stdout, l, all)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&all, "all", false, "include empty slots in text output")
	return cmd
}

func writeListing(w io.Writer, l listing, all bool) error {
	fmt.Fprintf(w, "Available keys: %d\n\n", l.Available)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tVARIABLE\tVALUE\tFINGERPRINT\tFORMAT")
	for _, s := range l.Slots {
		switch {
		case s.Present:
			format := "valid"
			if !s.ValidFormat {
				format = "invalid"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Slot, s.Key, s.Masked, s.Fingerprint, format)
		case all:
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\n", s.Slot, s.Key)
		}
	}
	return tw.Flush()
}
