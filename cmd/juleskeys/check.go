package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/health"
	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// liveSource re-reads the environment on every call so long-running health
// endpoints do not see a cached All. Reads are instrumented against ctx.
type liveSource struct {
	ctx context.Context
	app *app
}

func (s liveSource) All() []string          { return s.app.accessor(s.ctx).All() }
func (s liveSource) IsAvailable(n int) bool { return s.app.accessor(s.ctx).IsAvailable(n) }

// aggregator registers the credential checks configured for this run.
func (a *app) aggregator() *health.Aggregator {
	agg := health.NewAggregator()
	agg.Register("credentials", a.traced("credentials", func(src liveSource) health.Checker {
		return health.NewCredentialChecker(src, health.CredentialCheckerConfig{
			MinKeys:  a.cfg.MinKeys,
			Validate: secret.ValidateFormat,
		})
	}))
	if len(a.cfg.RequiredSlots) > 0 {
		agg.Register("required_slots", a.traced("required_slots", func(src liveSource) health.Checker {
			return health.NewSlotChecker(src, a.cfg.RequiredSlots)
		}))
	}
	return agg
}

// traced runs each check as its own operation under the context the check
// was called with, so environment reads land on the caller's span.
func (a *app) traced(name string, build func(liveSource) health.Checker) health.Checker {
	return health.NewCheckerFunc(name, func(ctx context.Context) health.Result {
		var res health.Result
		_ = a.mw.Wrap(func(ctx context.Context, _ observe.OpMeta) error {
			res = build(liveSource{ctx: ctx, app: a}).Check(ctx)
			return nil
		})(ctx, observe.OpMeta{Component: "health", Name: name})
		return res
	})
}

func (a *app) checkCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that enough well-formed credentials are available",
		Long: `Run the credential health checks once and report the result.

A check is unhealthy when fewer than min_keys credentials are available or a
required slot is unset, and degraded when a credential has an invalid format.

Exit codes:
  0  healthy or degraded
  1  unhealthy`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.start(ctx); err != nil {
				return err
			}
			return a.run(ctx, "check", 0, func(ctx context.Context, _ observe.OpMeta) error {
				report := a.aggregator().CheckAll(ctx)

				var err error
				if output == outputText {
					err = writeCheck(a.stdout, report)
				} else {
					err = writeStructured(a.stdout, output, health.NewHealthResponse(report))
				}
				if err != nil {
					return err
				}

				if report.Status == health.StatusUnhealthy {
					return reportedExit(ExitGeneral, fmt.Errorf("credential check %s", report.Status))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

func writeCheck(w io.Writer, report health.Report) error {
	fmt.Fprintf(w, "Status: %s\n\n", report.Status)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tMESSAGE")
	for _, c := range report.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Status, c.Message)
	}
	return tw.Flush()
}
