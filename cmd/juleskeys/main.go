package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// Version is the current version of juleskeys
var Version = "0.1.0"

var errNoKeys = errors.New("no Jules API keys found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr, nil).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// execute runs the command tree for args and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	a.close()

	if shouldPrint(err) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "juleskeys",
		Short: "Inspect the Jules API keys available to this process",
		Long: `juleskeys reads numbered Jules API keys from the environment
(JULES_API_KEY_1 through JULES_API_KEY_12, or the comma-separated
JULES_API_KEYS_ALL) and reports them masked.

Run without a subcommand to print a summary of the available keys.`,
		Version:       Version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.Flags().Changed)
		},
		RunE: a.runReport,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitUsage, err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.prefix, "prefix", secret.DefaultPrefix, "per-slot variable prefix")
	flags.StringVar(&a.bulkVar, "bulk-var", secret.BulkVar, "comma-separated bulk variable name")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "read additional variables from .env files (process environment wins)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		a.listCmd(),
		a.getCmd(),
		a.checkCmd(),
		a.resolveCmd(),
		a.serveCmd(),
	)
	return root
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return withExitCode(ExitUsage, err)
		}
		return nil
	}
}

func (a *app) runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := a.start(ctx); err != nil {
		return err
	}
	return a.run(ctx, "report", 0, func(ctx context.Context, _ observe.OpMeta) error {
		return writeReport(a.stdout, a.accessor(ctx))
	})
}

// writeReport prints the summary shown when no subcommand is given.
func writeReport(w io.Writer, acc *secret.Accessor) error {
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Jules API Keys Manager")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	keys := acc.All()
	if len(keys) == 0 {
		fmt.Fprintln(w, "❌ No Jules API keys found in environment variables.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "To use this tool, ensure one of the following:")
		fmt.Fprintln(w, "  1. Running in GitHub Actions with secrets configured")
		fmt.Fprintf(w, "  2. Environment variables %s%d through %s%d are set\n",
			acc.Prefix(), secret.MinSlot, acc.Prefix(), secret.MaxSlot)
		fmt.Fprintf(w, "  3. Environment variable %s is set (comma-separated)\n", acc.BulkVar())
		fmt.Fprintln(w)
		return reportedExit(ExitGeneral, errNoKeys)
	}

	fmt.Fprintf(w, "✓ Found %d Jules API key(s)\n", len(keys))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Available Keys:")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, info := range acc.Slots() {
		if !info.Present {
			continue
		}
		fmt.Fprintf(w, "  Key %2d: %s [%s]\n", info.Slot, info.Masked, formatStatus(info.ValidFormat))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if v, ok, _ := acc.Get(1); ok {
		fmt.Fprintln(w, "Example - Get first key:")
		fmt.Fprintf(w, "  juleskeys get 1 = %s\n", secret.Mask(v))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Example - Get all keys:")
	fmt.Fprintf(w, "  juleskeys list = %d key(s)\n", len(keys))
	fmt.Fprintln(w)
	return nil
}

func formatStatus(valid bool) string {
	if valid {
		return "✓ Valid"
	}
	return "⚠ Invalid format"
}
