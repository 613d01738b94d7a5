package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonwraymond/juleskeys/observe"
	"github.com/jonwraymond/juleskeys/secret"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// lookup is the base key/value source. Nil means the process environment.
	lookup secret.LookupFunc

	// flags
	configPath string
	prefix     string
	bulkVar    string
	envFiles   []string
	logLevel   string

	cfg      Config
	source   secret.LookupFunc
	registry *prometheus.Registry
	obs      observe.Observer
	mw       *observe.Middleware
	logger   observe.Logger
}

func newApp(stdout, stderr io.Writer, lookup secret.LookupFunc) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		lookup: lookup,
		logger: observe.NopLogger(),
	}
}

// loadConfig resolves the configuration and the credential source. Flags
// override the file and the environment only when set explicitly.
func (a *app) loadConfig(changed func(name string) bool) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return withExitCode(ExitUsage, err)
	}

	if changed("prefix") {
		cfg.Prefix = a.prefix
	}
	if changed("bulk-var") {
		cfg.BulkVar = a.bulkVar
	}
	if changed("env-file") {
		cfg.EnvFiles = a.envFiles
	}
	if changed("log-level") {
		cfg.Observe.Logging.Enabled = true
		cfg.Observe.Logging.Level = a.logLevel
	}
	cfg.Observe.Writer = a.stderr

	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitUsage, err)
	}

	base := a.lookup
	if base == nil {
		base = secret.EnvLookup
	}
	if len(cfg.EnvFiles) > 0 {
		dotenv, err := secret.DotenvLookup(cfg.EnvFiles...)
		if err != nil {
			return withExitCode(ExitUsage, err)
		}
		base = secret.ChainLookup(base, dotenv)
	}

	a.cfg = cfg
	a.source = base
	return nil
}

// start builds the telemetry pipeline. Commands call it after any
// command-specific config adjustments.
func (a *app) start(ctx context.Context) error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.cfg.Observe.Registerer = a.registry

	obs, err := observe.NewObserver(ctx, a.cfg.Observe)
	if err != nil {
		return withExitCode(ExitUsage, fmt.Errorf("observability: %w", err))
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return fmt.Errorf("observability: %w", err)
	}

	keys := secret.NewAccessor(secret.WithPrefix(a.cfg.Prefix), secret.WithBulkVar(a.cfg.BulkVar)).Keys()

	a.obs = obs
	a.mw = mw.WithCredentialKeys(keys...)
	a.logger = obs.Logger()
	return nil
}

// close flushes telemetry. It is safe to call when start never ran.
func (a *app) close() {
	if a.obs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.obs.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err.Error()})
	}
	a.obs = nil
}

// accessor returns an Accessor whose reads are instrumented against ctx.
func (a *app) accessor(ctx context.Context) *secret.Accessor {
	return secret.NewAccessor(
		secret.WithPrefix(a.cfg.Prefix),
		secret.WithBulkVar(a.cfg.BulkVar),
		secret.WithLookup(a.instrumentedLookup(ctx)),
	)
}

func (a *app) instrumentedLookup(ctx context.Context) secret.LookupFunc {
	return secret.LookupFunc(a.mw.Lookup(ctx, a.source))
}

// run executes fn as a traced, measured and logged operation.
func (a *app) run(ctx context.Context, name string, slot int, fn observe.ExecuteFunc) error {
	op := observe.OpMeta{Component: "cli", Name: name, Slot: slot}
	return a.mw.Wrap(fn)(ctx, op)
}
