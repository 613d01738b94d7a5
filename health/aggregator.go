package health

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a CheckAll run when AggregatorConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds each Check and CheckAll call. Default: DefaultTimeout.
	Timeout time.Duration

	// Parallel runs checks concurrently. NewAggregator without a config
	// enables it.
	Parallel bool

	// MaxConcurrency caps concurrent checks when Parallel is set. Zero
	// means one goroutine per check.
	MaxConcurrency int
}

// NamedResult is a Result labelled with its check name.
type NamedResult struct {
	Name string
	Result
}

// Report is the outcome of one CheckAll run.
type Report struct {
	Status    Status
	Checks    []NamedResult // registration order
	Timestamp time.Time     // when the run started
}

// Get returns the result of the check registered as name.
func (r Report) Get(name string) (Result, bool) {
	i := slices.IndexFunc(r.Checks, func(c NamedResult) bool { return c.Name == name })
	if i < 0 {
		return Result{}, false
	}
	return r.Checks[i].Result, true
}

type registration struct {
	name    string
	checker Checker
}

// Aggregator runs a set of named checks and folds them into a Report.
// It is safe for concurrent use.
type Aggregator struct {
	config AggregatorConfig

	mu     sync.RWMutex
	checks []registration
}

// NewAggregator returns an Aggregator. Without a config checks run in
// parallel with DefaultTimeout.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Parallel: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Aggregator{config: cfg}
}

// Register adds checker as name. Registering an existing name replaces the
// checker in place, so report order is stable.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.index(name); i >= 0 {
		a.checks[i].checker = checker
		return
	}
	a.checks = append(a.checks, registration{name: name, checker: checker})
}

// Unregister removes the check registered as name, if any.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i := a.index(name); i >= 0 {
		a.checks = slices.Delete(a.checks, i, i+1)
	}
}

// CheckerNames returns the registered names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.checks))
	for i, c := range a.checks {
		names[i] = c.name
	}
	return names
}

// Check runs the check registered as name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	i := a.index(name)
	var checker Checker
	if i >= 0 {
		checker = a.checks[i].checker
	}
	a.mu.RUnlock()

	if checker == nil {
		return Result{}, fmt.Errorf("%w: %q", ErrCheckerNotFound, name)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, checker), nil
}

// CheckAll runs every registered check under one timeout. With no checks
// the report is healthy.
func (a *Aggregator) CheckAll(ctx context.Context) Report {
	a.mu.RLock()
	checks := slices.Clone(a.checks)
	a.mu.RUnlock()

	report := Report{
		Checks:    make([]NamedResult, len(checks)),
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var g errgroup.Group
	switch {
	case !a.config.Parallel:
		g.SetLimit(1)
	case a.config.MaxConcurrency > 0:
		g.SetLimit(a.config.MaxConcurrency)
	}
	for i, c := range checks {
		g.Go(func() error {
			report.Checks[i] = NamedResult{Name: c.name, Result: run(ctx, c.checker)}
			return nil
		})
	}
	_ = g.Wait()

	report.Status = OverallStatus(report.Checks)
	return report
}

// OverallStatus is the worst status in results, or StatusHealthy when
// results is empty.
func OverallStatus(results []NamedResult) Status {
	overall := StatusHealthy
	for _, r := range results {
		overall = max(overall, r.Status)
	}
	return overall
}

// index returns the position of name, or -1. Callers hold a.mu.
func (a *Aggregator) index(name string) int {
	return slices.IndexFunc(a.checks, func(r registration) bool { return r.name == name })
}

// run executes checker, turning a panic into ErrCheckFailed and an expired
// ctx into ErrCheckTimeout. Duration is always filled in.
func run(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- Unhealthy("check panicked", fmt.Errorf("%w: %v", ErrCheckFailed, p))
			}
		}()
		done <- checker.Check(ctx)
	}()

	var result Result
	select {
	case result = <-done:
	case <-ctx.Done():
		result = Unhealthy("check timed out", ErrCheckTimeout)
	}

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}
