// Package health reports whether the credentials a process needs are present
// and well-formed.
//
// A Checker reports a Status: Healthy, Degraded, or Unhealthy. The
// credential checkers never expose values in their Result details, only
// counts and slot numbers.
//
// # Basic Usage
//
//	check := health.NewCredentialChecker(accessor, health.CredentialCheckerConfig{
//	    MinKeys:  1,
//	    Validate: secret.ValidateFormat,
//	})
//	result := check.Check(ctx)
//
// # Aggregating Health Checks
//
//	agg := health.NewAggregator()
//	agg.Register("credentials", check)
//	agg.Register("required_slots", health.NewSlotChecker(accessor, []int{1, 2}))
//
//	report := agg.CheckAll(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    os.Exit(1)
//	}
//
// # HTTP Endpoints
//
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler(agg))
//	http.Handle("/health", health.DetailedHandler(agg))
package health
