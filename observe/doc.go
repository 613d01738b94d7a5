// Package observe provides observability primitives for credential access.
//
// It is a pure instrumentation library: tracing, metrics and structured
// logging around accessor operations and the environment reads behind them.
// Secret values never reach a span, a metric attribute or a log line; only
// variable names, counts and outcomes do.
//
// Logging is backed by zerolog and writes JSON to stderr by default so that
// stdout stays free for command output. Fields whose key names a secret
// (see RedactedFields) are replaced with "[REDACTED]".
package observe
