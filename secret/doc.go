// Package secret reads numbered API credentials from a key/value source
// (the process environment by default) and provides helpers for safe display.
//
// Credentials live in numbered slots 1 through 12. Each slot maps to a
// variable named by concatenating a prefix with the slot number:
//
//	JULES_API_KEY_1 ... JULES_API_KEY_12
//
// A single bulk variable, JULES_API_KEYS_ALL, may hold a comma-separated
// list that supersedes per-slot aggregation in Accessor.All.
//
// It also supports:
//   - Strict variable expansion over the same source (see ExpandStrict)
//   - Pluggable secret providers (see Provider + Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:jules:3
//   - Inline use:  Bearer secretref:jules:next
package secret
