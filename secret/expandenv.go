package secret

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// ExpandEnvStrict expands variables in s from the process environment.
func ExpandEnvStrict(s string) (string, error) {
	return ExpandStrict(s, EnvLookup)
}

// ExpandStrict expands variables in s using lookup.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded; an unset `$VAR` expands to "".
//   - If `${VAR}` is present but VAR is unset, it errors.
//   - `$$` emits a literal `$` (escape hatch).
func ExpandStrict(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = EnvLookup
	}

	const dollarSentinel = "\x00JULESKEYS_SECRET_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if key == "" {
			continue
		}
		if _, ok := lookup(key); !ok {
			missing[key] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("missing required variables: %s", strings.Join(keys, ", "))
	}

	s = envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(m, "$"), "{"), "}")
		v, _ := lookup(name)
		return v
	})
	s = strings.ReplaceAll(s, dollarSentinel, "$")
	return s, nil
}
