package secret

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LookupFunc returns the value stored under key and whether it was set.
// It has the same shape as os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvLookup reads from the process environment.
func EnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup serves values from a fixed map. The map is copied.
func MapLookup(values map[string]string) LookupFunc {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// DotenvLookup parses the given .env files and serves their values.
// Later files override earlier ones. The process environment is not modified.
func DotenvLookup(paths ...string) (LookupFunc, error) {
	values, err := godotenv.Read(paths...)
	if err != nil {
		return nil, fmt.Errorf("secret: read dotenv: %w", err)
	}
	return MapLookup(values), nil
}

// ChainLookup consults each source in order and returns the first hit.
// Nil sources are skipped.
func ChainLookup(sources ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if v, ok := src(key); ok {
				return v, true
			}
		}
		return "", false
	}
}
