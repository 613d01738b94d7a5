package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// Keyer derives a cache key from a request.
//
// Contract:
// - Determinism: requests differing only in query parameter order share a key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(r *http.Request) (string, error)
}

// RequestKeyer keys requests by method, path and canonical query.
type RequestKeyer struct{}

// Key returns "cache:<method>:<path>:<hash>", where hash is the first 16 hex
// characters of SHA-256 over the sorted query string.
func (RequestKeyer) Key(r *http.Request) (string, error) {
	// Encode sorts by parameter name.
	query := r.URL.Query().Encode()
	sum := sha256.Sum256([]byte(query))

	key := "cache:" + r.Method + ":" + r.URL.Path + ":" + hex.EncodeToString(sum[:8])
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

var _ Keyer = RequestKeyer{}
