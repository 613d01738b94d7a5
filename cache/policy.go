package cache

import "time"

// Policy configures how long responses are cached.
type Policy struct {
	// TTL is how long a response is served from the cache.
	// Zero disables caching.
	TTL time.Duration

	// MaxTTL caps TTL and per-call overrides. Zero means no cap.
	MaxTTL time.Duration
}

// DefaultMaxTTL bounds how stale a cached health answer may get.
const DefaultMaxTTL = time.Minute

// NewPolicy returns a Policy caching for ttl, capped at DefaultMaxTTL.
func NewPolicy(ttl time.Duration) Policy {
	return Policy{TTL: ttl, MaxTTL: DefaultMaxTTL}
}

// Enabled reports whether the policy caches anything.
func (p Policy) Enabled() bool {
	return p.EffectiveTTL(0) > 0
}

// EffectiveTTL returns override when positive, else TTL, clamped to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.TTL
	}
	if ttl < 0 {
		return 0
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
