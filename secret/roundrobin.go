package secret

import "sync/atomic"

// RoundRobin hands out the credentials of an Accessor in turn.
type RoundRobin struct {
	accessor *Accessor
	next     atomic.Uint64
}

// NewRoundRobin creates a RoundRobin over a.All().
func NewRoundRobin(a *Accessor) *RoundRobin {
	return &RoundRobin{accessor: a}
}

// Next returns the next credential, or ("", false) when none are available.
func (r *RoundRobin) Next() (string, bool) {
	keys := r.accessor.All()
	if len(keys) == 0 {
		return "", false
	}
	i := r.next.Add(1) - 1
	return keys[i%uint64(len(keys))], true
}
