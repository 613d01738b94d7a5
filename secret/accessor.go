package secret

import (
	"strconv"
	"strings"
	"sync"
)

const (
	// DefaultPrefix is prepended to the slot number to form a lookup key.
	DefaultPrefix = "JULES_API_KEY_"

	// BulkVar holds an optional comma-separated list of credentials.
	BulkVar = "JULES_API_KEYS_ALL"

	// MinSlot and MaxSlot bound the slot numbers.
	MinSlot = 1
	MaxSlot = 12
)

// Slot identifies one credential variable.
type Slot int

// Valid reports whether s lies in [MinSlot, MaxSlot].
func (s Slot) Valid() bool {
	return s >= MinSlot && s <= MaxSlot
}

// Key returns the variable name for s under prefix.
func (s Slot) Key(prefix string) string {
	return prefix + strconv.Itoa(int(s))
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithPrefix sets the per-slot variable prefix. Empty keeps DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(a *Accessor) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// WithLookup sets the key/value source. Nil keeps EnvLookup.
func WithLookup(fn LookupFunc) Option {
	return func(a *Accessor) {
		if fn != nil {
			a.lookup = fn
		}
	}
}

// WithBulkVar overrides the bulk variable name. Empty keeps BulkVar.
func WithBulkVar(name string) Option {
	return func(a *Accessor) {
		if name != "" {
			a.bulkVar = name
		}
	}
}

// Accessor maps slot numbers (and the bulk variable) to credential strings.
//
// Contract:
//   - Get, Map and IsAvailable read the source on every call.
//   - All reads the source once per Accessor; later calls return the cached
//     sequence even if the source changes.
//   - Concurrency: safe for concurrent use. The cache is guarded by a mutex.
type Accessor struct {
	prefix  string
	bulkVar string
	lookup  LookupFunc

	mu     sync.Mutex
	loaded bool
	cached []string
}

// NewAccessor creates an Accessor reading from the process environment
// unless WithLookup says otherwise.
func NewAccessor(opts ...Option) *Accessor {
	a := &Accessor{
		prefix:  DefaultPrefix,
		bulkVar: BulkVar,
		lookup:  EnvLookup,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prefix returns the per-slot variable prefix.
func (a *Accessor) Prefix() string {
	return a.prefix
}

// BulkVar returns the bulk variable name.
func (a *Accessor) BulkVar() string {
	return a.bulkVar
}

// Keys returns every variable name the Accessor reads: the slot variables
// in ascending order, then the bulk variable.
func (a *Accessor) Keys() []string {
	keys := make([]string, 0, MaxSlot+1)
	for n := MinSlot; n <= MaxSlot; n++ {
		keys = append(keys, Slot(n).Key(a.prefix))
	}
	return append(keys, a.bulkVar)
}

// Get returns the credential in slot n.
//
// It fails with *InvalidSlotError when n is outside [MinSlot, MaxSlot].
// An unset variable is reported as ("", false, nil); a variable set to the
// empty string is present and returned as ("", true, nil).
func (a *Accessor) Get(n int) (string, bool, error) {
	slot := Slot(n)
	if !slot.Valid() {
		return "", false, &InvalidSlotError{Slot: n}
	}
	v, ok := a.lookup(slot.Key(a.prefix))
	return v, ok, nil
}

// All returns every available credential.
//
// The bulk variable wins when it is set and non-empty: its value is split on
// commas and each piece is trimmed. Empty pieces are kept, so "a,,b" and "a,"
// yield empty entries. Otherwise slots are scanned in ascending order and
// only non-empty values are kept.
//
// The result is computed once per Accessor and reused; the returned slice is
// a copy.
func (a *Accessor) All() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		a.cached = a.collect()
		a.loaded = true
	}

	out := make([]string, len(a.cached))
	copy(out, a.cached)
	return out
}

func (a *Accessor) collect() []string {
	if bulk, ok := a.lookup(a.bulkVar); ok && bulk != "" {
		parts := strings.Split(bulk, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts
	}

	keys := make([]string, 0, MaxSlot)
	for n := MinSlot; n <= MaxSlot; n++ {
		if v, _, _ := a.Get(n); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}

// Count returns len(All()).
func (a *Accessor) Count() int {
	return len(a.All())
}

// Map returns non-empty credentials keyed by slot number.
//
// Unlike All, Map ignores the bulk variable, scans individual slots on every
// call and never touches the cache.
func (a *Accessor) Map() map[int]string {
	out := make(map[int]string)
	for n := MinSlot; n <= MaxSlot; n++ {
		if v, _, _ := a.Get(n); v != "" {
			out[n] = v
		}
	}
	return out
}

// IsAvailable reports whether the variable for slot n is set, even to the
// empty string. Out-of-range slots report false.
func (a *Accessor) IsAvailable(n int) bool {
	_, ok, err := a.Get(n)
	return err == nil && ok
}

// SlotInfo describes one slot for display. It never carries the raw value.
type SlotInfo struct {
	Slot        int    `json:"slot" yaml:"slot"`
	Key         string `json:"key" yaml:"key"`
	Present     bool   `json:"present" yaml:"present"`
	Masked      string `json:"masked,omitempty" yaml:"masked,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	ValidFormat bool   `json:"valid_format" yaml:"valid_format"`
}

// Slots reports every slot in ascending order. A slot is Present when it
// holds a non-empty value.
func (a *Accessor) Slots() []SlotInfo {
	infos := make([]SlotInfo, 0, MaxSlot)
	for n := MinSlot; n <= MaxSlot; n++ {
		info := SlotInfo{Slot: n, Key: Slot(n).Key(a.prefix)}
		if v, _, _ := a.Get(n); v != "" {
			info.Present = true
			info.Masked = Mask(v)
			info.Fingerprint = Fingerprint(v)
			info.ValidFormat = ValidateFormat(v)
		}
		infos = append(infos, info)
	}
	return infos
}

// FindSlot returns the slot holding value. Comparison is constant-time per
// slot.
func (a *Accessor) FindSlot(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	found := 0
	for n := MinSlot; n <= MaxSlot; n++ {
		v, _, _ := a.Get(n)
		if v != "" && ConstantTimeCompare(v, value) && found == 0 {
			found = n
		}
	}
	return found, found != 0
}
