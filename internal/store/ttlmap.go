// Package store implements the desk's SnapshotStore: a TTL-keyed key/value
// table that analytics, agents, and the risk engine use to publish and read
// the latest computed state. The default backend is an in-process map with
// lazy expiry and LRU eviction; an optional Redis-backed implementation
// lets multiple processes share one store.
package store

import (
	"sync"
	"time"

	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// SnapshotStore is the interface every backend implements. Keys follow the
// namespace in the external interfaces section: "<module>:<symbol>" or a
// bare "risk:throttle" / "idem:<key>" for the two reserved names below.
type SnapshotStore interface {
	Set(key string, value interface{}, ttl time.Duration)
	Get(key string) (interface{}, bool)
	// SetIfAbsent stores value only if key is not already present (and not
	// expired), returning true on success. Used for idempotent consumption.
	SetIfAbsent(key string, value interface{}, ttl time.Duration) bool
	Delete(key string)
}

const throttleKey = "risk:throttle"

type entry struct {
	value    interface{}
	expires  time.Time
	accessed time.Time
}

// TTLMap is an in-process SnapshotStore. Expiry is lazy: entries past their
// TTL are dropped on the next Get/Set that touches them rather than swept by
// a background goroutine, since the desk's read/write volume makes a
// periodic sweep unnecessary.
type TTLMap struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
}

// NewTTLMap creates a store that evicts its least-recently-accessed entry
// once it holds maxEntries keys.
func NewTTLMap(maxEntries int) *TTLMap {
	return &TTLMap{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
	}
}

// Set stores value under key with the given TTL, overwriting any prior
// value. ttl<=0 means the key never expires on its own.
func (m *TTLMap) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value, ttl)
}

func (m *TTLMap) setLocked(key string, value interface{}, ttl time.Duration) {
	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictLRU()
	}
	now := timeutil.NowUTC()
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	m.entries[key] = &entry{value: value, expires: expires, accessed: now}
}

// Get returns the value stored under key, or (nil, false) if absent or
// expired. An expired entry found on read is evicted immediately.
func (m *TTLMap) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.expired(e) {
		delete(m.entries, key)
		return nil, false
	}
	e.accessed = timeutil.NowUTC()
	return e.value, true
}

// SetIfAbsent stores value under key only if key is absent or expired. It
// reports whether the store was written, matching Redis SET NX semantics
// used for the idem:<key> idempotency guard.
func (m *TTLMap) SetIfAbsent(key string, value interface{}, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && !m.expired(e) {
		return false
	}
	m.setLocked(key, value, ttl)
	return true
}

// Delete removes key unconditionally.
func (m *TTLMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *TTLMap) expired(e *entry) bool {
	return !e.expires.IsZero() && timeutil.NowUTC().After(e.expires)
}

// evictLRU drops the least-recently-accessed entry. Caller must hold mu.
func (m *TTLMap) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	for key, e := range m.entries {
		if oldestKey == "" || e.accessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.accessed
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// ThrottleState mirrors the risk:throttle snapshot payload.
type ThrottleState struct {
	Active bool      `json:"active"`
	Reason string    `json:"reason"`
	Ts     time.Time `json:"ts"`
}

// SetThrottle activates or clears the risk throttle. expiry<=0 with on=true
// falls back to a 5 minute default, matching the original implementation.
func SetThrottle(s SnapshotStore, on bool, reason string, expiry time.Duration) {
	if !on {
		s.Delete(throttleKey)
		return
	}
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	s.Set(throttleKey, ThrottleState{Active: true, Reason: reason, Ts: timeutil.NowUTC()}, expiry)
}

// GetThrottle returns the current throttle state, defaulting to inactive.
func GetThrottle(s SnapshotStore) ThrottleState {
	v, ok := s.Get(throttleKey)
	if !ok {
		return ThrottleState{}
	}
	ts, ok := v.(ThrottleState)
	if !ok {
		return ThrottleState{}
	}
	return ts
}

// CheckThrottle reports whether a duplicate action on key should be
// suppressed: it claims the idem:<key> slot for ttl and returns true only
// the first time it is called for a given key within that window.
func CheckThrottle(s SnapshotStore, key string, ttl time.Duration) bool {
	return s.SetIfAbsent("idem:"+key, true, ttl)
}
