// Package cache holds read results keyed by query shape.
//
// Keys are namespaced by a prefix ("talents:", "jobs:", "candidates_for_job:<job>")
// so a write path can drop every derived entry with one InvalidateByPrefix call.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is a key/value store of read results
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// GetOrLoad reads key through the cache. A value loaded while an
	// invalidation ran is returned but not stored.
	GetOrLoad(key string, load func() (any, error)) (any, error)
	Invalidate(key string)
	InvalidateByPrefix(prefix string)
}

// Recorder observes cache effectiveness
type Recorder interface {
	CacheHit(prefix string)
	CacheMiss(prefix string)
}

// Key prefixes shared by every reader and writer
const (
	PrefixTalents    = "talents:"
	PrefixJobs       = "jobs:"
	PrefixCandidates = "candidates_for_job:"
)

// CandidatesKey is the cache key of a job's pipeline view
func CandidatesKey(jobID string) string {
	return PrefixCandidates + jobID
}

// Option configures Memory
type Option func(*Memory)

// WithTTL sets how long an entry stays readable; zero keeps entries until invalidated
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) {
		m.ttl = ttl
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(m *Memory) {
		m.clock = clock
	}
}

// WithRecorder reports hits and misses
func WithRecorder(r Recorder) Option {
	return func(m *Memory) {
		m.recorder = r
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process Cache safe for concurrent use
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	clock    func() time.Time
	recorder Recorder

	// gen counts invalidations; fills started under an older gen are dropped
	gen uint64
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an empty Memory cache
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the live value stored under key
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if ok && !e.expiresAt.IsZero() && m.clock().After(e.expiresAt) {
		m.mu.Lock()
		if cur, still := m.entries[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		ok = false
	}

	if m.recorder != nil {
		if ok {
			m.recorder.CacheHit(prefixOf(key))
		} else {
			m.recorder.CacheMiss(prefixOf(key))
		}
	}
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key
func (m *Memory) Set(key string, value any) {
	e := m.newEntry(value)

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

// GetOrLoad returns the live value under key, or calls load and stores its result
// unless the cache was invalidated while load ran
func (m *Memory) GetOrLoad(key string, load func() (any, error)) (any, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	v, err := load()
	if err != nil {
		return nil, err
	}

	e := m.newEntry(v)
	m.mu.Lock()
	if m.gen == gen {
		m.entries[key] = e
	}
	m.mu.Unlock()
	return v, nil
}

func (m *Memory) newEntry(value any) entry {
	e := entry{value: value}
	if m.ttl > 0 {
		e.expiresAt = m.clock().Add(m.ttl)
	}
	return e
}

// Invalidate drops one key
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	m.gen++
	delete(m.entries, key)
	m.mu.Unlock()
}

// InvalidateByPrefix drops every key starting with prefix
func (m *Memory) InvalidateByPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GetAs returns the value under key when it has type T
func GetAs[T any](c Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func prefixOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i+1]
	}
	return key
}
