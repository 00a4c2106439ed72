// package pagecache stores rendered pages per path and identity
package pagecache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Cache holds rendered page bodies. Entries are keyed by the page path and
// the identity the page was rendered for; InvalidatePath drops the entries
// of every identity for that path and moves the path to a new generation.
//
// A render reads Generation before loading its data and hands it to Set,
// which stores nothing once the path has moved on. A page built from data
// read before an invalidation can therefore never be served after it.
type Cache interface {
	Get(ctx context.Context, path, identity string) ([]byte, bool, error)
	Generation(ctx context.Context, path string) (uint64, error)
	// Set stores body while path is still at gen and reports whether it did
	Set(ctx context.Context, path, identity string, gen uint64, body []byte) (bool, error)
	InvalidatePath(ctx context.Context, path string) error
}

// ErrDisabled is returned by Nop.Generation; pages are rendered per request
var ErrDisabled = errors.New("page cache disabled")

const keyPrefix = "page:"

// key builds "page:<path>:<identity>". Paths are route constants without
// colons, so a prefix match on pathPrefix(path) only hits that path.
func key(path, identity string) string {
	return pathPrefix(path) + identity
}

func pathPrefix(path string) string {
	return keyPrefix + path + ":"
}

type entry struct {
	body    []byte
	expires time.Time
}

// Memory is an in-process Cache with a fixed entry lifetime
type Memory struct {
	ttl         time.Duration
	now         func() time.Time
	entries     map[string]entry
	generations map[string]uint64
	nextSweep   time.Time
	mutex       sync.Mutex
}

// NewMemory creates an in-process cache; ttl <= 0 keeps entries until invalidated
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[string]entry),
		generations: make(map[string]uint64),
	}
}

// WithClock replaces the clock used for expiry
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.now = now
	return m
}

// Get implements Cache
func (m *Memory) Get(ctx context.Context, path, identity string) ([]byte, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	k := key(path, identity)
	e, ok := m.entries[k]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, k)
		return nil, false, nil
	}

	return e.body, true, nil
}

// Generation implements Cache
func (m *Memory) Generation(ctx context.Context, path string) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.generations[path], nil
}

// Set implements Cache
func (m *Memory) Set(ctx context.Context, path, identity string, gen uint64, body []byte) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.generations[path] != gen {
		return false, nil
	}

	now := m.now()
	m.sweep(now)

	e := entry{body: append([]byte(nil), body...)}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.entries[key(path, identity)] = e

	return true, nil
}

// sweep drops expired entries, at most once per ttl. Callers hold the mutex.
func (m *Memory) sweep(now time.Time) {
	if m.ttl <= 0 || now.Before(m.nextSweep) {
		return
	}
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.nextSweep = now.Add(m.ttl)
}

// size counts stored entries, expired ones included
func (m *Memory) size() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.entries)
}

// InvalidatePath implements Cache
func (m *Memory) InvalidatePath(ctx context.Context, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.generations[path]++
	prefix := pathPrefix(path)
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}

	return nil
}

// Nop is a Cache that never stores anything
type Nop struct{}

// Get implements Cache
func (Nop) Get(ctx context.Context, path, identity string) ([]byte, bool, error) {
	return nil, false, nil
}

// Generation implements Cache
func (Nop) Generation(ctx context.Context, path string) (uint64, error) { return 0, ErrDisabled }

// Set implements Cache
func (Nop) Set(ctx context.Context, path, identity string, gen uint64, body []byte) (bool, error) {
	return false, nil
}

// InvalidatePath implements Cache
func (Nop) InvalidatePath(ctx context.Context, path string) error { return nil }
