// Package cache provides an in-process LRU cache with TTL expiry and a
// manager that sweeps expired entries in the background.
package cache

import (
	"sync"
	"time"

	"finai/internal/log"
)

// Cache is the read/write surface shared by cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	mu       sync.Mutex
	caches   map[string]Cleaner
	logger   *log.Logger
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		caches: make(map[string]Cleaner),
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache under a name used in log output.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup runs Sweep every interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Sweep cleans all registered caches once and returns the number of
// entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for name, c := range m.caches {
		if n := c.CleanExpired(); n > 0 {
			m.logger.Debug("Expired cache entries removed", "cache", name, "removed", n)
			total += n
		}
	}
	return total
}

// Stop ends the cleanup goroutine. It is safe to call more than once, and
// before StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
