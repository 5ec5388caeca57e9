// Package local is the in-process cache backend used when no Redis address
// is configured. It holds login sessions, the cached leaderboard and task
// locks for a single server instance.
package local

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

type Config struct {
	GCInterval time.Duration
}

type item struct {
	value    string
	deadline time.Time // zero means no expiry
}

func (it item) live(now time.Time) bool {
	return it.deadline.IsZero() || now.Before(it.deadline)
}

// LocalCache is a mutex-guarded map with per-key deadlines. Expired keys
// are invisible immediately and reclaimed by a background sweep.
type LocalCache struct {
	mu    sync.RWMutex
	items map[string]item

	sweepEvery time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewCache creates a LocalCache and starts its sweeper.
func NewCache(cfg Config) (*LocalCache, error) {
	every := cfg.GCInterval
	if every <= 0 {
		every = 30 * time.Second
	}
	c := &LocalCache{
		items:      make(map[string]item),
		sweepEvery: every,
		done:       make(chan struct{}),
	}
	go c.sweepLoop()
	return c, nil
}

// Close stops the sweeper. Safe to call more than once.
func (c *LocalCache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *LocalCache) sweepLoop() {
	t := time.NewTicker(c.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *LocalCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, it := range c.items {
		if !it.live(now) {
			delete(c.items, k)
		}
	}
}

func deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *LocalCache) lookup(key string) (item, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !it.live(time.Now()) {
		return item{}, false
	}
	return it, true
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	it, ok := c.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return it.value, nil
}

// Set stores value under key. ttl <= 0 keeps it until deleted.
func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.items[key] = item{value: value, deadline: deadline(ttl)}
	c.mu.Unlock()
	return nil
}

// SetNX stores value only if key is absent or expired and reports whether
// it did.
func (c *LocalCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if it, ok := c.items[key]; ok && it.live(time.Now()) {
		return false, nil
	}
	c.items[key] = item{value: value, deadline: deadline(ttl)}
	return true, nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}
