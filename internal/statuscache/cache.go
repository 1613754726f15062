package statuscache

import (
	"context"
	"sync"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

// DefaultTTL is how long a status stays fresh without a new report.
const DefaultTTL = 240 * time.Second

type entry struct {
	status    *models.CanonicalStatus
	expiresAt time.Time
}

// Cache is the per-device latest-known-status store. Each Set fully
// replaces the prior entry; a device that stops reporting goes stale
// once its TTL elapses.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores the latest status for a device, replacing any prior entry.
// A non-positive ttl falls back to DefaultTTL.
func (c *Cache) Set(deviceID string, status *models.CanonicalStatus, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[deviceID] = entry{status: status, expiresAt: c.now().Add(ttl)}
}

// Get returns the latest status for a device, or nil if none is known
// or the entry has expired.
func (c *Cache) Get(deviceID string) *models.CanonicalStatus {
	c.mu.RLock()
	e, ok := c.entries[deviceID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if c.now().After(e.expiresAt) {
		c.Delete(deviceID)
		return nil
	}
	return e.status
}

// Delete drops the entry for a device immediately.
func (c *Cache) Delete(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, deviceID)
}

// Sweep removes all expired entries.
func (c *Cache) Sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// RunJanitor sweeps expired entries at the given interval until ctx is
// canceled.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep()
		}
	}
}
