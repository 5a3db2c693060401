package guide

import (
	"sync"
	"time"

	"github.com/saltaire-guide/site/content"
)

// SiteCache holds the loaded content tree. A failed reload keeps serving the
// previous tree and records the error.
type SiteCache struct {
	mu      sync.RWMutex
	site    *content.Site
	lastErr error
	stale   bool
	fetched time.Time
	ttl     time.Duration
	loader  func() (*content.Site, error)
}

// NewSiteCache creates a SiteCache that calls loader on first use and after
// every Invalidate. A ttl of zero never expires.
func NewSiteCache(loader func() (*content.Site, error), ttl time.Duration) *SiteCache {
	return &SiteCache{loader: loader, ttl: ttl}
}

func (c *SiteCache) valid() bool {
	return c.site != nil && !c.stale && (c.ttl == 0 || time.Since(c.fetched) < c.ttl)
}

// Invalidate clears the cache so the next read triggers a fresh load.
// The previous tree is kept as a fallback.
func (c *SiteCache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

func (c *SiteCache) load() error {
	if c.valid() {
		return nil
	}
	site, err := c.loader()
	c.fetched = time.Now()
	c.stale = false
	if err != nil {
		c.lastErr = err
		if c.site != nil {
			return nil
		}
		return err
	}
	c.site = site
	c.lastErr = nil
	return nil
}

// Site returns the cached tree, loading it if needed.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SiteCache) Site() (*content.Site, error) {
	c.mu.RLock()
	if c.valid() {
		site := c.site
		c.mu.RUnlock()
		return site, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.site, nil
}

// LastError reports why the most recent reload failed, if it did.
func (c *SiteCache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
