package cache

import "time"

// LayeredCache is a memory cache in front of the persistent disk cache.
// The disk layer is authoritative for retention; memory promotions use a
// short TTL so an expired disk entry is never outlived by its shadow.
type LayeredCache struct {
	memory Cache
	disk   Cache
	memTTL time.Duration
}

// NewLayeredCache creates a new layered cache persisting under diskDir
func NewLayeredCache(diskDir string, memTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir),
		memTTL: memTTL,
	}
}

// Get retrieves a value, checking memory first, then disk
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, c.memTTL)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	memTTL := ttl
	if memTTL == 0 || memTTL > c.memTTL {
		memTTL = c.memTTL
	}
	if err := c.memory.Set(key, value, memTTL); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
