package model

import "sync"

// Cache loads a bundle on first use and keeps the first successful result
// for the life of the process. Failed loads are not cached, so the next
// call retries.
type Cache struct {
	mu     sync.Mutex
	load   func() (*Bundle, error)
	bundle *Bundle
}

// NewCache wraps load
func NewCache(load func() (*Bundle, error)) *Cache {
	return &Cache{load: load}
}

// Get returns the cached bundle, loading it if needed
func (c *Cache) Get() (*Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle != nil {
		return c.bundle, nil
	}
	b, err := c.load()
	if err != nil {
		return nil, err
	}
	c.bundle = b
	return b, nil
}

// Loaded reports whether a bundle has been loaded successfully
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bundle != nil
}
