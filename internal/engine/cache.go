package engine

import (
	"sync"
	"sync/atomic"
)

// LoadFunc produces the table on first demand.
type LoadFunc func() (*ColumnStore, error)

// Cache holds the process-wide table. The first Get runs the loader; every
// later call, including concurrent first callers, gets the same result.
// A failed load is remembered: generation is attempted once per process.
type Cache struct {
	once  sync.Once
	load  LoadFunc
	store atomic.Pointer[ColumnStore]
	err   error
}

func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load}
}

// NewStaticCache wraps an already built table.
func NewStaticCache(cs *ColumnStore) *Cache {
	c := &Cache{}
	c.once.Do(func() { c.store.Store(cs) })
	return c
}

func (c *Cache) Get() (*ColumnStore, error) {
	c.once.Do(func() {
		cs, err := c.load()
		if err != nil {
			c.err = err
			return
		}
		c.store.Store(cs)
	})
	if c.err != nil {
		return nil, c.err
	}
	return c.store.Load(), nil
}

// Ready reports whether the table has been built. It never triggers a load.
func (c *Cache) Ready() bool {
	return c.store.Load() != nil
}
