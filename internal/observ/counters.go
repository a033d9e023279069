package observ

import (
	"maps"
	"slices"
	"sync"
)

// Counters is a set of named totals shared by indexing workers.
type Counters struct {
	mu sync.Mutex
	m  map[string]int
}

func NewCounters() *Counters { return &Counters{m: make(map[string]int)} }

func (c *Counters) Add(name string, n int) {
	c.mu.Lock()
	c.m[name] += n
	c.mu.Unlock()
}

func (c *Counters) Get(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[name]
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.m)
}

// Names returns counter names in sorted order.
func (c *Counters) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.m))
}
