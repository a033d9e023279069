package hir

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// interner hands out dense ids for locations. Ids start at 1 and are never
// reused, so they stay valid across revisions as long as the location does.
type interner[ID ~uint32, L comparable] struct {
	mu    sync.RWMutex
	byLoc map[L]ID
	locs  []L
}

func newInterner[ID ~uint32, L comparable]() *interner[ID, L] {
	var zero L
	return &interner[ID, L]{byLoc: make(map[L]ID), locs: []L{zero}}
}

func (in *interner[ID, L]) intern(loc L) ID {
	in.mu.RLock()
	id, ok := in.byLoc[loc]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.byLoc[loc]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.locs))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id = ID(n)
	in.locs = append(in.locs, loc)
	in.byLoc[loc] = id
	return id
}

func (in *interner[ID, L]) lookup(id ID) L {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == 0 || int(id) >= len(in.locs) {
		panic(fmt.Sprintf("hir: lookup of unknown id %d", id))
	}
	return in.locs[id]
}

func (in *interner[ID, L]) len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.locs) - 1
}
