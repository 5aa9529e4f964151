// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import "sync"

// # Count Aggregator

// Counts tracks independent numeric counters per entity id.
//
// # Why separate from the relationship maps?
//
// A count is displayable without the matching per-item relationship state: a
// catalog list response already carries favorite totals, and rendering them
// must not require fetching the viewer's own booleans first. Counts are
// therefore never recomputed from the interaction maps — they move only by
// paired ±1 steps issued by toggle transitions, or by [Seed] from a bulk
// response.
type Counts struct {
	mu     sync.Mutex
	counts map[int64]int64
}

// NewCounts creates an empty counter set.
func NewCounts() *Counts {
	return &Counts{counts: make(map[int64]int64)}
}

// Increment steps the entity's counter up by one.
func (c *Counts) Increment(entityID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[entityID]++
}

// Decrement steps the entity's counter down by one, clamped at zero, and
// reports whether the counter actually moved.
//
// The clamp covers the seed-free case: a decrement against an id that was
// never seeded or incremented must not display as -1. The return value lets
// a rollback reverse only movements that happened — a clamped decrement
// performed nothing and owes nothing back.
func (c *Counts) Decrement(entityID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[entityID] == 0 {
		return false
	}
	c.counts[entityID]--
	return true
}

// Get returns the entity's counter; unseen ids read as zero.
func (c *Counts) Get(entityID int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[entityID]
}

// Seed installs an absolute value, typically from a list response that
// already carries totals. Negative input clamps to zero.
func (c *Counts) Seed(entityID, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value < 0 {
		value = 0
	}
	c.counts[entityID] = value
}

// Reset drops every counter.
func (c *Counts) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[int64]int64)
}
