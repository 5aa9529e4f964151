// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage provides the persisted single-slot token storage.

It is the Go analog of the browser's localStorage usage in the web frontend:
one string value under one fixed key, surviving restarts within the same
profile. Login and logout fully overwrite the slot, so no partial-update race
is possible — writes are single values, never merges.

Core Responsibilities:

  - Single Slot: One addressable value; absence is a valid, non-error state.
  - Backends: file (default profile storage), redis (headless/bot
    deployments), memory (tests, incognito mode).
  - Synchronous contract: reads and writes are cheap enough to run on every
    route transition.
*/
package storage

import (
	"context"
	"sync"
)

// # Contract

// Slot is the persisted storage contract for the single token value.
// An empty slot reads as ("", false, nil): absence is never an error.
type Slot interface {

	/*
		Read returns the stored value, if any.

		Parameters:
		  - context: context.Context

		Returns:
		  - string: Stored value (empty when absent)
		  - bool: Whether a value was present
		  - error: Backend I/O failures only — never absence
	*/
	Read(context context.Context) (string, bool, error)

	/*
		Write replaces the slot value wholesale.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - error: Backend I/O failures
	*/
	Write(context context.Context, value string) error

	/*
		Clear removes the slot value. Clearing an absent value is a no-op.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Backend I/O failures
	*/
	Clear(context context.Context) error
}

// # In-Memory Backend

// MemorySlot is a process-local [Slot], used by tests and as the incognito
// backend. Zero value is ready to use.
type MemorySlot struct {
	mu      sync.RWMutex
	value   string
	present bool
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read returns the stored value, if any.
func (slot *MemorySlot) Read(_ context.Context) (string, bool, error) {
	slot.mu.RLock()
	defer slot.mu.RUnlock()
	return slot.value, slot.present, nil
}

// Write replaces the slot value wholesale.
func (slot *MemorySlot) Write(_ context.Context, value string) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.value = value
	slot.present = true
	return nil
}

// Clear removes the slot value.
func (slot *MemorySlot) Clear(_ context.Context) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.value = ""
	slot.present = false
	return nil
}
