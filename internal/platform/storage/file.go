// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// # File Backend

// FileSlot persists the token value to a single file inside the profile
// directory. This is the default backend: the closest analog to the browser
// profile's localStorage.
type FileSlot struct {
	mu   sync.Mutex
	path string
}

// NewFileSlot creates a file-backed slot at profileDir/fileName.
// The profile directory is created on first write, not here, so that a
// read-only invocation never mutates the filesystem.
func NewFileSlot(profileDir, fileName string) *FileSlot {
	return &FileSlot{path: filepath.Join(profileDir, fileName)}
}

// Read returns the stored value, if any. A missing file is the valid
// absent state, not an error.
func (slot *FileSlot) Read(_ context.Context) (string, bool, error) {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	data, err := os.ReadFile(slot.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read token file: %w", err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		// An empty file counts as absent; logout truncation may leave one.
		return "", false, nil
	}
	return value, true, nil
}

// Write replaces the slot value wholesale.
//
// The write goes through a temp file + rename so a crash mid-write cannot
// leave a torn token on disk.
func (slot *FileSlot) Write(_ context.Context, value string) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	dir := filepath.Dir(slot.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("storage: create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("storage: create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: close token file: %w", err)
	}

	// Tokens are credentials: keep the file owner-only.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: chmod token file: %w", err)
	}

	if err := os.Rename(tmpName, slot.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: replace token file: %w", err)
	}
	return nil
}

// Clear removes the slot value. A missing file is already clear.
func (slot *FileSlot) Clear(_ context.Context) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if err := os.Remove(slot.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove token file: %w", err)
	}
	return nil
}
