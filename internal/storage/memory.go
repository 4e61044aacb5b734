package storage

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
)

// MemoryAdapter keeps documents in process memory
type MemoryAdapter struct {
	mu       sync.Mutex
	docs     map[string][]byte
	writes   int
	writeErr error
	readErr  error
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{docs: make(map[string][]byte)}
}

// Seed stores a document without counting it as a write
func (a *MemoryAdapter) Seed(name string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[name] = append([]byte(nil), data...)
}

// FailWrites makes every following Write return err without storing
// anything. A nil err restores normal behavior.
func (a *MemoryAdapter) FailWrites(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeErr = err
}

// FailReads makes every following Read return err
func (a *MemoryAdapter) FailReads(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readErr = err
}

// Writes returns the number of successful writes
func (a *MemoryAdapter) Writes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

func (a *MemoryAdapter) Location() string {
	return "memory"
}

func (a *MemoryAdapter) Exists(ctx context.Context, name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.docs[name]
	return ok, nil
}

func (a *MemoryAdapter) Read(ctx context.Context, name string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.readErr != nil {
		return nil, a.readErr
	}
	data, ok := a.docs[name]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (a *MemoryAdapter) Write(ctx context.Context, name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.writeErr != nil {
		return a.writeErr
	}
	a.docs[name] = append([]byte(nil), data...)
	a.writes++
	return nil
}

func (a *MemoryAdapter) Close() error {
	return nil
}
