// Package blobstore keeps snapshot blobs in object storage. S3Store talks
// to any S3-compatible backend (MinIO in development); MemoryStore backs
// tests and single-process setups.
package blobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/google/uuid"
)

// Store is the object storage used by the snapshot service. Get and Delete
// return common.ErrNotFound for unknown keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh object key, bucketed by upload day.
func NewKey(now time.Time) string {
	d := now.UTC()
	return fmt.Sprintf("snapshots/%d/%02d/%02d/%v.json.gz", d.Year(), d.Month(), d.Day(), uuid.New())
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return common.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
