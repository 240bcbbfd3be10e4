package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

// MemoryCollection keeps records as JSON in insertion order. Encoding on
// write and decoding on read means callers never alias stored slices or maps.
type MemoryCollection[T any] struct {
	mu    sync.RWMutex
	kind  string
	order []string
	items map[string][]byte
}

// NewMemoryCollection creates an empty collection for one record kind
func NewMemoryCollection[T any](kind string) *MemoryCollection[T] {
	return &MemoryCollection[T]{kind: kind, items: map[string][]byte{}}
}

// List returns every record in insertion order
func (c *MemoryCollection[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		var v T
		if err := json.Unmarshal(c.items[id], &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", c.kind, id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Get returns the record or domain.ErrRecordNotFound
func (c *MemoryCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	if err := ctx.Err(); err != nil {
		return v, err
	}
	c.mu.RLock()
	raw, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return v, domain.ErrRecordNotFound
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s %s: %w", c.kind, id, err)
	}
	return v, nil
}

// Put inserts or replaces. Replacing keeps the original position.
func (c *MemoryCollection[T]) Put(ctx context.Context, id string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("cannot store %s without id", c.kind)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.kind, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = raw
	return nil
}

// Len returns the number of stored records
func (c *MemoryCollection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
