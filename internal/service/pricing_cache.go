package service

import (
	"context"
	"sync"

	"catalog-picker/internal/models"
)

// PricingCache stores pricing records by product identity. Entries never
// expire; they are replaced only when a newer record is fetched.
// Get returns (nil, nil) on a miss.
type PricingCache interface {
	Get(ctx context.Context, identity string) (*models.PricingRecord, error)
	Put(ctx context.Context, identity string, record models.PricingRecord) error
}

// MemoryPricingCache is a process-local PricingCache
type MemoryPricingCache struct {
	mu      sync.RWMutex
	records map[string]models.PricingRecord
}

// NewMemoryPricingCache creates an empty in-memory pricing cache
func NewMemoryPricingCache() *MemoryPricingCache {
	return &MemoryPricingCache{records: make(map[string]models.PricingRecord)}
}

func (c *MemoryPricingCache) Get(_ context.Context, identity string) (*models.PricingRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[identity]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (c *MemoryPricingCache) Put(_ context.Context, identity string, record models.PricingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[identity] = record
	return nil
}

// Len returns the number of cached records
func (c *MemoryPricingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
