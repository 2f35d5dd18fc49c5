package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// Queue is the ordered, de-duplicated list of products chosen for
// submission. It survives filter and page changes.
type Queue struct {
	pricing PricingCache
	logger  *zap.Logger

	mu      sync.Mutex
	entries []models.QueueEntry
}

// NewQueue creates an empty queue. Known pricing is merged from pricing on commit.
func NewQueue(pricing PricingCache) *Queue {
	return &Queue{
		pricing: pricing,
		logger:  util.Named("queue"),
	}
}

// Commit appends every product not yet queued and returns how many were added
func (q *Queue) Commit(ctx context.Context, products []models.Product) int {
	enriched := make([]models.QueueEntry, 0, len(products))
	for _, prod := range products {
		enriched = append(enriched, models.QueueEntry{
			Product: prod,
			Pricing: q.knownPricing(ctx, prod),
		})
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	present := make(map[string]bool, len(q.entries))
	for _, e := range q.entries {
		present[e.Identity()] = true
	}

	added := 0
	for _, e := range enriched {
		id := e.Identity()
		if id == "" || present[id] {
			continue
		}
		present[id] = true
		q.entries = append(q.entries, e)
		added++
	}
	q.renumberLocked()

	util.QueueCommitsTotal.Inc()
	util.QueueEntriesAddedTotal.Add(float64(added))
	return added
}

// knownPricing returns the pricing already known for prod: the cached
// record first, then the record attached to the product itself.
func (q *Queue) knownPricing(ctx context.Context, prod models.Product) *models.PricingRecord {
	if q.pricing != nil {
		rec, err := q.pricing.Get(ctx, prod.Identity())
		if err != nil {
			q.logger.Warn("Pricing cache lookup failed",
				zap.String("identity", prod.Identity()),
				zap.Error(err))
		} else if rec != nil {
			return rec
		}
	}
	if prod.PricingData != nil {
		rec := *prod.PricingData
		return &rec
	}
	return nil
}

// UpdatePricing attaches a freshly fetched pricing record to a queued entry
func (q *Queue) UpdatePricing(identity string, rec models.PricingRecord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.entries {
		if q.entries[i].Identity() == identity {
			cp := rec
			q.entries[i].Pricing = &cp
			return true
		}
	}
	return false
}

// Remove deletes the entry with the given identity, preserving order
func (q *Queue) Remove(identity string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.Identity() == identity {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.renumberLocked()
			return true
		}
	}
	return false
}

// Clear empties the queue
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}

// Contains reports whether identity is queued
func (q *Queue) Contains(identity string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.Identity() == identity {
			return true
		}
	}
	return false
}

// Len returns the number of queued entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a copy of the queue in order
func (q *Queue) Entries() []models.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Identities returns the queued identities in order
func (q *Queue) Identities() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, len(q.entries))
	for i, e := range q.entries {
		ids[i] = e.Identity()
	}
	return ids
}

// Reorder replaces the ordering with order, which must be a permutation of
// the queued identities. Anything else means the caller's view diverged from
// the queue; the queue is left untouched and an InvariantError is returned.
func (q *Queue) Reorder(order []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(order) != len(q.entries) {
		return q.mismatchLocked(fmt.Sprintf("reorder has %d identities, queue has %d", len(order), len(q.entries)))
	}

	byID := make(map[string]models.QueueEntry, len(q.entries))
	for _, e := range q.entries {
		byID[e.Identity()] = e
	}

	reordered := make([]models.QueueEntry, 0, len(order))
	for _, id := range order {
		e, ok := byID[id]
		if !ok {
			return q.mismatchLocked(fmt.Sprintf("identity %q is not queued or repeated", id))
		}
		delete(byID, id)
		reordered = append(reordered, e)
	}

	q.entries = reordered
	q.renumberLocked()
	return nil
}

// ReorderByGroupOrder re-derives the ordering by concatenating, for each
// manufacturer in groupOrder, that manufacturer's entries in their existing
// relative order. groupOrder must be a permutation of the current group names.
func (q *Queue) ReorderByGroupOrder(groupOrder []string, fallbackManufacturer string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	groups := make(map[string][]models.QueueEntry)
	for _, e := range q.entries {
		name := e.Manufacturer(fallbackManufacturer)
		groups[name] = append(groups[name], e)
	}

	if len(groupOrder) != len(groups) {
		return q.mismatchLocked(fmt.Sprintf("group order has %d manufacturers, queue has %d", len(groupOrder), len(groups)))
	}

	reordered := make([]models.QueueEntry, 0, len(q.entries))
	for _, name := range groupOrder {
		entries, ok := groups[name]
		if !ok {
			return q.mismatchLocked(fmt.Sprintf("manufacturer %q is not queued or repeated", name))
		}
		delete(groups, name)
		reordered = append(reordered, entries...)
	}

	q.entries = reordered
	q.renumberLocked()
	return nil
}

// Groups projects the queue by manufacturer. Groups are sorted by name and
// keep queue order internally; the queue itself is not modified.
func (q *Queue) Groups(fallbackManufacturer string) []models.QueueGroup {
	q.mu.Lock()
	defer q.mu.Unlock()

	index := make(map[string]int)
	var groups []models.QueueGroup
	for _, e := range q.entries {
		name := e.Manufacturer(fallbackManufacturer)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, models.QueueGroup{Manufacturer: name})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Manufacturer < groups[j].Manufacturer
	})
	return groups
}

func (q *Queue) mismatchLocked(msg string) error {
	q.logger.Error("Queue reorder rejected", zap.String("reason", msg), zap.Int("queue_len", len(q.entries)))
	return &models.InvariantError{Message: msg}
}

func (q *Queue) renumberLocked() {
	for i := range q.entries {
		q.entries[i].Position = i + 1
	}
}
