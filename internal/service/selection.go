package service

import (
	"sync"

	"catalog-picker/internal/models"
)

// pageSource is the view of the current page the selection needs
type pageSource interface {
	Products() []models.Product
	Product(identity string) (models.Product, bool)
}

// queueMembership reports whether an identity is already queued
type queueMembership interface {
	Contains(identity string) bool
}

// SelectionSet is the transient multi-select of the displayed page
type SelectionSet struct {
	page   pageSource
	queued queueMembership

	mu       sync.Mutex
	selected map[string]models.Product
}

// NewSelectionSet creates a selection bound to a page and a queue
func NewSelectionSet(page pageSource, queued queueMembership) *SelectionSet {
	return &SelectionSet{
		page:     page,
		queued:   queued,
		selected: make(map[string]models.Product),
	}
}

// Toggle selects or deselects one product of the current page. It returns
// false, changing nothing, when the identity is not on the page or when
// selecting an identity that is already queued.
func (s *SelectionSet) Toggle(identity string, selected bool) bool {
	prod, ok := s.page.Product(identity)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !selected {
		delete(s.selected, identity)
		return true
	}
	if s.queued.Contains(identity) {
		return false
	}
	s.selected[identity] = prod
	return true
}

// ToggleAll applies selected to every non-queued product of the current
// page and returns the number of products affected.
func (s *SelectionSet) ToggleAll(selected bool) int {
	products := s.page.Products()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, prod := range products {
		id := prod.Identity()
		if s.queued.Contains(id) {
			continue
		}
		if selected {
			s.selected[id] = prod
		} else {
			delete(s.selected, id)
		}
		n++
	}
	return n
}

// Clear empties the selection
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]models.Product)
}

// Size returns the number of selected products
func (s *SelectionSet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// CanCommit reports whether the commit-to-queue action is enabled
func (s *SelectionSet) CanCommit() bool {
	return s.Size() > 0
}

// IsSelected reports whether identity is selected
func (s *SelectionSet) IsSelected(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[identity]
	return ok
}

// Items returns the selected products in page display order. Selected
// products that have left the page are appended at the end.
func (s *SelectionSet) Items() []models.Product {
	products := s.page.Products()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.selected))
	seen := make(map[string]bool, len(s.selected))
	for _, prod := range products {
		id := prod.Identity()
		if sel, ok := s.selected[id]; ok && !seen[id] {
			out = append(out, sel)
			seen[id] = true
		}
	}
	for id, sel := range s.selected {
		if !seen[id] {
			out = append(out, sel)
		}
	}
	return out
}

// Identities returns the selected identities in page display order
func (s *SelectionSet) Identities() []string {
	items := s.Items()
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Identity()
	}
	return ids
}
