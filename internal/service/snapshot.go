package service

import "catalog-picker/internal/models"

// ProductRow is one displayed product with its selection state. Queued rows
// cannot be selected.
type ProductRow struct {
	Identity string         `json:"identity"`
	Product  models.Product `json:"product"`
	Selected bool           `json:"selected"`
	Queued   bool           `json:"queued"`
}

// Snapshot is everything a presentation layer needs to render a session
type Snapshot struct {
	SessionID           string                 `json:"sessionId"`
	Connected           bool                   `json:"connected"`
	Distributor         models.Distributor     `json:"distributor"`
	Distributors        []models.Distributor   `json:"distributors"`
	Filter              models.FilterSelection `json:"filter"`
	Categories          []string               `json:"categories"`
	Subcategories       []string               `json:"subcategories"`
	Suggestions         []string               `json:"suggestions"`
	Products            []ProductRow           `json:"products"`
	Page                PageInfo               `json:"pagination"`
	SelectionCount      int                    `json:"selectionCount"`
	CanCommit           bool                   `json:"canCommit"`
	Queue               []models.QueueEntry    `json:"queue"`
	GroupByManufacturer bool                   `json:"groupByManufacturer"`
	QueueGroups         []models.QueueGroup    `json:"queueGroups,omitempty"`
	Details             *models.ProductDetails `json:"details,omitempty"`
	Status              *models.Status         `json:"status,omitempty"`
}

// Snapshot captures the current state of the session
func (s *Session) Snapshot() Snapshot {
	products := s.pager.Products()
	rows := make([]ProductRow, len(products))
	for i, p := range products {
		id := p.Identity()
		rows[i] = ProductRow{
			Identity: id,
			Product:  p,
			Selected: s.selection.IsSelected(id),
			Queued:   s.queue.Contains(id),
		}
	}

	selCount := s.selection.Size()
	snap := Snapshot{
		SessionID:      s.id,
		Distributors:   models.Distributors,
		Filter:         s.filters.Selection(),
		Categories:     s.filters.Options(models.DimensionCategory),
		Subcategories:  s.filters.Options(models.DimensionSubcategory),
		Suggestions:    s.ManufacturerSuggestions(),
		Products:       rows,
		Page:           s.pager.Info(),
		SelectionCount: selCount,
		CanCommit:      selCount > 0,
		Queue:          s.queue.Entries(),
	}

	s.mu.Lock()
	snap.Connected = s.token != ""
	snap.Distributor = s.distributor
	snap.GroupByManufacturer = s.groupByManufacturer
	snap.Details = s.details
	if s.status != nil {
		st := *s.status
		snap.Status = &st
	}
	s.mu.Unlock()

	if snap.GroupByManufacturer {
		snap.QueueGroups = s.queue.Groups(snap.Filter.Manufacturer)
	}
	return snap
}
