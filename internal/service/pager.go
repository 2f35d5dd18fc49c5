package service

import (
	"context"
	"fmt"
	"sync"

	"catalog-picker/internal/catalog"
	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// DefaultPageSize is the number of products requested per page
const DefaultPageSize = 25

// CatalogPager drives paginated product retrieval and holds the current page
type CatalogPager struct {
	client   catalog.Client
	pricing  PricingCache
	pageSize int
	logger   *zap.Logger

	mu           sync.Mutex
	products     []models.Product
	page         int
	totalPages   int
	totalRecords int
	loaded       bool
	loading      bool
	status       *models.Status
	// generation is bumped by Reset and by every load so that a response
	// belonging to an older request can be recognised and dropped.
	generation uint64
}

// NewCatalogPager creates a pager. Pre-attached pricing is written to pricing.
func NewCatalogPager(client catalog.Client, pricing PricingCache, pageSize int) *CatalogPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CatalogPager{
		client:   client,
		pricing:  pricing,
		pageSize: pageSize,
		logger:   util.Named("pager"),
	}
}

// PageInfo is the pagination state needed by a presentation layer
type PageInfo struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasPrevious  bool `json:"hasPrevious"`
	HasNext      bool `json:"hasNext"`
	Loading      bool `json:"loading"`
}

// LoadPage fetches page n under filter and replaces the current product list
func (p *CatalogPager) LoadPage(ctx context.Context, n int, filter models.FilterSelection) error {
	if !filter.HasManufacturer() {
		return models.NewValidationError("manufacturer", "select a manufacturer first")
	}
	if n < 1 {
		return models.NewValidationError("page", fmt.Sprintf("page must be 1 or greater, got %d", n))
	}

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.loading = true
	p.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "CatalogPager.LoadPage", "manufacturer", filter.Manufacturer)
	defer span.End()

	result, err := p.client.ListProducts(ctx, models.ProductQuery{Filter: filter, Page: n, PageSize: p.pageSize})

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		util.StaleResponsesTotal.WithLabelValues("list_products").Inc()
		p.logger.Debug("Discarding stale product page", zap.Int("page", n))
		return nil
	}
	p.loading = false

	if err != nil {
		if !p.loaded {
			p.clearLocked()
		}
		p.status = &models.Status{Level: models.StatusError, Message: "Failed to load products. Please try again."}
		p.mu.Unlock()

		util.RecordError(span, err)
		p.logger.Error("Failed to load products", zap.Int("page", n), zap.Error(err))
		return fmt.Errorf("failed to load page %d: %w", n, err)
	}

	if len(result.Products) == 0 {
		p.clearLocked()
		p.status = &models.Status{Level: models.StatusInfo, Message: "No products found for the selected filters."}
		p.mu.Unlock()
		return nil
	}

	products := make([]models.Product, len(result.Products))
	copy(products, result.Products)
	sortByVendorPartNumber(products)

	p.products = products
	p.page = n
	if result.Page > 0 {
		p.page = result.Page
	}
	p.totalPages = result.TotalPages
	p.totalRecords = result.TotalRecords
	p.loaded = true
	p.status = nil
	p.mu.Unlock()

	p.cachePricing(ctx, products)
	return nil
}

func (p *CatalogPager) cachePricing(ctx context.Context, products []models.Product) {
	if p.pricing == nil {
		return
	}
	for _, prod := range products {
		if prod.PricingData == nil {
			continue
		}
		if err := p.pricing.Put(ctx, prod.Identity(), *prod.PricingData); err != nil {
			p.logger.Warn("Failed to cache pricing",
				zap.String("identity", prod.Identity()),
				zap.Error(err))
		}
	}
}

func (p *CatalogPager) clearLocked() {
	p.products = nil
	p.page = 0
	p.totalPages = 0
	p.totalRecords = 0
	p.loaded = false
}

// Reset clears the current page and invalidates any in-flight load
func (p *CatalogPager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.loading = false
	p.status = nil
	p.clearLocked()
}

// Products returns a copy of the current page's products in display order
func (p *CatalogPager) Products() []models.Product {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.Product, len(p.products))
	copy(out, p.products)
	return out
}

// Product looks up a product on the current page by identity
func (p *CatalogPager) Product(identity string) (models.Product, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, prod := range p.products {
		if prod.Identity() == identity {
			return prod, true
		}
	}
	return models.Product{}, false
}

// Page returns the current 1-based page, or 0 when nothing is loaded
func (p *CatalogPager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// HasPrevious reports whether a previous page exists
func (p *CatalogPager) HasPrevious() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page > 1
}

// HasNext reports whether a next page exists
func (p *CatalogPager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page > 0 && p.page < p.totalPages
}

// Info returns the pagination state
func (p *CatalogPager) Info() PageInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PageInfo{
		Page:         p.page,
		TotalPages:   p.totalPages,
		TotalRecords: p.totalRecords,
		HasPrevious:  p.page > 1,
		HasNext:      p.page > 0 && p.page < p.totalPages,
		Loading:      p.loading,
	}
}

// Status returns the latest pager status, or nil
func (p *CatalogPager) Status() *models.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == nil {
		return nil
	}
	st := *p.status
	return &st
}
