package service

import (
	"context"
	"fmt"

	"catalog-picker/internal/catalog"
	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DetailEnricher fetches pricing and extended details for one product and
// merges them into a single view.
type DetailEnricher struct {
	client  catalog.Client
	pricing PricingCache
	logger  *zap.Logger
}

// NewDetailEnricher creates an enricher backed by client and pricing
func NewDetailEnricher(client catalog.Client, pricing PricingCache) *DetailEnricher {
	return &DetailEnricher{
		client:  client,
		pricing: pricing,
		logger:  util.Named("enricher"),
	}
}

// GetDetails returns the merged view for prod. Pricing comes from the cache
// when present; details are always fetched. Both fetches run to completion
// so a failure in one only leaves that part of the view empty.
func (e *DetailEnricher) GetDetails(ctx context.Context, prod models.Product) models.ProductDetails {
	ctx, span := util.StartSpan(ctx, "DetailEnricher.GetDetails", "identity", prod.Identity())
	defer span.End()

	identity := prod.Identity()
	var (
		g                     errgroup.Group
		pricing               *models.PricingRecord
		detail                *models.DetailRecord
		pricingErr, detailErr error
	)
	g.Go(func() error {
		pricing, pricingErr = e.loadPricing(ctx, identity)
		return pricingErr
	})
	g.Go(func() error {
		detail, detailErr = e.loadDetail(ctx, identity)
		return detailErr
	})
	if err := g.Wait(); err != nil {
		util.RecordError(span, err)
	}
	if pricingErr != nil {
		e.logger.Warn("Pricing unavailable", zap.String("identity", identity), zap.Error(pricingErr))
	}
	if detailErr != nil {
		e.logger.Warn("Details unavailable", zap.String("identity", identity), zap.Error(detailErr))
	}

	return mergeDetails(prod, pricing, detail)
}

// loadPricing returns the cached record for identity, fetching and caching
// it on a miss. A nil record with a nil error means the catalog has none.
func (e *DetailEnricher) loadPricing(ctx context.Context, identity string) (*models.PricingRecord, error) {
	if e.pricing != nil {
		rec, err := e.pricing.Get(ctx, identity)
		if err != nil {
			e.logger.Warn("Pricing cache lookup failed", zap.String("identity", identity), zap.Error(err))
		} else if rec != nil {
			util.PricingCacheHitsTotal.Inc()
			return rec, nil
		}
	}
	util.PricingCacheMissesTotal.Inc()

	records, err := e.client.FetchPricing(ctx, []string{identity})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing: %w", err)
	}
	rec := findPricing(records, identity)
	if rec == nil {
		return nil, nil
	}
	if e.pricing != nil {
		if err := e.pricing.Put(ctx, identity, *rec); err != nil {
			e.logger.Warn("Failed to cache pricing", zap.String("identity", identity), zap.Error(err))
		}
	}
	return rec, nil
}

func (e *DetailEnricher) loadDetail(ctx context.Context, identity string) (*models.DetailRecord, error) {
	records, err := e.client.FetchDetails(ctx, []string{identity})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details: %w", err)
	}
	for i := range records {
		if records[i].Identity() == identity {
			return &records[i], nil
		}
	}
	if len(records) == 1 {
		return &records[0], nil
	}
	return nil, nil
}

// findPricing picks the record for identity, accepting a lone record that
// carries no identity of its own.
func findPricing(records []models.PricingRecord, identity string) *models.PricingRecord {
	for i := range records {
		if records[i].Identity() == identity {
			return &records[i]
		}
	}
	if len(records) == 1 && records[0].Identity() == "" {
		return &records[0]
	}
	return nil
}

func mergeDetails(prod models.Product, pricing *models.PricingRecord, detail *models.DetailRecord) models.ProductDetails {
	var det, pri models.Indicators
	if detail != nil {
		det = detail.Indicators
	}
	if pricing != nil {
		pri = pricing.Indicators
	}

	return models.ProductDetails{
		Product: prod,
		Pricing: pricing,
		Detail:  detail,
		Flags: models.DisplayFlags{
			Authorized:   resolveFlag(models.FlagUnknown, det.AuthorizedToPurchase, prod.AuthorizedToPurchase, pri.AuthorizedToPurchase),
			Discontinued: resolveFlag(models.FlagNo, det.IsDiscontinued, prod.Discontinued, pri.IsDiscontinued),
			Digital:      resolveFlag(models.FlagNo, det.IsDigital, nil, pri.IsDigital),
			Licensed:     resolveFlag(models.FlagNo, det.IsLicensed, nil, pri.IsLicensed),
			ServiceSKU:   resolveFlag(models.FlagNo, det.IsServiceSKU, nil, pri.IsServiceSKU),
			Bundle:       resolveFlag(models.FlagNo, det.IsBundle, nil, pri.IsBundle),
			DirectShip:   resolveFlag(models.FlagNo, det.IsDirectShip, prod.DirectShip, pri.IsDirectShip),
			New:          resolveFlag(models.FlagNo, det.IsNew, prod.NewProduct, pri.IsNew),
		},
		Warehouses: availableWarehouses(pricing),
	}
}

// resolveFlag applies the precedence detail > catalog > pricing > default
func resolveFlag(def models.Flag, detail, catalogFlag, pricing *bool) models.Flag {
	for _, b := range []*bool{detail, catalogFlag, pricing} {
		if b != nil {
			return models.FlagOf(b, def)
		}
	}
	return def
}

// availableWarehouses keeps warehouses with stock. nil means there is no
// availability section to show.
func availableWarehouses(pricing *models.PricingRecord) []models.WarehouseAvailability {
	if pricing == nil || pricing.Availability == nil || pricing.Availability.TotalAvailability <= 0 {
		return nil
	}

	var out []models.WarehouseAvailability
	for _, w := range pricing.Availability.AvailabilityByWarehouse {
		if w.QuantityAvailable > 0 {
			out = append(out, w)
		}
	}
	return out
}
