package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catalog-picker/internal/catalog"
	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// FilterState holds the active filter and the option lists of the remote
// dimensions (category, subcategory), together with the parameter tuple each
// list was last loaded under.
type FilterState struct {
	client catalog.Client
	logger *zap.Logger

	mu         sync.Mutex
	selection  models.FilterSelection
	options    map[models.Dimension][]string
	paramCache map[models.Dimension]string
	loading    map[models.Dimension]bool
	errs       map[models.Dimension]error
}

// NewFilterState creates an empty filter state
func NewFilterState(client catalog.Client) *FilterState {
	return &FilterState{
		client:     client,
		logger:     util.Named("filters"),
		options:    make(map[models.Dimension][]string),
		paramCache: make(map[models.Dimension]string),
		loading:    make(map[models.Dimension]bool),
		errs:       make(map[models.Dimension]error),
	}
}

func isRemoteDimension(dim models.Dimension) bool {
	return dim == models.DimensionCategory || dim == models.DimensionSubcategory
}

// Selection returns a copy of the active filter
func (f *FilterState) Selection() models.FilterSelection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection
}

// SetManufacturer replaces the manufacturer and resets every downstream
// filter, option list and cached parameter tuple. A blank name resets the
// filter to empty.
func (f *FilterState) SetManufacturer(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selection = models.FilterSelection{Manufacturer: strings.TrimSpace(name)}
	for _, dim := range []models.Dimension{models.DimensionCategory, models.DimensionSubcategory} {
		delete(f.options, dim)
		delete(f.paramCache, dim)
		delete(f.errs, dim)
	}
}

// SetDimension sets one downstream filter value
func (f *FilterState) SetDimension(dim models.Dimension, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.selection.HasManufacturer() {
		return models.NewValidationError("manufacturer", "select a manufacturer first")
	}

	value = strings.TrimSpace(value)
	switch dim {
	case models.DimensionCategory:
		f.selection.Category = value
		f.selection.Subcategory = ""
		delete(f.options, models.DimensionSubcategory)
		delete(f.paramCache, models.DimensionSubcategory)
	case models.DimensionSubcategory:
		f.selection.Subcategory = value
	case models.DimensionType:
		f.selection.SKUType = value
		delete(f.paramCache, models.DimensionCategory)
		delete(f.paramCache, models.DimensionSubcategory)
	case models.DimensionKeyword:
		f.selection.Keyword = value
	default:
		return models.NewValidationError("dimension", fmt.Sprintf("unknown dimension %q", dim))
	}
	return nil
}

// Options returns the loaded option list for a remote dimension
func (f *FilterState) Options(dim models.Dimension) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	opts := f.options[dim]
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// Loading reports whether a load for dim is in flight
func (f *FilterState) Loading(dim models.Dimension) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading[dim]
}

// LastError returns the error of the last failed load of dim, if any
func (f *FilterState) LastError(dim models.Dimension) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[dim]
}

// LoadDimensionOptions loads the option list of dim unless a load is in
// flight or the list was already loaded under the current parameters. It is
// cheap to call repeatedly.
func (f *FilterState) LoadDimensionOptions(ctx context.Context, dim models.Dimension) error {
	if !isRemoteDimension(dim) {
		return models.NewValidationError("dimension", fmt.Sprintf("%q has no option list", dim))
	}

	f.mu.Lock()
	if !f.selection.HasManufacturer() {
		f.mu.Unlock()
		return models.NewValidationError("manufacturer", "select a manufacturer first")
	}
	key := f.selection.ParamKey(dim)
	if f.loading[dim] {
		f.mu.Unlock()
		util.FilterLoadsSkippedTotal.WithLabelValues(string(dim), "in_flight").Inc()
		return nil
	}
	if cached, ok := f.paramCache[dim]; ok && cached == key {
		f.mu.Unlock()
		util.FilterLoadsSkippedTotal.WithLabelValues(string(dim), "cached").Inc()
		return nil
	}
	f.loading[dim] = true
	params := f.selection.Params(dim)
	f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "FilterState.LoadDimensionOptions", "dimension", string(dim))
	defer span.End()

	values, err := f.client.ListFilterValues(ctx, dim, params)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading[dim] = false

	if current := f.selection.ParamKey(dim); current != key {
		util.StaleResponsesTotal.WithLabelValues("list_" + string(dim)).Inc()
		f.logger.Debug("Discarding stale filter options",
			zap.String("dimension", string(dim)),
			zap.String("requested", key),
			zap.String("current", current),
			zap.Bool("failed", err != nil))
		return nil
	}

	if err != nil {
		f.errs[dim] = err
		util.RecordError(span, err)
		f.logger.Error("Failed to load filter options",
			zap.String("dimension", string(dim)),
			zap.String("params", key),
			zap.Error(err))
		return fmt.Errorf("failed to load %s options: %w", dim, err)
	}

	f.options[dim] = values
	f.paramCache[dim] = key
	delete(f.errs, dim)
	return nil
}
