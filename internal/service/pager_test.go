package service

import (
	"context"
	"testing"

	"catalog-picker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var acme = models.FilterSelection{Manufacturer: "Acme"}

func pageOf(page, totalPages, totalRecords int, products ...models.Product) *models.ProductPage {
	return &models.ProductPage{Products: products, Page: page, TotalPages: totalPages, TotalRecords: totalRecords}
}

func TestLoadPageSortsNaturallyAndKeepsTotals(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, models.ProductQuery{Filter: acme, Page: 2, PageSize: 10}).
		Return(pageOf(2, 3, 27,
			product("IM10", "A10", "Acme"),
			product("IM2", "A2", "Acme"),
			product("IM1", "A1", "Acme"),
		), nil)

	pager := NewCatalogPager(client, NewMemoryPricingCache(), 10)
	require.NoError(t, pager.LoadPage(context.Background(), 2, acme))

	var vpns []string
	for _, p := range pager.Products() {
		vpns = append(vpns, p.VendorPartNumber)
	}
	assert.Equal(t, []string{"A1", "A2", "A10"}, vpns)

	info := pager.Info()
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 27, info.TotalRecords)
	assert.True(t, info.HasPrevious)
	assert.True(t, info.HasNext)
	assert.Nil(t, pager.Status())
}

func TestLoadPageBoundaries(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, mock.Anything).
		Return(pageOf(1, 1, 2, product("IM1", "A1", "Acme"), product("IM2", "A2", "Acme")), nil)

	pager := NewCatalogPager(client, nil, 0)
	require.NoError(t, pager.LoadPage(context.Background(), 1, acme))

	assert.False(t, pager.HasPrevious())
	assert.False(t, pager.HasNext())
}

func TestLoadPageValidation(t *testing.T) {
	client := new(MockCatalogClient)
	pager := NewCatalogPager(client, nil, 0)
	ctx := context.Background()

	assert.True(t, models.IsValidation(pager.LoadPage(ctx, 1, models.FilterSelection{})))
	assert.True(t, models.IsValidation(pager.LoadPage(ctx, 0, acme)))
	assert.True(t, models.IsValidation(pager.LoadPage(ctx, -3, acme)))
	client.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestLoadPageEmptyResultIsInformational(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, mock.Anything).Return(pageOf(1, 0, 0), nil)

	pager := NewCatalogPager(client, nil, 0)
	require.NoError(t, pager.LoadPage(context.Background(), 1, acme))

	assert.Empty(t, pager.Products())
	require.NotNil(t, pager.Status())
	assert.Equal(t, models.StatusInfo, pager.Status().Level)
}

func TestLoadPageFailure(t *testing.T) {
	t.Run("first load clears", func(t *testing.T) {
		client := new(MockCatalogClient)
		client.On("ListProducts", mock.Anything, mock.Anything).Return(nil, transportErr("list_products"))

		pager := NewCatalogPager(client, nil, 0)
		err := pager.LoadPage(context.Background(), 1, acme)

		assert.True(t, models.IsTransport(err))
		assert.Empty(t, pager.Products())
		assert.Equal(t, models.StatusError, pager.Status().Level)
	})

	t.Run("later load keeps list", func(t *testing.T) {
		client := new(MockCatalogClient)
		client.On("ListProducts", mock.Anything, mock.MatchedBy(func(q models.ProductQuery) bool { return q.Page == 1 })).
			Return(pageOf(1, 2, 30, product("IM1", "A1", "Acme")), nil)
		client.On("ListProducts", mock.Anything, mock.MatchedBy(func(q models.ProductQuery) bool { return q.Page == 2 })).
			Return(nil, transportErr("list_products"))

		pager := NewCatalogPager(client, nil, 0)
		ctx := context.Background()
		require.NoError(t, pager.LoadPage(ctx, 1, acme))
		err := pager.LoadPage(ctx, 2, acme)

		assert.True(t, models.IsTransport(err))
		assert.Len(t, pager.Products(), 1)
		assert.Equal(t, 1, pager.Page())
		assert.Equal(t, 2, pager.Info().TotalPages)
	})
}

func TestLoadPageCachesAttachedPricing(t *testing.T) {
	withPricing := product("IM1", "A1", "Acme")
	withPricing.PricingData = &models.PricingRecord{IngramPartNumber: "IM1", UPC: "012345"}

	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, mock.Anything).
		Return(pageOf(1, 1, 2, withPricing, product("IM2", "A2", "Acme")), nil)

	cache := NewMemoryPricingCache()
	pager := NewCatalogPager(client, cache, 0)
	require.NoError(t, pager.LoadPage(context.Background(), 1, acme))

	assert.Equal(t, 1, cache.Len())
	rec, err := cache.Get(context.Background(), "IM1")
	require.NoError(t, err)
	assert.Equal(t, "012345", rec.UPC)
}

func TestResetDropsInFlightPage(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(pageOf(1, 1, 1, product("IM1", "A1", "Acme")), nil).Once()

	pager := NewCatalogPager(client, nil, 0)
	done := make(chan error, 1)
	go func() {
		done <- pager.LoadPage(context.Background(), 1, acme)
	}()

	<-started
	pager.Reset()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, pager.Products())
	assert.Equal(t, 0, pager.Page())
}
