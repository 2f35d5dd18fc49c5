package service

import (
	"context"
	"errors"
	"testing"

	"catalog-picker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetDetailsUsesCachedPricing(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryPricingCache()
	require.NoError(t, cache.Put(ctx, "IM1", models.PricingRecord{IngramPartNumber: "IM1", UPC: "012345"}))

	client := new(MockCatalogClient)
	client.On("FetchDetails", mock.Anything, []string{"IM1"}).
		Return([]models.DetailRecord{{IngramPartNumber: "IM1"}}, nil)

	details := NewDetailEnricher(client, cache).GetDetails(ctx, product("IM1", "A1", "Acme"))

	require.NotNil(t, details.Pricing)
	assert.Equal(t, "012345", details.Pricing.UPC)
	require.NotNil(t, details.Detail)
	client.AssertNotCalled(t, "FetchPricing", mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestGetDetailsFetchesAndCachesPricing(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryPricingCache()

	client := new(MockCatalogClient)
	client.On("FetchPricing", mock.Anything, []string{"IM1"}).
		Return([]models.PricingRecord{{IngramPartNumber: "IM1", Pricing: &models.Price{RetailPrice: price("19.99")}}}, nil).Once()
	client.On("FetchDetails", mock.Anything, []string{"IM1"}).
		Return([]models.DetailRecord{}, nil)

	enricher := NewDetailEnricher(client, cache)
	details := enricher.GetDetails(ctx, product("IM1", "A1", "Acme"))

	require.NotNil(t, details.Pricing)
	assert.Equal(t, "19.99", details.Pricing.RetailPrice().String())
	assert.Nil(t, details.Detail)
	assert.Equal(t, 1, cache.Len())

	// second inspection is served from the cache, details are fetched again
	enricher.GetDetails(ctx, product("IM1", "A1", "Acme"))
	client.AssertNumberOfCalls(t, "FetchPricing", 1)
	client.AssertNumberOfCalls(t, "FetchDetails", 2)
}

func TestGetDetailsPartialFailure(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("FetchPricing", mock.Anything, mock.Anything).Return(nil, transportErr("fetch_pricing"))
	client.On("FetchDetails", mock.Anything, mock.Anything).
		Return([]models.DetailRecord{{IngramPartNumber: "IM1", Indicators: models.Indicators{IsDigital: boolPtr(true)}}}, nil)

	details := NewDetailEnricher(client, NewMemoryPricingCache()).GetDetails(context.Background(), product("IM1", "A1", "Acme"))

	assert.Nil(t, details.Pricing)
	assert.Nil(t, details.Warehouses)
	require.NotNil(t, details.Detail)
	assert.Equal(t, models.FlagYes, details.Flags.Digital)
}

func TestGetDetailsBothFetchesFail(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("FetchPricing", mock.Anything, mock.Anything).Return(nil, transportErr("fetch_pricing"))
	client.On("FetchDetails", mock.Anything, mock.Anything).Return(nil, transportErr("fetch_details"))

	details := NewDetailEnricher(client, nil).GetDetails(context.Background(), product("IM1", "A1", "Acme"))

	assert.Nil(t, details.Pricing)
	assert.Nil(t, details.Detail)
	assert.Equal(t, models.FlagUnknown, details.Flags.Authorized)
	client.AssertExpectations(t)
}

func TestLoadersReturnFetchErrors(t *testing.T) {
	ctx := context.Background()
	client := new(MockCatalogClient)
	client.On("FetchPricing", mock.Anything, mock.Anything).Return(nil, transportErr("fetch_pricing"))
	client.On("FetchDetails", mock.Anything, mock.Anything).Return(nil, transportErr("fetch_details"))
	e := NewDetailEnricher(client, NewMemoryPricingCache())

	rec, err := e.loadPricing(ctx, "IM1")
	assert.Nil(t, rec)
	var te *models.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "fetch_pricing", te.Op)

	det, err := e.loadDetail(ctx, "IM1")
	assert.Nil(t, det)
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "fetch_details", te.Op)
}

func TestMergeDetailsFlagPrecedence(t *testing.T) {
	prod := product("IM1", "A1", "Acme")
	prod.Discontinued = boolPtr(false)
	prod.NewProduct = boolPtr(true)

	pricing := &models.PricingRecord{Indicators: models.Indicators{
		IsDiscontinued: boolPtr(true),
		IsBundle:       boolPtr(true),
		IsNew:          boolPtr(false),
		IsDirectShip:   boolPtr(true),
	}}
	detail := &models.DetailRecord{Indicators: models.Indicators{
		IsDirectShip: boolPtr(false),
	}}

	flags := mergeDetails(prod, pricing, detail).Flags

	assert.Equal(t, models.FlagNo, flags.Discontinued, "catalog beats pricing")
	assert.Equal(t, models.FlagYes, flags.New, "catalog beats pricing")
	assert.Equal(t, models.FlagNo, flags.DirectShip, "detail beats pricing")
	assert.Equal(t, models.FlagYes, flags.Bundle, "pricing used when nothing else")
	assert.Equal(t, models.FlagNo, flags.Digital)
	assert.Equal(t, models.FlagUnknown, flags.Authorized)
}

func TestAvailableWarehouses(t *testing.T) {
	tests := []struct {
		name    string
		pricing *models.PricingRecord
		want    []string
	}{
		{name: "no pricing"},
		{name: "no availability", pricing: &models.PricingRecord{}},
		{
			name: "zero total",
			pricing: &models.PricingRecord{Availability: &models.Availability{
				TotalAvailability:       0,
				AvailabilityByWarehouse: []models.WarehouseAvailability{{WarehouseID: "10", QuantityAvailable: 4}},
			}},
		},
		{
			name: "only stocked warehouses",
			pricing: &models.PricingRecord{Availability: &models.Availability{
				TotalAvailability: 7,
				AvailabilityByWarehouse: []models.WarehouseAvailability{
					{WarehouseID: "10", QuantityAvailable: 7},
					{WarehouseID: "20", QuantityAvailable: 0},
				},
			}},
			want: []string{"10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, w := range availableWarehouses(tt.pricing) {
				got = append(got, w.WarehouseID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
