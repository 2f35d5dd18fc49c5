package service

import (
	"testing"

	"catalog-picker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSubmission(t *testing.T) {
	ingram, _ := models.LookupDistributor(models.DistributorIngram)
	filter := models.FilterSelection{Manufacturer: "Acme", Category: "Monitors", Subcategory: "LCD"}

	withPricing := models.Product{
		IngramPartNumber: "IM1",
		VendorPartNumber: "X1",
		Description:      "Widget",
		VendorName:       "Acme",
		UPC:              "999",
		Category:         "Displays",
	}
	pricing := &models.PricingRecord{
		UPC:         "012345",
		Description: "Long widget",
		Pricing:     &models.Price{RetailPrice: price("19.99")},
	}

	bare := models.Product{
		IngramPartNumber:  "IM2",
		VendorPartNumber:  "X2",
		LongDescription:   "Own description",
		UPC:               "777",
		CachedRetailPrice: price("5.50"),
	}

	noPrice := models.Product{IngramPartNumber: "IM3", VendorPartNumber: "X3"}

	records := BuildSubmission([]models.QueueEntry{
		{Product: withPricing, Pricing: pricing, Position: 1},
		{Product: bare, Position: 2},
		{Product: noPrice, Position: 3},
	}, filter, ingram)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "X1", first.ProductCode)
	assert.Equal(t, "Widget", first.ProductName)
	assert.Equal(t, "Acme", first.Manufacturer)
	assert.Equal(t, "IM1", first.IngramMicroSKU)
	require.NotNil(t, first.MSRP)
	assert.InDelta(t, 19.99, *first.MSRP, 0.0001)
	assert.Equal(t, "Displays", first.Category)
	assert.Equal(t, "LCD", first.Subcategory)
	assert.Equal(t, "012345", first.UPC)
	assert.Equal(t, "Long widget", first.Description)
	assert.Equal(t, "Ingram Micro", first.LastSyncSource)
	assert.Equal(t, 1, first.Quantity)

	second := records[1]
	assert.Equal(t, "Acme", second.Manufacturer)
	assert.Equal(t, "Monitors", second.Category)
	assert.Equal(t, "777", second.UPC)
	assert.Equal(t, "Own description", second.Description)
	require.NotNil(t, second.MSRP)
	assert.InDelta(t, 5.5, *second.MSRP, 0.0001)

	assert.Nil(t, records[2].MSRP)
	assert.Equal(t, 1, records[2].Quantity)
}

func TestBuildSubmissionFallsBackToAttachedPricing(t *testing.T) {
	prod := product("IM1", "X1", "Acme")
	prod.PricingData = &models.PricingRecord{UPC: "555", Pricing: &models.Price{RetailPrice: price("10")}}

	records := BuildSubmission([]models.QueueEntry{{Product: prod}}, models.FilterSelection{}, models.Distributor{Name: "Ingram Micro"})

	require.Len(t, records, 1)
	assert.Equal(t, "555", records[0].UPC)
	assert.InDelta(t, 10.0, *records[0].MSRP, 0.0001)
}
