package service

import (
	"context"

	"catalog-picker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) SearchManufacturers(ctx context.Context, term string) ([]string, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogClient) ListFilterValues(ctx context.Context, dim models.Dimension, params models.FilterParams) ([]string, error) {
	args := m.Called(ctx, dim, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogClient) ListProducts(ctx context.Context, query models.ProductQuery) (*models.ProductPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func (m *MockCatalogClient) FetchPricing(ctx context.Context, identities []string) ([]models.PricingRecord, error) {
	args := m.Called(ctx, identities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingRecord), args.Error(1)
}

func (m *MockCatalogClient) FetchDetails(ctx context.Context, identities []string) ([]models.DetailRecord, error) {
	args := m.Called(ctx, identities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DetailRecord), args.Error(1)
}

type MockHostNotifier struct {
	mock.Mock
}

func (m *MockHostNotifier) SendResult(ctx context.Context, sessionID, token string, payload models.SubmissionPayload) error {
	args := m.Called(ctx, sessionID, token, payload)
	return args.Error(0)
}

func transportErr(op string) error {
	return &models.TransportError{Op: op, Err: context.DeadlineExceeded}
}

func boolPtr(b bool) *bool {
	return &b
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func product(ingram, vpn, vendor string) models.Product {
	return models.Product{IngramPartNumber: ingram, VendorPartNumber: vpn, VendorName: vendor}
}

// fixedPage serves a fixed product list and is what the pager and the
// selection see as the current page.
type fixedPage struct {
	products []models.Product
}

func (f *fixedPage) Products() []models.Product {
	return f.products
}

func (f *fixedPage) Product(identity string) (models.Product, bool) {
	for _, p := range f.products {
		if p.Identity() == identity {
			return p, true
		}
	}
	return models.Product{}, false
}
