package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-picker/internal/models"
	"catalog-picker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func newTestRouter(client *MockCatalogClient, host *MockHostNotifier, checks map[string]Pinger) (*gin.Engine, *service.Manager) {
	gin.SetMode(gin.TestMode)

	deps := service.SessionDeps{
		Client:             client,
		SearchDebounce:     20 * time.Millisecond,
		DefaultDistributor: models.DistributorIngram,
	}
	if host != nil {
		deps.Host = host
	}
	manager := service.NewManager(deps)
	router := gin.New()
	NewHandler(manager, checks).SetupRoutes(router)
	return router, manager
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	router, _ := newTestRouter(new(MockCatalogClient), nil, map[string]Pinger{"redis": stubPinger{}})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	router, _ = newTestRouter(new(MockCatalogClient), nil, map[string]Pinger{"postgres": stubPinger{err: errors.New("down")}})
	w = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "postgres")
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	router, _ := newTestRouter(new(MockCatalogClient), nil, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowseQueueAndSubmit(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("ListProducts", mock.Anything, mock.Anything).Return(&models.ProductPage{
		Products: []models.Product{
			{IngramPartNumber: "IM2", VendorPartNumber: "X2", VendorName: "Acme"},
			{IngramPartNumber: "IM1", VendorPartNumber: "X1", VendorName: "Acme"},
		},
		Page:         1,
		TotalPages:   1,
		TotalRecords: 2,
	}, nil)

	host := new(MockHostNotifier)
	host.On("SendResult", mock.Anything, mock.Anything, "tok-1", mock.MatchedBy(func(p models.SubmissionPayload) bool {
		return len(p.Products) == 1 && p.Products[0].ProductCode == "X1"
	})).Return(nil)

	router, _ := newTestRouter(client, host, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	base := "/api/v1/sessions/" + snap.SessionID

	w = doJSON(t, router, http.MethodGet, base+"/products?page=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "manufacturer required")

	w = doJSON(t, router, http.MethodPut, base+"/manufacturer", gin.H{"name": "Acme"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, base+"/products?page=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Products, 2)
	assert.Equal(t, "IM1", snap.Products[0].Identity)

	w = doJSON(t, router, http.MethodPost, base+"/selection", gin.H{"identity": "IM1", "selected": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":1`)

	w = doJSON(t, router, http.MethodPost, base+"/selection", gin.H{"identity": "IM1", "selected": true})
	assert.Equal(t, http.StatusConflict, w.Code, "queued products cannot be selected")

	w = doJSON(t, router, http.MethodPut, base+"/queue/order", gin.H{"identities": []string{"IM9"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "not connected")

	w = doJSON(t, router, http.MethodPost, base+"/host/ready", gin.H{"token": "tok-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payload models.SubmissionPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "Ingram Micro", payload.Products[0].LastSyncSource)
	host.AssertExpectations(t)
}

func TestFilterAndOptionsErrors(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("ListFilterValues", mock.Anything, models.DimensionCategory, mock.Anything).
		Return(nil, &models.TransportError{Op: "list_category", Err: errors.New("connection refused")})

	router, manager := newTestRouter(client, nil, nil)
	s := manager.Create()
	base := "/api/v1/sessions/" + s.ID()

	w := doJSON(t, router, http.MethodPut, base+"/filters/colour", gin.H{"value": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, base+"/filters/category", gin.H{"value": "Monitors"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "manufacturer required")

	s.SelectManufacturer("Acme")
	w = doJSON(t, router, http.MethodGet, base+"/options/category", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, router, http.MethodGet, base+"/options/keyword", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisabledDistributorKeepsCurrent(t *testing.T) {
	router, manager := newTestRouter(new(MockCatalogClient), nil, nil)
	s := manager.Create()

	w := doJSON(t, router, http.MethodPut, "/api/v1/sessions/"+s.ID()+"/distributor", gin.H{"id": models.DistributorDH})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DistributorIngram, s.Distributor().ID)

	w = doJSON(t, router, http.MethodPut, "/api/v1/sessions/"+s.ID()+"/distributor", gin.H{"id": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManufacturerSearchIsDebounced(t *testing.T) {
	client := new(MockCatalogClient)
	client.On("SearchManufacturers", mock.Anything, "acm").Return([]string{"Acme"}, nil).Once()
	client.On("SearchManufacturers", mock.Anything, "ac").Return([]string{"Acme", "Acorn"}, nil).Maybe()

	router, manager := newTestRouter(client, nil, nil)
	s := manager.Create()
	defer manager.CloseAll()
	base := "/api/v1/sessions/" + s.ID()

	w := doJSON(t, router, http.MethodPost, base+"/manufacturers/search", gin.H{"term": "ac"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = doJSON(t, router, http.MethodPost, base+"/manufacturers/search", gin.H{"term": "acm"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		w := doJSON(t, router, http.MethodGet, base+"/manufacturers", nil)
		var resp struct {
			Manufacturers []string `json:"manufacturers"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		return len(resp.Manufacturers) == 1 && resp.Manufacturers[0] == "Acme"
	}, time.Second, 10*time.Millisecond)

	w = doJSON(t, router, http.MethodPost, base+"/manufacturers/search", gin.H{"term": "a"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"manufacturers":[]`)
}
