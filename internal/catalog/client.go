package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// MinSearchLength is the shortest manufacturer search term the service accepts
const MinSearchLength = 2

// Client is the contract with the remote catalog service
type Client interface {
	SearchManufacturers(ctx context.Context, term string) ([]string, error)
	ListFilterValues(ctx context.Context, dim models.Dimension, params models.FilterParams) ([]string, error)
	ListProducts(ctx context.Context, query models.ProductQuery) (*models.ProductPage, error)
	FetchPricing(ctx context.Context, identities []string) ([]models.PricingRecord, error)
	FetchDetails(ctx context.Context, identities []string) ([]models.DetailRecord, error)
}

// HTTPClient talks to the catalog service over HTTP/JSON
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates a catalog client for the given base URL
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     util.Named("catalog"),
	}
}

type manufacturersResponse struct {
	Manufacturers []string `json:"manufacturers"`
}

type valuesResponse struct {
	Values []string `json:"values"`
}

type identitiesRequest struct {
	Identities []string `json:"identities"`
}

type pricingResponse struct {
	Records []models.PricingRecord `json:"records"`
}

type detailsResponse struct {
	Records []models.DetailRecord `json:"records"`
}

// SearchManufacturers returns manufacturer names containing term
func (c *HTTPClient) SearchManufacturers(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSearchLength {
		return nil, models.NewValidationError("search", fmt.Sprintf("at least %d characters required", MinSearchLength))
	}

	q := url.Values{}
	q.Set("search", term)

	var resp manufacturersResponse
	if err := c.do(ctx, "search_manufacturers", http.MethodGet, "/manufacturers", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Manufacturers, nil
}

// ListFilterValues returns the distinct values of a dimension under params
func (c *HTTPClient) ListFilterValues(ctx context.Context, dim models.Dimension, params models.FilterParams) ([]string, error) {
	if dim != models.DimensionCategory && dim != models.DimensionSubcategory {
		return nil, models.NewValidationError("dimension", fmt.Sprintf("%q has no remote values", dim))
	}
	if strings.TrimSpace(params.Manufacturer) == "" {
		return nil, models.NewValidationError("manufacturer", "manufacturer is required")
	}

	q := url.Values{}
	q.Set("manufacturer", params.Manufacturer)
	setIf(q, "category", params.Category)
	setIf(q, "subCategory", params.Subcategory)
	setIf(q, "type", params.SKUType)

	var resp valuesResponse
	if err := c.do(ctx, "list_"+string(dim), http.MethodGet, "/filters/"+string(dim), q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// ListProducts fetches one page of products with pricing pre-attached
func (c *HTTPClient) ListProducts(ctx context.Context, query models.ProductQuery) (*models.ProductPage, error) {
	f := query.Filter
	q := url.Values{}
	q.Set("manufacturer", f.Manufacturer)
	setIf(q, "category", f.Category)
	setIf(q, "subCategory", f.Subcategory)
	setIf(q, "type", f.SKUType)
	setIf(q, "keyword", f.Keyword)
	q.Set("page", strconv.Itoa(query.Page))
	if query.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(query.PageSize))
	}

	var page models.ProductPage
	if err := c.do(ctx, "list_products", http.MethodGet, "/products", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPricing fetches pricing records for the given identities
func (c *HTTPClient) FetchPricing(ctx context.Context, identities []string) ([]models.PricingRecord, error) {
	var resp pricingResponse
	if err := c.do(ctx, "fetch_pricing", http.MethodPost, "/pricing", nil, identitiesRequest{Identities: identities}, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// FetchDetails fetches extended detail records for the given identities
func (c *HTTPClient) FetchDetails(ctx context.Context, identities []string) ([]models.DetailRecord, error) {
	var resp detailsResponse
	if err := c.do(ctx, "fetch_details", http.MethodPost, "/details", nil, identitiesRequest{Identities: identities}, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// do performs one request and decodes the JSON response into out.
// Every failure is returned as a *models.TransportError.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, payload, out interface{}) (err error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient."+op, "http.method", method, "catalog.path", path)
	defer span.End()

	start := time.Now()
	defer func() {
		util.CatalogRequestLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
			util.RecordError(span, err)
			c.logger.Warn("Catalog request failed", zap.String("operation", op), zap.Error(err))
		}
		util.CatalogRequestsTotal.WithLabelValues(op, outcome).Inc()
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &models.TransportError{Op: op, Err: fmt.Errorf("failed to marshal payload: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &models.TransportError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func setIf(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
