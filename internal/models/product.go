package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item as returned by the catalog service
type Product struct {
	IngramPartNumber     string           `json:"ingramPartNumber,omitempty"`
	VendorPartNumber     string           `json:"vendorPartNumber"`
	Description          string           `json:"description,omitempty"`
	LongDescription      string           `json:"extraDescription,omitempty"`
	VendorName           string           `json:"vendorName,omitempty"`
	Category             string           `json:"category,omitempty"`
	Subcategory          string           `json:"subCategory,omitempty"`
	SKUType              string           `json:"type,omitempty"`
	ProductClass         string           `json:"productClass,omitempty"`
	UPC                  string           `json:"upcCode,omitempty"`
	Discontinued         *bool            `json:"discontinued,omitempty"`
	NewProduct           *bool            `json:"newProduct,omitempty"`
	DirectShip           *bool            `json:"directShip,omitempty"`
	AuthorizedToPurchase *bool            `json:"authorizedToPurchase,omitempty"`
	CachedRetailPrice    *decimal.Decimal `json:"retailPrice,omitempty"`
	PricingData          *PricingRecord   `json:"pricingData,omitempty"`
}

// Identity returns the key that identifies a product everywhere: the
// Ingram part number when present, otherwise the vendor part number.
func (p Product) Identity() string {
	if id := strings.TrimSpace(p.IngramPartNumber); id != "" {
		return id
	}
	return strings.TrimSpace(p.VendorPartNumber)
}

// Indicators are tri-state product flags; nil means the source said nothing.
type Indicators struct {
	IsDigital            *bool `json:"isDigitalType,omitempty"`
	IsLicensed           *bool `json:"isLicenseProduct,omitempty"`
	IsServiceSKU         *bool `json:"isServiceSku,omitempty"`
	IsBundle             *bool `json:"isBundle,omitempty"`
	IsDirectShip         *bool `json:"isDirectShip,omitempty"`
	IsDiscontinued       *bool `json:"isDiscontinuedProduct,omitempty"`
	IsNew                *bool `json:"isNewProduct,omitempty"`
	AuthorizedToPurchase *bool `json:"isAuthorizedToPurchase,omitempty"`
}

// Price holds the money fields of a pricing record
type Price struct {
	RetailPrice   *decimal.Decimal `json:"retailPrice,omitempty"`
	CustomerPrice *decimal.Decimal `json:"customerPrice,omitempty"`
	CurrencyCode  string           `json:"currencyCode,omitempty"`
}

// WarehouseAvailability is the stock level at a single warehouse
type WarehouseAvailability struct {
	WarehouseID         string `json:"warehouseId"`
	Location            string `json:"location,omitempty"`
	QuantityAvailable   int    `json:"quantityAvailable"`
	QuantityBackordered int    `json:"quantityBackordered,omitempty"`
}

// Availability summarises stock across warehouses
type Availability struct {
	Available               bool                    `json:"available"`
	TotalAvailability       int                     `json:"totalAvailability"`
	AvailabilityByWarehouse []WarehouseAvailability `json:"availabilityByWarehouse,omitempty"`
}

// Discount is a single discount entry attached to a pricing record
type Discount struct {
	Type          string           `json:"discountType,omitempty"`
	SpecialBidID  string           `json:"specialBidNumber,omitempty"`
	Amount        *decimal.Decimal `json:"discountAmount,omitempty"`
	ExpirationUTC string           `json:"expirationDate,omitempty"`
}

// SubscriptionPrice is an optional recurring price option
type SubscriptionPrice struct {
	Plan         string           `json:"plan,omitempty"`
	Period       string           `json:"billingPeriod,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
}

// PricingRecord carries price and availability for one product identity
type PricingRecord struct {
	IngramPartNumber  string              `json:"ingramPartNumber,omitempty"`
	VendorPartNumber  string              `json:"vendorPartNumber,omitempty"`
	UPC               string              `json:"upc,omitempty"`
	Description       string              `json:"description,omitempty"`
	ProductStatusCode string              `json:"productStatusCode,omitempty"`
	Pricing           *Price              `json:"pricing,omitempty"`
	Availability      *Availability       `json:"availability,omitempty"`
	Discounts         []Discount          `json:"discounts,omitempty"`
	Subscription      []SubscriptionPrice `json:"subscriptionPrice,omitempty"`
	Indicators        Indicators          `json:"indicators"`
}

// Identity mirrors Product.Identity for pricing records
func (r PricingRecord) Identity() string {
	if id := strings.TrimSpace(r.IngramPartNumber); id != "" {
		return id
	}
	return strings.TrimSpace(r.VendorPartNumber)
}

// RetailPrice returns the retail price when the record has one
func (r *PricingRecord) RetailPrice() *decimal.Decimal {
	if r == nil || r.Pricing == nil {
		return nil
	}
	return r.Pricing.RetailPrice
}

// DetailRecord carries extended indicator data for one product identity
type DetailRecord struct {
	IngramPartNumber string     `json:"ingramPartNumber,omitempty"`
	VendorPartNumber string     `json:"vendorPartNumber,omitempty"`
	Indicators       Indicators `json:"indicators"`
}

// Identity mirrors Product.Identity for detail records
func (r DetailRecord) Identity() string {
	if id := strings.TrimSpace(r.IngramPartNumber); id != "" {
		return id
	}
	return strings.TrimSpace(r.VendorPartNumber)
}

// ProductPage is one page of products plus pagination metadata
type ProductPage struct {
	Products     []Product `json:"products"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"totalPages"`
	TotalRecords int       `json:"totalRecords"`
}
