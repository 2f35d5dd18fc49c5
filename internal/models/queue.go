package models

import "github.com/shopspring/decimal"

// UnknownManufacturer is the group name used when no manufacturer is known
const UnknownManufacturer = "Unknown"

// QueueEntry is a queued product and its 1-based position
type QueueEntry struct {
	Product  Product        `json:"product"`
	Pricing  *PricingRecord `json:"pricing,omitempty"`
	Position int            `json:"position"`
}

// Identity returns the identity of the queued product
func (e QueueEntry) Identity() string {
	return e.Product.Identity()
}

// Manufacturer resolves the grouping name for the entry
func (e QueueEntry) Manufacturer(fallback string) string {
	if e.Product.VendorName != "" {
		return e.Product.VendorName
	}
	if fallback != "" {
		return fallback
	}
	return UnknownManufacturer
}

// QueueGroup is the per-manufacturer projection of the queue
type QueueGroup struct {
	Manufacturer string       `json:"manufacturer"`
	Entries      []QueueEntry `json:"entries"`
}

// SubmissionRecord is one line of the payload handed to the host.
// Field names are a wire contract.
type SubmissionRecord struct {
	ProductCode    string   `json:"Product_Code"`
	ProductName    string   `json:"Product_Name"`
	Manufacturer   string   `json:"Manufacturer"`
	IngramMicroSKU string   `json:"Ingram_Micro_SKU"`
	MSRP           *float64 `json:"MSRP"`
	Category       string   `json:"Category"`
	Subcategory    string   `json:"Subcategory"`
	UPC            string   `json:"UPC"`
	Description    string   `json:"Description"`
	LastSyncSource string   `json:"Last_Sync_Source"`
	Quantity       int      `json:"Quantity"`
}

// SubmissionPayload is what the host receives on submit or cancel
type SubmissionPayload struct {
	Cancelled     bool               `json:"cancelled,omitempty"`
	DistributorID string             `json:"distributor,omitempty"`
	Products      []SubmissionRecord `json:"products"`
}

// MSRPValue converts a decimal price into the wire representation
func MSRPValue(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
