package models

import (
	"database/sql"
	"time"
)

// Submission is the audit row written for every result sent to the host
type Submission struct {
	ID            int64     `db:"id" json:"id"`
	SessionID     string    `db:"session_id" json:"session_id"`
	Token         string    `db:"token" json:"token"`
	DistributorID string    `db:"distributor_id" json:"distributor_id"`
	Cancelled     bool      `db:"cancelled" json:"cancelled"`
	ItemCount     int       `db:"item_count" json:"item_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SubmissionItem is one submitted product line
type SubmissionItem struct {
	ID             int64           `db:"id" json:"id"`
	SubmissionID   int64           `db:"submission_id" json:"submission_id"`
	Position       int             `db:"position" json:"position"`
	ProductCode    string          `db:"product_code" json:"product_code"`
	ProductName    string          `db:"product_name" json:"product_name"`
	Manufacturer   string          `db:"manufacturer" json:"manufacturer"`
	IngramMicroSKU string          `db:"ingram_micro_sku" json:"ingram_micro_sku"`
	MSRP           sql.NullFloat64 `db:"msrp" json:"-"`
	Category       string          `db:"category" json:"category"`
	Subcategory    string          `db:"subcategory" json:"subcategory"`
	UPC            string          `db:"upc" json:"upc"`
	Description    string          `db:"description" json:"description"`
	LastSyncSource string          `db:"last_sync_source" json:"last_sync_source"`
	Quantity       int             `db:"quantity" json:"quantity"`
}

// Record converts the row back into its wire form
func (i SubmissionItem) Record() SubmissionRecord {
	rec := SubmissionRecord{
		ProductCode:    i.ProductCode,
		ProductName:    i.ProductName,
		Manufacturer:   i.Manufacturer,
		IngramMicroSKU: i.IngramMicroSKU,
		Category:       i.Category,
		Subcategory:    i.Subcategory,
		UPC:            i.UPC,
		Description:    i.Description,
		LastSyncSource: i.LastSyncSource,
		Quantity:       i.Quantity,
	}
	if i.MSRP.Valid {
		v := i.MSRP.Float64
		rec.MSRP = &v
	}
	return rec
}
