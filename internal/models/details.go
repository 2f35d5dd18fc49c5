package models

// Flag is a resolved display flag
type Flag string

const (
	FlagYes     Flag = "Yes"
	FlagNo      Flag = "No"
	FlagUnknown Flag = "Unknown"
)

// FlagOf converts a tri-state bool into a Flag
func FlagOf(b *bool, def Flag) Flag {
	if b == nil {
		return def
	}
	if *b {
		return FlagYes
	}
	return FlagNo
}

// DisplayFlags are the derived fields shown for an inspected product
type DisplayFlags struct {
	Authorized   Flag `json:"authorized"`
	Discontinued Flag `json:"discontinued"`
	Digital      Flag `json:"digital"`
	Licensed     Flag `json:"licensed"`
	ServiceSKU   Flag `json:"serviceSku"`
	Bundle       Flag `json:"bundle"`
	DirectShip   Flag `json:"directShip"`
	New          Flag `json:"new"`
}

// ProductDetails is the merged view of product, pricing and detail data.
// Warehouses is nil when there is no availability to show.
type ProductDetails struct {
	Product    Product                 `json:"product"`
	Pricing    *PricingRecord          `json:"pricing,omitempty"`
	Detail     *DetailRecord           `json:"detail,omitempty"`
	Flags      DisplayFlags            `json:"flags"`
	Warehouses []WarehouseAvailability `json:"warehouses,omitempty"`
}

// StatusLevel classifies a user-visible status message
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusSuccess StatusLevel = "success"
	StatusError   StatusLevel = "error"
)

// Status is the latest user-visible message of a session
type Status struct {
	Level   StatusLevel `json:"level"`
	Message string      `json:"message"`
}
