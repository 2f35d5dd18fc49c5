package models

import "strings"

// Dimension is one axis of the cascading filter
type Dimension string

const (
	DimensionCategory    Dimension = "category"
	DimensionSubcategory Dimension = "subcategory"
	DimensionType        Dimension = "type"
	DimensionKeyword     Dimension = "keyword"
)

// ParseDimension maps a user-supplied name to a Dimension
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionCategory:
		return DimensionCategory, true
	case DimensionSubcategory, "sub-category", "sub_category":
		return DimensionSubcategory, true
	case DimensionType, "skutype", "sku_type":
		return DimensionType, true
	case DimensionKeyword:
		return DimensionKeyword, true
	}
	return "", false
}

// FilterSelection is the active filter. Manufacturer unlocks everything downstream.
type FilterSelection struct {
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	SKUType      string `json:"type,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
}

// HasManufacturer reports whether downstream filters are unlocked
func (f FilterSelection) HasManufacturer() bool {
	return strings.TrimSpace(f.Manufacturer) != ""
}

// ParamKey builds the manufacturer|category|subcategory|type tuple used to
// remember under which parameters the options for dim were loaded. The slot
// for dim itself and everything downstream of it are left blank.
func (f FilterSelection) ParamKey(dim Dimension) string {
	category, subcategory := f.Category, f.Subcategory
	switch dim {
	case DimensionCategory:
		category, subcategory = "", ""
	case DimensionSubcategory:
		subcategory = ""
	}
	return strings.Join([]string{f.Manufacturer, category, subcategory, f.SKUType}, "|")
}

// FilterParams are the constraints sent when listing values for a dimension
type FilterParams struct {
	Manufacturer string
	Category     string
	Subcategory  string
	SKUType      string
}

// Params returns the constraints for listing the values of dim
func (f FilterSelection) Params(dim Dimension) FilterParams {
	p := FilterParams{Manufacturer: f.Manufacturer, SKUType: f.SKUType}
	if dim == DimensionSubcategory {
		p.Category = f.Category
	}
	return p
}

// ProductQuery requests one page of products under a filter
type ProductQuery struct {
	Filter   FilterSelection
	Page     int
	PageSize int
}
