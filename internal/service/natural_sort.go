package service

import (
	"sort"
	"strings"

	"catalog-picker/internal/models"

	"github.com/maruel/natural"
)

// naturalLess orders strings so that embedded digit runs compare by numeric
// value ("A2" < "A10"). Letters compare case-insensitively; strings equal
// under folding fall back to a byte comparison.
func naturalLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}

// sortByVendorPartNumber sorts products in place by natural vendor part number order
func sortByVendorPartNumber(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return naturalLess(products[i].VendorPartNumber, products[j].VendorPartNumber)
	})
}
