package service

import (
	"catalog-picker/internal/models"
)

// BuildSubmission maps queue entries to the records handed to the host
func BuildSubmission(entries []models.QueueEntry, filter models.FilterSelection, distributor models.Distributor) []models.SubmissionRecord {
	records := make([]models.SubmissionRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, submissionRecord(e, filter, distributor))
	}
	return records
}

func submissionRecord(e models.QueueEntry, filter models.FilterSelection, distributor models.Distributor) models.SubmissionRecord {
	p := e.Product
	pricing := e.Pricing
	if pricing == nil {
		pricing = p.PricingData
	}

	msrp := pricing.RetailPrice()
	if msrp == nil {
		msrp = p.CachedRetailPrice
	}

	upc := p.UPC
	if pricing != nil && pricing.UPC != "" {
		upc = pricing.UPC
	}

	description := p.LongDescription
	if description == "" && pricing != nil {
		description = pricing.Description
	}

	return models.SubmissionRecord{
		ProductCode:    p.VendorPartNumber,
		ProductName:    p.Description,
		Manufacturer:   firstNonEmpty(p.VendorName, filter.Manufacturer),
		IngramMicroSKU: p.IngramPartNumber,
		MSRP:           models.MSRPValue(msrp),
		Category:       firstNonEmpty(p.Category, filter.Category),
		Subcategory:    firstNonEmpty(p.Subcategory, filter.Subcategory),
		UPC:            upc,
		Description:    description,
		LastSyncSource: distributor.Name,
		Quantity:       1,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
