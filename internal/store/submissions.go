package store

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-picker/internal/models"
)

// RecordSubmission stores a submitted or cancelled result and its lines in
// one transaction
func (s *Store) RecordSubmission(ctx context.Context, sessionID, token string, payload models.SubmissionPayload) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sub := models.Submission{
		SessionID:     sessionID,
		Token:         token,
		DistributorID: payload.DistributorID,
		Cancelled:     payload.Cancelled,
		ItemCount:     len(payload.Products),
	}
	err = tx.GetContext(ctx, &sub, `
		INSERT INTO submissions (session_id, token, distributor_id, cancelled, item_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		sub.SessionID, sub.Token, sub.DistributorID, sub.Cancelled, sub.ItemCount)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	for i, rec := range payload.Products {
		item := submissionItem(sub.ID, i+1, rec)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO submission_items (
				submission_id, position, product_code, product_name, manufacturer, ingram_micro_sku,
				msrp, category, subcategory, upc, description, last_sync_source, quantity
			) VALUES (
				:submission_id, :position, :product_code, :product_name, :manufacturer, :ingram_micro_sku,
				:msrp, :category, :subcategory, :upc, :description, :last_sync_source, :quantity
			)`, item)
		if err != nil {
			return fmt.Errorf("failed to insert submission item %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func submissionItem(submissionID int64, position int, rec models.SubmissionRecord) models.SubmissionItem {
	item := models.SubmissionItem{
		SubmissionID:   submissionID,
		Position:       position,
		ProductCode:    rec.ProductCode,
		ProductName:    rec.ProductName,
		Manufacturer:   rec.Manufacturer,
		IngramMicroSKU: rec.IngramMicroSKU,
		Category:       rec.Category,
		Subcategory:    rec.Subcategory,
		UPC:            rec.UPC,
		Description:    rec.Description,
		LastSyncSource: rec.LastSyncSource,
		Quantity:       rec.Quantity,
	}
	if rec.MSRP != nil {
		item.MSRP = sql.NullFloat64{Float64: *rec.MSRP, Valid: true}
	}
	return item
}

// GetSubmissionsBySessionID retrieves the submissions of a session, newest first
func (s *Store) GetSubmissionsBySessionID(ctx context.Context, sessionID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM submissions WHERE session_id = $1 ORDER BY created_at DESC, id DESC", sessionID)
	return subs, err
}

// GetSubmissionItems retrieves the lines of a submission in submitted order
func (s *Store) GetSubmissionItems(ctx context.Context, submissionID int64) ([]models.SubmissionItem, error) {
	var items []models.SubmissionItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM submission_items WHERE submission_id = $1 ORDER BY position", submissionID)
	return items, err
}
