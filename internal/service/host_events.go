package service

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"go.uber.org/zap"
)

// EventLedger remembers which host events were already handled
type EventLedger interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// HostEventHandler applies host lifecycle events to sessions
type HostEventHandler struct {
	manager *Manager
	ledger  EventLedger
	logger  *zap.Logger
}

// NewHostEventHandler creates a handler. ledger may be nil.
func NewHostEventHandler(manager *Manager, ledger EventLedger) *HostEventHandler {
	return &HostEventHandler{
		manager: manager,
		ledger:  ledger,
		logger:  util.Named("host-events"),
	}
}

// HandleStarted opens or resets the session named by the event
func (h *HostEventHandler) HandleStarted(ctx context.Context, event *models.HostStartedEvent) error {
	ctx, span := util.StartSpan(ctx, "HostEventHandler.HandleStarted", "session_id", event.SessionID)
	defer span.End()

	return h.once(ctx, event.BaseEvent, func() {
		h.manager.Open(event.SessionID).HandleStarted(json.RawMessage(event.Context))
	})
}

// HandleReady stores the correlation token on the session
func (h *HostEventHandler) HandleReady(ctx context.Context, event *models.HostReadyEvent) error {
	ctx, span := util.StartSpan(ctx, "HostEventHandler.HandleReady", "session_id", event.SessionID)
	defer span.End()

	return h.once(ctx, event.BaseEvent, func() {
		h.manager.Open(event.SessionID).HandleReady(event.Token)
	})
}

func (h *HostEventHandler) once(ctx context.Context, base models.BaseEvent, apply func()) error {
	if base.SessionID == "" {
		return models.NewValidationError("session_id", "host event without session id")
	}

	if h.ledger != nil && base.EventID != "" {
		processed, err := h.ledger.IsEventProcessed(ctx, base.EventID)
		if err != nil {
			return fmt.Errorf("failed to check event processed: %w", err)
		}
		if processed {
			h.logger.Info("Event already processed", zap.String("event_id", base.EventID))
			return nil
		}
	}

	apply()

	if h.ledger != nil && base.EventID != "" {
		if err := h.ledger.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
			h.logger.Error("Failed to mark event processed", zap.Error(err))
		}
	}
	return nil
}
