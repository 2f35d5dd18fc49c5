package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher writes a keyed event to the broker
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// HostPublisher sends submission results back to the host
type HostPublisher struct {
	producer Publisher
	logger   *zap.Logger
}

// NewHostPublisher creates a new host result publisher
func NewHostPublisher(producer Publisher) *HostPublisher {
	return &HostPublisher{producer: producer, logger: util.Named("host-publisher")}
}

func sessionKey(sessionID string) string {
	return "session-" + sessionID
}

// SendResult publishes a HOST_SUBMITTED or HOST_CANCELLED event carrying
// the correlation token and payload
func (hp *HostPublisher) SendResult(ctx context.Context, sessionID, token string, payload models.SubmissionPayload) error {
	ctx, span := util.StartSpan(ctx, "HostPublisher.SendResult", "session_id", sessionID)
	defer span.End()

	eventType := models.EventTypeHostSubmitted
	if payload.Cancelled {
		eventType = models.EventTypeHostCancelled
	}

	event := &models.HostResultEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			SessionID: sessionID,
			Timestamp: time.Now(),
		},
		Token:   token,
		Payload: payload,
	}

	if err := hp.producer.PublishEvent(ctx, sessionKey(sessionID), event); err != nil {
		util.RecordError(span, err)
		return err
	}

	hp.logger.Info("Host result published",
		zap.String("session_id", sessionID),
		zap.String("event_type", eventType),
		zap.Int("products", len(payload.Products)))
	return nil
}

// EventHandler handles incoming host events
type EventHandler struct {
	onHostStarted func(context.Context, *models.HostStartedEvent) error
	onHostReady   func(context.Context, *models.HostReadyEvent) error
	logger        *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.Named("host-events")}
}

// OnHostStarted registers a handler for HOST_STARTED events
func (eh *EventHandler) OnHostStarted(handler func(context.Context, *models.HostStartedEvent) error) {
	eh.onHostStarted = handler
}

// OnHostReady registers a handler for HOST_READY events
func (eh *EventHandler) OnHostReady(handler func(context.Context, *models.HostReadyEvent) error) {
	eh.onHostReady = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeHostStarted:
		if eh.onHostStarted != nil {
			var event models.HostStartedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal HostStarted event: %w", err)
			}
			return eh.onHostStarted(ctx, &event)
		}

	case models.EventTypeHostReady:
		if eh.onHostReady != nil {
			var event models.HostReadyEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal HostReady event: %w", err)
			}
			return eh.onHostReady(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
