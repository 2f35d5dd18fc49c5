package models

import (
	"encoding/json"
	"time"
)

// Event types exchanged with the host
const (
	EventTypeHostStarted   = "HOST_STARTED"
	EventTypeHostReady     = "HOST_READY"
	EventTypeHostSubmitted = "HOST_SUBMITTED"
	EventTypeHostCancelled = "HOST_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HostStartedEvent is delivered by the host when the widget starts
type HostStartedEvent struct {
	BaseEvent
	Context json.RawMessage `json:"context,omitempty"`
}

// HostReadyEvent carries the correlation token the result must be sent back with
type HostReadyEvent struct {
	BaseEvent
	Token string `json:"token"`
}

// HostResultEvent is published back to the host on submit or cancel
type HostResultEvent struct {
	BaseEvent
	Token   string            `json:"token"`
	Payload SubmissionPayload `json:"payload"`
}
