// Package events defines the outcome events published after each relay invocation.
package events

import (
	"time"
)

type EventType string

// Topic carries relay outcome events.
const Topic = "camrelay.outcomes"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RelayTriggeredEvent EventType = "relay.triggered"
	RelaySkippedEvent   EventType = "relay.skipped"
	RelayFailedEvent    EventType = "relay.failed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	InvocationID string         `json:"invocation_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// RelayTriggered is published after the openHAB item was updated.
type RelayTriggered struct {
	BaseEvent

	Item        string `json:"item"`
	URL         string `json:"url"`
	ItemState   string `json:"item_state"`
	StatusCode  int    `json:"status_code"`
	EventID     string `json:"event_id,omitempty"`
	EventThread string `json:"event_thread_id,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
}

func (e RelayTriggered) GetType() EventType {
	return RelayTriggeredEvent
}

// RelaySkipped is published when the event did not match.
type RelaySkipped struct {
	BaseEvent

	Reason      string   `json:"reason"`
	ThreadState string   `json:"thread_state,omitempty"`
	EventTypes  []string `json:"event_types,omitempty"`
	EventID     string   `json:"event_id,omitempty"`
}

func (e RelaySkipped) GetType() EventType {
	return RelaySkippedEvent
}

// RelayFailed is published when the trigger call failed.
type RelayFailed struct {
	BaseEvent

	Item       string `json:"item"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
	EventID    string `json:"event_id,omitempty"`
}

func (e RelayFailed) GetType() EventType {
	return RelayFailedEvent
}
