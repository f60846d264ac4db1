package models

import (
	"encoding/json"
	"time"
)

// ThreadState is the lifecycle stage of a grouped camera event sequence.
type ThreadState string

const (
	ThreadStateStarted ThreadState = "STARTED"
	ThreadStateUpdated ThreadState = "UPDATED"
	ThreadStateEnded   ThreadState = "ENDED"
)

// Camera event types emitted by the Smart Device Management API.
const (
	EventTypeCameraPerson  = "sdm.devices.events.CameraPerson.Person"
	EventTypeCameraMotion  = "sdm.devices.events.CameraMotion.Motion"
	EventTypeCameraSound   = "sdm.devices.events.CameraSound.Sound"
	EventTypeCameraClip    = "sdm.devices.events.CameraClipPreview.ClipPreview"
	EventTypeDoorbellChime = "sdm.devices.events.DoorbellChime.Chime"
)

// Event is a single detection notification from a smart-camera device stream.
// Only EventThreadState and ResourceUpdate.Events take part in matching; the
// remaining fields are decoded for logging.
type Event struct {
	EventID          string          `json:"eventId,omitempty"`
	Timestamp        *time.Time      `json:"timestamp,omitempty"`
	UserID           string          `json:"userId,omitempty"`
	EventThreadID    string          `json:"eventThreadId,omitempty"`
	EventThreadState *ThreadState    `json:"eventThreadState,omitempty"`
	ResourceUpdate   *ResourceUpdate `json:"resourceUpdate,omitempty"`
	ResourceGroup    []string        `json:"resourceGroup,omitempty"`
}

// ResourceUpdate carries the device the event belongs to and the event
// types present in this update. Event values are kept raw: only key presence
// is significant.
type ResourceUpdate struct {
	Name   string                     `json:"name,omitempty"`
	Events map[string]json.RawMessage `json:"events,omitempty"`
	Traits map[string]json.RawMessage `json:"traits,omitempty"`
}

// ThreadState returns the event's thread state and whether it was present.
func (e *Event) ThreadState() (ThreadState, bool) {
	if e == nil || e.EventThreadState == nil {
		return "", false
	}

	return *e.EventThreadState, true
}

// HasEventType reports whether eventType is a key of resourceUpdate.events.
// A missing resourceUpdate or events map is an empty set.
func (e *Event) HasEventType(eventType string) bool {
	if e == nil || e.ResourceUpdate == nil || e.ResourceUpdate.Events == nil {
		return false
	}

	_, ok := e.ResourceUpdate.Events[eventType]

	return ok
}

// EventTypes returns the event type keys present in the update.
func (e *Event) EventTypes() []string {
	if e == nil || e.ResourceUpdate == nil {
		return nil
	}

	types := make([]string, 0, len(e.ResourceUpdate.Events))
	for eventType := range e.ResourceUpdate.Events {
		types = append(types, eventType)
	}

	return types
}

// DeviceName returns the resource name of the device that produced the event.
func (e *Event) DeviceName() string {
	if e == nil || e.ResourceUpdate == nil {
		return ""
	}

	return e.ResourceUpdate.Name
}
