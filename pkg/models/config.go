package models

import (
	"time"
)

// AccessHeaders are the edge access-control credentials forwarded with the
// trigger call. Both headers are always sent; values are empty unless
// configured.
type AccessHeaders struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// TriggerConfig is the immutable configuration for a single invocation.
type TriggerConfig struct {
	// BaseURL is the openHAB server root, e.g. https://openhab.local:8443.
	BaseURL string `json:"base_url" validate:"required,http_url"`

	// Item is the openHAB item whose state is set to the trigger timestamp.
	Item string `json:"item" validate:"required,excludesall=/?#"`

	// Token is an optional openHAB API token sent as a bearer token.
	Token string `json:"token,omitempty"`

	EventType   string        `json:"event_type"   validate:"required"`
	ThreadState ThreadState   `json:"thread_state" validate:"required"`
	Access      AccessHeaders `json:"access"`

	// Timeout bounds the trigger call. Zero means the notifier default.
	Timeout time.Duration `json:"timeout" validate:"gte=0"`
}

// Redacted returns a copy safe to print or log.
func (c TriggerConfig) Redacted() TriggerConfig {
	if c.Token != "" {
		c.Token = redactedValue
	}

	if c.Access.ClientSecret != "" {
		c.Access.ClientSecret = redactedValue
	}

	return c
}

// HasToken reports whether a bearer token is configured.
func (c TriggerConfig) HasToken() bool {
	return c.Token != ""
}

const redactedValue = "REDACTED"
