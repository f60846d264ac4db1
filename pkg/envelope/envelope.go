// Package envelope decodes Pub/Sub deliveries into camera events.
package envelope

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/camrelay/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedEnvelope is returned for any delivery that cannot be decoded into an event.
var ErrMalformedEnvelope = errors.New("malformed envelope")

//go:embed event.schema.json
var eventSchema []byte

// PushEnvelope is the body of a Pub/Sub push request and the data of a
// messagePublished CloudEvent.
type PushEnvelope struct {
	Message      Message `json:"message"`
	Subscription string  `json:"subscription"`
}

// Message is a Pub/Sub message. Data is base64 on the wire and decoded by encoding/json.
// PublishTime is kept verbatim; it may be empty.
type Message struct {
	Data        []byte            `json:"data"        validate:"required,min=1"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageID   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
	OrderingKey string            `json:"orderingKey,omitempty"`
}

// Delivery is a decoded event together with its transport metadata.
type Delivery struct {
	Event        *models.Event
	MessageID    string
	Subscription string
	PublishTime  string
	Attributes   map[string]string
}

// Decoder validates and decodes deliveries. It is safe for concurrent use.
type Decoder struct {
	validate *validator.Validate
	schema   *gojsonschema.Schema
}

// NewDecoder compiles the event schema.
func NewDecoder() (*Decoder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(eventSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile event schema: %w", err)
	}

	return &Decoder{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		schema:   schema,
	}, nil
}

// DecodePush decodes a Pub/Sub push request body.
func (d *Decoder) DecodePush(body []byte) (*Delivery, error) {
	var push PushEnvelope

	if err := json.Unmarshal(body, &push); err != nil {
		return nil, fmt.Errorf("%w: invalid push body: %w", ErrMalformedEnvelope, err)
	}

	return d.decodeEnvelope(&push)
}

// DecodeEvent decodes a bare event payload.
func (d *Decoder) DecodeEvent(payload []byte) (*models.Event, error) {
	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event JSON: %w", ErrMalformedEnvelope, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedEnvelope, describe(result.Errors()))
	}

	var event models.Event

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	return &event, nil
}

func (d *Decoder) decodeEnvelope(push *PushEnvelope) (*Delivery, error) {
	if err := d.validate.Struct(push); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	event, err := d.DecodeEvent(push.Message.Data)
	if err != nil {
		return nil, err
	}

	return &Delivery{
		Event:        event,
		MessageID:    push.Message.MessageID,
		Subscription: push.Subscription,
		PublishTime:  push.Message.PublishTime,
		Attributes:   push.Message.Attributes,
	}, nil
}

func describe(resultErrors []gojsonschema.ResultError) string {
	descriptions := make([]string, 0, len(resultErrors))
	for _, resultError := range resultErrors {
		descriptions = append(descriptions, resultError.String())
	}

	return strings.Join(descriptions, "; ")
}
