// Package relay wires the matcher to the notifier for one event at a time.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukex/camrelay/pkg/eventbus"
	"github.com/dukex/camrelay/pkg/events"
	"github.com/dukex/camrelay/pkg/matcher"
	"github.com/dukex/camrelay/pkg/models"
	"github.com/dukex/camrelay/pkg/notifier"
	"github.com/dukex/camrelay/pkg/otelhelper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Notifier performs the trigger call.
type Notifier interface {
	Trigger(ctx context.Context, config models.TriggerConfig) (models.TriggerResult, error)
}

// Outcome describes one invocation.
type Outcome struct {
	InvocationID string
	Decision     matcher.Decision
	Result       models.TriggerResult
}

// Triggered reports whether the openHAB item was updated.
func (o Outcome) Triggered() bool {
	return o.Result.Triggered
}

// Relay is stateless across invocations and safe for concurrent use.
type Relay struct {
	config    models.TriggerConfig
	criteria  matcher.Criteria
	notifier  Notifier
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Relay.
type Option func(*Relay)

// WithPublisher publishes one outcome event per invocation.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(r *Relay) {
		r.publisher = publisher
	}
}

// WithTracer sets the tracer used for invocation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Relay) {
		r.tracer = tracer
	}
}

func New(config models.TriggerConfig, notifier Notifier, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		config:   config,
		criteria: matcher.CriteriaFrom(config),
		notifier: notifier,
		tracer:   noop.NewTracerProvider().Tracer("camrelay"),
		logger:   logger.With("module", "relay"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle evaluates event and, when it matches, triggers the openHAB item once.
// A non-match is not an error. Trigger failures are returned unchanged.
func (r *Relay) Handle(ctx context.Context, event *models.Event) (Outcome, error) {
	outcome := Outcome{InvocationID: uuid.NewString()}

	threadState, _ := event.ThreadState()

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "relay.handle",
		attribute.String(otelhelper.InvocationIDKey, outcome.InvocationID),
		attribute.String(otelhelper.EventIDKey, eventID(event)),
		attribute.String(otelhelper.ThreadStateKey, string(threadState)),
	)
	defer span.End()

	logger := r.logger.With(
		"invocation_id", outcome.InvocationID,
		"event_id", eventID(event),
	)

	outcome.Decision = matcher.Evaluate(ctx, event, r.criteria, logger)

	span.SetAttributes(
		attribute.Bool(otelhelper.MatchedKey, outcome.Decision.Matched),
		attribute.String(otelhelper.ReasonKey, string(outcome.Decision.Reason)),
	)

	if !outcome.Decision.Matched {
		logger.InfoContext(ctx, "Event did not match criteria", "reason", outcome.Decision.Reason)
		r.publish(ctx, logger, outcome.InvocationID, r.skipped(outcome, event))

		return outcome, nil
	}

	result, err := r.notifier.Trigger(ctx, r.config)
	outcome.Result = result

	span.SetAttributes(
		attribute.String(otelhelper.ItemKey, r.config.Item),
		attribute.Int(otelhelper.StatusCodeKey, result.StatusCode),
	)

	if err != nil {
		otelhelper.SetError(span, err, attribute.Int(otelhelper.StatusCodeKey, result.StatusCode))
		r.publish(ctx, logger, outcome.InvocationID, r.failed(outcome, event, err))

		return outcome, err
	}

	logger.InfoContext(ctx, "openHAB item triggered", "item", result.Item, "timestamp", result.Timestamp)
	r.publish(ctx, logger, outcome.InvocationID, r.triggered(outcome, event))

	return outcome, nil
}

func (r *Relay) publish(ctx context.Context, logger *slog.Logger, key string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, key, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish outcome event", "event_type", event.GetType(), "error", err)
	}
}

func (r *Relay) base(outcome Outcome, eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		Timestamp:    r.now().UTC(),
		InvocationID: outcome.InvocationID,
	}
}

func (r *Relay) skipped(outcome Outcome, event *models.Event) events.RelaySkipped {
	threadState, _ := event.ThreadState()

	return events.RelaySkipped{
		BaseEvent:   r.base(outcome, events.RelaySkippedEvent),
		Reason:      string(outcome.Decision.Reason),
		ThreadState: string(threadState),
		EventTypes:  event.EventTypes(),
		EventID:     eventID(event),
	}
}

func (r *Relay) triggered(outcome Outcome, event *models.Event) events.RelayTriggered {
	return events.RelayTriggered{
		BaseEvent:   r.base(outcome, events.RelayTriggeredEvent),
		Item:        outcome.Result.Item,
		URL:         outcome.Result.URL,
		ItemState:   outcome.Result.Timestamp,
		StatusCode:  outcome.Result.StatusCode,
		EventID:     eventID(event),
		EventThread: eventThreadID(event),
		DeviceName:  event.DeviceName(),
	}
}

func (r *Relay) failed(outcome Outcome, event *models.Event, err error) events.RelayFailed {
	failed := events.RelayFailed{
		BaseEvent:  r.base(outcome, events.RelayFailedEvent),
		Item:       r.config.Item,
		URL:        outcome.Result.URL,
		Error:      err.Error(),
		StatusCode: outcome.Result.StatusCode,
		EventID:    eventID(event),
	}

	var statusErr *notifier.StatusError
	if errors.As(err, &statusErr) {
		failed.StatusCode = statusErr.StatusCode
	}

	return failed
}

func eventID(event *models.Event) string {
	if event == nil {
		return ""
	}

	return event.EventID
}

func eventThreadID(event *models.Event) string {
	if event == nil {
		return ""
	}

	return event.EventThreadID
}
