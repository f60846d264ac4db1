// Package matcher decides whether a camera event represents a fresh detection
// of the configured event type.
package matcher

import (
	"context"
	"log/slog"

	"github.com/dukex/camrelay/pkg/models"
)

// Reason explains a Decision.
type Reason string

const (
	ReasonMatched             Reason = "matched"
	ReasonThreadStateMismatch Reason = "thread_state_mismatch"
	ReasonEventTypeAbsent     Reason = "event_type_absent"
)

// Criteria are the two values an event must carry to match.
type Criteria struct {
	ThreadState models.ThreadState
	EventType   string
}

// CriteriaFrom extracts the match criteria from a trigger configuration.
func CriteriaFrom(config models.TriggerConfig) Criteria {
	return Criteria{
		ThreadState: config.ThreadState,
		EventType:   config.EventType,
	}
}

// Decision is the result of evaluating an event against Criteria.
type Decision struct {
	Matched bool
	Reason  Reason
}

// Matches reports whether event has the expected thread state and carries the
// expected event type.
func Matches(event *models.Event, expectedThreadState models.ThreadState, expectedEventType string) bool {
	return decide(event, Criteria{ThreadState: expectedThreadState, EventType: expectedEventType}).Matched
}

// Evaluate is Matches with a reason attached. Each rejection is logged.
func Evaluate(ctx context.Context, event *models.Event, criteria Criteria, logger *slog.Logger) Decision {
	decision := decide(event, criteria)

	switch decision.Reason {
	case ReasonThreadStateMismatch:
		state, present := event.ThreadState()
		logger.InfoContext(ctx, "Thread state mismatch",
			"thread_state", string(state),
			"thread_state_present", present,
			"expected_thread_state", string(criteria.ThreadState))
	case ReasonEventTypeAbsent:
		logger.InfoContext(ctx, "Event type not found",
			"expected_event_type", criteria.EventType,
			"event_types", event.EventTypes())
	case ReasonMatched:
		logger.DebugContext(ctx, "Event matched",
			"event_type", criteria.EventType,
			"thread_state", string(criteria.ThreadState))
	}

	return decision
}

func decide(event *models.Event, criteria Criteria) Decision {
	state, present := event.ThreadState()
	if !present || state != criteria.ThreadState {
		return Decision{Matched: false, Reason: ReasonThreadStateMismatch}
	}

	if !event.HasEventType(criteria.EventType) {
		return Decision{Matched: false, Reason: ReasonEventTypeAbsent}
	}

	return Decision{Matched: true, Reason: ReasonMatched}
}
