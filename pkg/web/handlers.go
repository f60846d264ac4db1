// Package web exposes the relay over HTTP for Pub/Sub push and CloudEvents deliveries.
package web

import (
	"context"
	"log/slog"

	"github.com/dukex/camrelay/pkg/envelope"
	"github.com/dukex/camrelay/pkg/models"
	"github.com/dukex/camrelay/pkg/relay"
	"github.com/gofiber/fiber/v3"
)

// Relayer processes one decoded event.
type Relayer interface {
	Handle(ctx context.Context, event *models.Event) (relay.Outcome, error)
}

type Handlers struct {
	relay   Relayer
	decoder *envelope.Decoder
	logger  *slog.Logger
}

func NewHandlers(relayer Relayer, decoder *envelope.Decoder, logger *slog.Logger) *Handlers {
	return &Handlers{
		relay:   relayer,
		decoder: decoder,
		logger:  logger,
	}
}

// PubSubPush handles a raw Pub/Sub push request.
// Matches and non-matches both answer 204.
func (h *Handlers) PubSubPush(c fiber.Ctx) error {
	ctx := c.Context()

	delivery, err := h.decoder.DecodePush(c.Body())
	if err != nil {
		h.logger.WarnContext(ctx, "Rejected push delivery", "error", err)

		return malformedEnvelope(c, err)
	}

	if _, err := h.handle(ctx, delivery); err != nil {
		return triggerFailed(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) handle(ctx context.Context, delivery *envelope.Delivery) (relay.Outcome, error) {
	logger := h.logger.With(
		"message_id", delivery.MessageID,
		"subscription", delivery.Subscription,
	)

	outcome, err := h.relay.Handle(ctx, delivery.Event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to relay event",
			"invocation_id", outcome.InvocationID,
			"error", err,
		)

		return outcome, err
	}

	logger.DebugContext(ctx, "Delivery processed",
		"invocation_id", outcome.InvocationID,
		"triggered", outcome.Triggered(),
		"reason", outcome.Decision.Reason,
	)

	return outcome, nil
}
