package web

import (
	"context"
	"fmt"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ReceiveCloudEvent handles a messagePublished CloudEvent.
// Malformed deliveries answer 400, trigger failures 502, everything else is acknowledged.
func (h *Handlers) ReceiveCloudEvent(ctx context.Context, event cloudevents.Event) cloudevents.Result {
	delivery, err := h.decoder.DecodeCloudEvent(event)
	if err != nil {
		h.logger.WarnContext(ctx, "Rejected CloudEvent delivery",
			"ce_id", event.ID(),
			"ce_type", event.Type(),
			"error", err,
		)

		return cloudevents.NewHTTPResult(http.StatusBadRequest, "%s", err.Error())
	}

	if _, err := h.handle(ctx, delivery); err != nil {
		return cloudevents.NewHTTPResult(http.StatusBadGateway, "%s", err.Error())
	}

	return cloudevents.ResultACK
}

// CloudEventsHandler returns a net/http handler that receives CloudEvents over HTTP.
func (h *Handlers) CloudEventsHandler(ctx context.Context) (http.Handler, error) {
	protocol, err := cloudevents.NewHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudEvents protocol: %w", err)
	}

	receiver, err := cloudevents.NewHTTPReceiveHandler(ctx, protocol, h.ReceiveCloudEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudEvents receiver: %w", err)
	}

	return receiver, nil
}
