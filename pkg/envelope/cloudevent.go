package envelope

import (
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// MessagePublishedType is the CloudEvent type Pub/Sub uses for published messages.
const MessagePublishedType = "google.cloud.pubsub.topic.v1.messagePublished"

// DecodeCloudEvent decodes a messagePublished CloudEvent.
func (d *Decoder) DecodeCloudEvent(event cloudevents.Event) (*Delivery, error) {
	if event.Type() != MessagePublishedType {
		return nil, fmt.Errorf("%w: unsupported CloudEvent type %q", ErrMalformedEnvelope, event.Type())
	}

	var push PushEnvelope

	if err := event.DataAs(&push); err != nil {
		return nil, fmt.Errorf("%w: invalid CloudEvent data: %w", ErrMalformedEnvelope, err)
	}

	delivery, err := d.decodeEnvelope(&push)
	if err != nil {
		return nil, err
	}

	if delivery.MessageID == "" {
		delivery.MessageID = event.ID()
	}

	return delivery, nil
}
