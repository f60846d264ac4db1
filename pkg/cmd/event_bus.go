// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/camrelay/pkg/channels/gochannel"
	"github.com/dukex/camrelay/pkg/channels/kafka"
	"github.com/dukex/camrelay/pkg/eventbus"
)

const (
	EventBusNone      = "none"
	EventBusGoChannel = "gochannel"
	EventBusKafka     = "kafka"
)

const consumerGroup = "camrelay"

var ErrUnsupportedEventBus = errors.New("unsupported event bus provider")

// NewEventBus returns the outcome event bus for provider.
// The "none" provider yields a nil bus and no error.
func NewEventBus(provider string, brokers []string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case EventBusNone, "":
		return nil, nil
	case EventBusGoChannel:
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GoChannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case EventBusKafka:
		pub, sub, err := kafka.CreateChannel(wmLogger, brokers, consumerGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventBus, provider)
	}
}
