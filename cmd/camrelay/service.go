package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/camrelay/pkg/cmd"
	"github.com/dukex/camrelay/pkg/envelope"
	"github.com/dukex/camrelay/pkg/eventbus"
	"github.com/dukex/camrelay/pkg/log"
	"github.com/dukex/camrelay/pkg/notifier"
	"github.com/dukex/camrelay/pkg/otelhelper"
	"github.com/dukex/camrelay/pkg/relay"
	cli "github.com/urfave/cli/v3"
)

const serviceName = "camrelay"

// service holds everything a relaying command needs. close releases it in reverse order.
type service struct {
	relay    *relay.Relay
	decoder  *envelope.Decoder
	eventBus eventbus.EventBus
	logger   *slog.Logger
	closers  []func(ctx context.Context) error
}

func newService(ctx context.Context, command *cli.Command, module string) (*service, error) {
	log.Setup(command.String("log-level"))

	logger := log.WithModule(module)

	config, err := loadTriggerConfig(command)
	if err != nil {
		return nil, err
	}

	svc := &service{logger: logger}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName, command.Bool("otel-enabled"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	svc.closers = append(svc.closers, shutdown)

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
	if err != nil {
		svc.close(ctx)

		return nil, err
	}

	opts := []relay.Option{relay.WithTracer(tracer)}

	if eventBus != nil {
		svc.eventBus = eventBus
		svc.closers = append(svc.closers, func(context.Context) error { return eventBus.Close() })
		opts = append(opts, relay.WithPublisher(eventBus))
	}

	svc.decoder, err = envelope.NewDecoder()
	if err != nil {
		svc.close(ctx)

		return nil, err
	}

	svc.relay = relay.New(config, notifier.New(logger), logger, opts...)

	logger.InfoContext(ctx, "Relay configured",
		"openhab_url", config.BaseURL,
		"item", config.Item,
		"event_type", config.EventType,
		"thread_state", config.ThreadState,
		"token", config.HasToken(),
		"event_bus", command.String("event-bus"),
	)

	return svc, nil
}

func (svc *service) close(ctx context.Context) {
	for i := len(svc.closers) - 1; i >= 0; i-- {
		if err := svc.closers[i](ctx); err != nil {
			svc.logger.ErrorContext(ctx, "Failed to release resource", "error", err)
		}
	}
}
