package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dukex/camrelay/pkg/cmd"
	"github.com/dukex/camrelay/pkg/eventbus"
	"github.com/dukex/camrelay/pkg/events"
	"github.com/dukex/camrelay/pkg/log"
	cli "github.com/urfave/cli/v3"
)

var ErrNoEventBus = errors.New("outcomes require a shared event bus (kafka)")

var outcomeTypes = []events.EventType{
	events.RelayTriggeredEvent,
	events.RelaySkippedEvent,
	events.RelayFailedEvent,
}

func subscribeOutcomes(ctx context.Context, bus eventbus.EventBus, handler eventbus.EventHandler) error {
	if bus == nil {
		return ErrNoEventBus
	}

	for _, eventType := range outcomeTypes {
		if err := bus.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return bus.Subscribe(ctx)
}

func logOutcome(logger *slog.Logger) eventbus.EventHandler {
	return func(ctx context.Context, event any) error {
		if e, ok := event.(eventbus.Event); ok {
			logger.DebugContext(ctx, "Outcome event", "event_type", e.GetType(), "event", event)
		}

		return nil
	}
}

// printOutcome writes each event as one JSON line and stops after limit events when limit > 0.
func printOutcome(w io.Writer, limit int, done context.CancelFunc) eventbus.EventHandler {
	var (
		mu    sync.Mutex
		count int
	)

	return func(_ context.Context, event any) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()

		if _, err := fmt.Fprintln(w, string(payload)); err != nil {
			return err
		}

		count++
		if limit > 0 && count >= limit {
			done()
		}

		return nil
	}
}

func NewOutcomesCommand() *cli.Command {
	return &cli.Command{
		Name:    "outcomes",
		Aliases: []string{"o"},
		Usage:   "Print relay outcome events from the event bus",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Exit after this many events (0 means run until interrupted)",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Setup(command.String("log-level"))

			logger := log.WithModule("camrelay-outcomes")

			provider := command.String("event-bus")

			// A GoChannel bus is private to this process and would never deliver anything.
			if provider == "" || provider == cmd.EventBusNone || provider == cmd.EventBusGoChannel {
				return fmt.Errorf("%w: got %q", ErrNoEventBus, provider)
			}

			bus, err := cmd.NewEventBus(provider, command.StringSlice("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			if bus != nil {
				defer func() {
					if err := bus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			handler := printOutcome(command.Root().Writer, command.Int("limit"), cancel)

			if err := subscribeOutcomes(ctx, bus, handler); err != nil {
				return err
			}

			logger.InfoContext(ctx, "Listening for outcome events", "topic", events.Topic)

			<-ctx.Done()

			return nil
		},
	}
}
