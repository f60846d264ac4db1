package main

import (
	"github.com/dukex/camrelay/pkg/cmd"
	"github.com/dukex/camrelay/pkg/models"
	"github.com/dukex/camrelay/pkg/notifier"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultItem = "CameraPersonDetected"
	defaultPort = 8080
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "openhab-url",
			Usage:   "Base URL of the openHAB server",
			Sources: cli.EnvVars("OPENHAB_URL"),
		},
		&cli.StringFlag{
			Name:    "openhab-item",
			Usage:   "openHAB item updated with the trigger timestamp",
			Value:   defaultItem,
			Sources: cli.EnvVars("OPENHAB_ITEM"),
		},
		&cli.StringFlag{
			Name:    "openhab-token",
			Usage:   "Optional openHAB API token sent as a bearer token",
			Sources: cli.EnvVars("OPENHAB_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "event-type",
			Usage:   "Event type that must be present in the event",
			Value:   models.EventTypeCameraPerson,
			Sources: cli.EnvVars("EVENT_TYPE"),
		},
		&cli.StringFlag{
			Name:    "thread-state",
			Usage:   "Required event thread state (STARTED, UPDATED, ENDED)",
			Value:   string(models.ThreadStateStarted),
			Sources: cli.EnvVars("THREAD_STATE"),
		},
		&cli.StringFlag{
			Name:    "access-client-id",
			Usage:   "Edge access client id header value",
			Sources: cli.EnvVars("CF_ACCESS_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:    "access-client-secret",
			Usage:   "Edge access client secret header value",
			Sources: cli.EnvVars("CF_ACCESS_CLIENT_SECRET"),
		},
		&cli.DurationFlag{
			Name:    "trigger-timeout",
			Usage:   "Timeout for the openHAB call",
			Value:   notifier.DefaultTimeout,
			Sources: cli.EnvVars("TRIGGER_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Outcome event bus (none, gochannel, kafka)",
			Value:   cmd.EventBusNone,
			Sources: cli.EnvVars("EVENT_BUS"),
		},
		&cli.StringSliceFlag{
			Name:    "kafka-brokers",
			Usage:   "Kafka broker addresses for the kafka event bus",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
		&cli.BoolFlag{
			Name:    "otel-enabled",
			Usage:   "Export traces over OTLP/HTTP",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}
