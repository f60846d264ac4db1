package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/camrelay/pkg/matcher"
	"github.com/dukex/camrelay/pkg/models"
	cli "github.com/urfave/cli/v3"
)

const (
	formatPush  = "push"
	formatEvent = "event"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

// handleReport is printed after a one-shot invocation.
type handleReport struct {
	InvocationID string                `json:"invocation_id"`
	Matched      bool                  `json:"matched"`
	Reason       matcher.Reason        `json:"reason"`
	Result       *models.TriggerResult `json:"result,omitempty"`
	Error        string                `json:"error,omitempty"`
}

func readInput(command *cli.Command) ([]byte, error) {
	path := command.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(command.Root().Reader)
	}

	return os.ReadFile(path)
}

func NewHandleCommand() *cli.Command {
	return &cli.Command{
		Name:      "handle",
		Aliases:   []string{"h"},
		Usage:     "Process a single delivery read from a file or stdin",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Input format: push (Pub/Sub push body) or event (raw event JSON)",
				Value: formatPush,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			svc, err := newService(ctx, command, "camrelay-handle")
			if err != nil {
				return err
			}
			defer svc.close(context.WithoutCancel(ctx))

			input, err := readInput(command)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			var event *models.Event

			switch command.String("format") {
			case formatPush:
				delivery, err := svc.decoder.DecodePush(input)
				if err != nil {
					return err
				}

				event = delivery.Event
			case formatEvent:
				event, err = svc.decoder.DecodeEvent(input)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedFormat, command.String("format"))
			}

			outcome, handleErr := svc.relay.Handle(ctx, event)

			report := handleReport{
				InvocationID: outcome.InvocationID,
				Matched:      outcome.Decision.Matched,
				Reason:       outcome.Decision.Reason,
			}

			if outcome.Decision.Matched {
				report.Result = &outcome.Result
			}

			if handleErr != nil {
				report.Error = handleErr.Error()
			}

			encoder := json.NewEncoder(command.Root().Writer)
			encoder.SetIndent("", "  ")

			if err := encoder.Encode(report); err != nil {
				return err
			}

			return handleErr
		},
	}
}
