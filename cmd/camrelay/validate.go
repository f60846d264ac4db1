package main

import (
	"context"
	"encoding/json"

	"github.com/dukex/camrelay/pkg/models"
	"github.com/dukex/camrelay/pkg/notifier"
	cli "github.com/urfave/cli/v3"
)

type configReport struct {
	URL         string               `json:"url"`
	Item        string               `json:"item"`
	Token       string               `json:"token,omitempty"`
	EventType   string               `json:"event_type"`
	ThreadState models.ThreadState   `json:"thread_state"`
	Access      models.AccessHeaders `json:"access"`
	Timeout     string               `json:"timeout"`
	EventBus    string               `json:"event_bus"`
}

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration and print it with secrets redacted",
		Action: func(_ context.Context, command *cli.Command) error {
			config, err := loadTriggerConfig(command)
			if err != nil {
				return err
			}

			url, err := notifier.ItemURL(config.BaseURL, config.Item)
			if err != nil {
				return err
			}

			redacted := config.Redacted()

			timeout := redacted.Timeout
			if timeout == 0 {
				timeout = notifier.DefaultTimeout
			}

			encoder := json.NewEncoder(command.Root().Writer)
			encoder.SetIndent("", "  ")

			return encoder.Encode(configReport{
				URL:         url,
				Item:        redacted.Item,
				Token:       redacted.Token,
				EventType:   redacted.EventType,
				ThreadState: redacted.ThreadState,
				Access:      redacted.Access,
				Timeout:     timeout.String(),
				EventBus:    command.String("event-bus"),
			})
		},
	}
}
