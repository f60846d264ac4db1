package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/camrelay/pkg/models"
	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

func triggerConfigFromCommand(command *cli.Command) models.TriggerConfig {
	return models.TriggerConfig{
		BaseURL:     strings.TrimSpace(command.String("openhab-url")),
		Item:        strings.TrimSpace(command.String("openhab-item")),
		Token:       command.String("openhab-token"),
		EventType:   strings.TrimSpace(command.String("event-type")),
		ThreadState: models.ThreadState(strings.ToUpper(strings.TrimSpace(command.String("thread-state")))),
		Access: models.AccessHeaders{
			ClientID:     command.String("access-client-id"),
			ClientSecret: command.String("access-client-secret"),
		},
		Timeout: command.Duration("trigger-timeout"),
	}
}

// loadTriggerConfig reads and validates the trigger configuration.
func loadTriggerConfig(command *cli.Command) (models.TriggerConfig, error) {
	config := triggerConfigFromCommand(command)

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
			}

			return config, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}

		return config, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return config, nil
}
