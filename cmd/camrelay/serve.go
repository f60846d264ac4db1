package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dukex/camrelay/pkg/cmd"
	"github.com/dukex/camrelay/pkg/web"
	cli "github.com/urfave/cli/v3"
)

func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Receive Pub/Sub push and CloudEvents deliveries over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the HTTP server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := newService(ctx, command, "camrelay-serve")
			if err != nil {
				return err
			}
			defer svc.close(context.WithoutCancel(ctx))

			// GoChannel outcomes never leave the process, so log them here.
			if command.String("event-bus") == cmd.EventBusGoChannel {
				if err := subscribeOutcomes(ctx, svc.eventBus, logOutcome(svc.logger)); err != nil {
					return err
				}
			}

			handlers := web.NewHandlers(svc.relay, svc.decoder, svc.logger)

			return web.NewServer(handlers, svc.logger).Start(ctx, command.Int("port"))
		},
	}
}
