package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	err := NewRootCommand().Run(context.Background(), os.Args)
	if err != nil {
		slog.Error("camrelay failed", "error", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "camrelay",
		Usage:                 "Relay camera person events to an openHAB item",
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*cli.Command{
			NewServeCommand(),
			NewHandleCommand(),
			NewValidateCommand(),
			NewOutcomesCommand(),
		},
	}
}
