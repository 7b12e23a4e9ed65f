package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/paveldruzyak/commodus/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:]); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
