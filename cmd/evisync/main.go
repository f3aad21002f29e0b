package main

import (
	"os"

	"github.com/voltfolio/evisync/internal/adapters/driving/cli"
	"github.com/voltfolio/evisync/internal/logger"
)

func main() {
	if err := cli.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
