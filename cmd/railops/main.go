// Package main provides the railops command line.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railops/railops/internal/cli"

	_ "time/tzdata"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := cli.NewApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}
