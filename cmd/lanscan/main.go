package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lanscan/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	lanscanRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	// an interrupted scan still reports the hosts enriched so far
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := lanscanRunner.Run(ctx); err != nil {
		gologger.Fatal().Msgf("Could not run lanscan: %s\n", err)
	}
}
