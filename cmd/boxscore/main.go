// cmd/boxscore/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// first signal stops the run between rows, a second one exits at once
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, finishing the current row")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
