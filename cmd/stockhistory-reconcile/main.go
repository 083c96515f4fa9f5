// Command stockhistory-reconcile runs a single reconciliation pass and exits.
// It is intended for cron-style scheduling outside the server process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/stockhistory/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to stockhistory.toml (default: $STOCKHISTORY_CONFIG, then binary dir)")
	flag.Parse()

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	a, err := app.NewApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.RunReconcile(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Reconciliation failed")
		return 1
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "%s\t%s\t%s\n", f.Symbol, f.Stage, f.Error)
	}
	fmt.Printf("%d Daily stock queries initiated and completed successfully.\n", report.Updated)
	return 0
}
