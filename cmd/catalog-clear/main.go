package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/amenity-parser/internal/app"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/sink"
)

func main() {
	yes := flag.Bool("yes", false, "confirm deletion of every catalog object")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if !*yes {
		fmt.Fprintln(os.Stderr, "Refusing to clear the catalog without --yes")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	a, err := app.Build(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("build", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Catalog == nil {
		logger.Error("CATALOG_KIND=none: nothing to clear")
		os.Exit(2)
	}
	if err := a.Catalog.Ping(ctx); err != nil {
		logger.Error("catalog unavailable", "error", err)
		os.Exit(1)
	}

	report, err := sink.Clear(ctx, a.Catalog, cfg.Catalog.ClearDelay, logger)
	if err != nil {
		logger.Error("clear failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Catalog cleared: listed %d, deleted %d, failed %d\n", report.Listed, report.Deleted, report.Failed)
}
