package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/amenity-parser/internal/app"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/core"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var urls, files listFlag
	var (
		dir        = flag.String("dir", "", "process every PDF under this directory")
		listing    = flag.String("listing", "", "listing page to discover documents on (defaults to SOURCE_LISTING_URL)")
		noDiscover = flag.Bool("no-discover", false, "skip discovery even when no explicit inputs are given")
		upload     = flag.Bool("upload", true, "upload records to the catalog (ignored when CATALOG_KIND=none)")
		skipParsed = flag.Bool("skip-parsed", false, "skip documents whose content was already parsed")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Var(&urls, "url", "PDF URL to process (repeatable)")
	flag.Var(&files, "file", "local PDF to process (repeatable)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()
	a, err := app.Build(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := core.Options{
		URLs:       urls,
		Upload:     *upload && a.Catalog != nil,
		SkipParsed: *skipParsed,
	}
	for _, f := range files {
		r, err := a.Ingestor.IngestPath(ctx, f)
		if err != nil {
			printError("Error: %s: %v\n", f, err)
			os.Exit(1)
		}
		opts.Documents = append(opts.Documents, r.Document())
	}
	if *dir != "" {
		results, stats, err := a.Ingestor.IngestDirectory(ctx, *dir, true)
		if err != nil {
			printError("Error: --dir: %v\n", err)
			os.Exit(1)
		}
		for _, r := range results {
			if r.Err == "" {
				opts.Documents = append(opts.Documents, r.Document())
			}
		}
		logger.Info("ingestion complete", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	}

	explicit := len(opts.URLs) > 0 || len(opts.Documents) > 0
	switch {
	case *listing != "":
		opts.ListingURL = *listing
	case !explicit && !*noDiscover:
		opts.ListingURL = cfg.Source.ListingURL
	}
	if opts.ListingURL == "" && !explicit {
		printError("Error: nothing to process: give --url, --file, --dir or allow discovery\n")
		os.Exit(2)
	}

	report, err := a.Batch.Run(ctx, opts)
	printSummary(report)
	if err != nil {
		logger.Error("run failed", "run_id", report.RunID, "error", err)
		if errors.Is(err, common.ErrCatalogUnavailable) {
			printError("Catalog is unavailable; records were exported but not uploaded.\n")
		}
		os.Exit(1)
	}
}

func printSummary(r entity.RunReport) {
	fmt.Printf("Run %s complete!\n", r.RunID)
	fmt.Printf("- Documents: %d (failed %d, no table %d)\n", r.Documents, r.DocumentsFailed, r.NoBoundary)
	fmt.Printf("- Records extracted: %d\n", r.Extracted)
	fmt.Printf("- Blocks rejected: %d\n", r.Rejected)
	if r.Upload != nil {
		fmt.Printf("- Uploaded: %d, skipped: %d, failed: %d\n", r.Upload.Success, r.Upload.Skipped, r.Upload.Failed)
	}
	for _, p := range r.Artifacts {
		fmt.Printf("- Output: %s\n", p)
	}
}
