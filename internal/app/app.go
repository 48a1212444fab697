// Package app builds the component graph shared by the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/amenity-parser/internal/assemble"
	"github.com/joseph-ayodele/amenity-parser/internal/catalog"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/core"
	"github.com/joseph-ayodele/amenity-parser/internal/discovery"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/export"
	"github.com/joseph-ayodele/amenity-parser/internal/extract"
	"github.com/joseph-ayodele/amenity-parser/internal/fetch"
	"github.com/joseph-ayodele/amenity-parser/internal/fields"
	"github.com/joseph-ayodele/amenity-parser/internal/ingest"
	"github.com/joseph-ayodele/amenity-parser/internal/metrics"
	"github.com/joseph-ayodele/amenity-parser/internal/ocr"
	"github.com/joseph-ayodele/amenity-parser/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/amenity-parser/internal/pipeline/textextract"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
	"github.com/joseph-ayodele/amenity-parser/internal/sink"
)

// App holds every long-lived component. Catalog and Uploader are nil when
// the catalog kind is "none".
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Fetcher   *fetch.Fetcher
	Scraper   *discovery.Scraper
	Text      extract.TextExtractor
	Jobs      repository.DocumentJobRepository
	Processor *core.Processor
	Exporter  *export.Service
	Catalog   catalog.Store
	Uploader  *sink.Uploader
	Ingestor  *ingest.FSIngestor
	Batch     *core.Batch

	stateDB   *sql.DB
	catalogDB *sql.DB
	pool      *pgxpool.Pool
}

// Build validates cfg and wires the components. reg may be nil to skip
// metric registration.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New(reg)}

	battery, err := buildBattery(cfg.Extract.StrategyFile, logger)
	if err != nil {
		return nil, err
	}

	a.stateDB, err = repository.OpenSQLite(ctx, cfg.State.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	a.Jobs, err = repository.NewDocumentJobRepository(ctx, a.stateDB, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openCatalog(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.Catalog != nil {
		a.Uploader = sink.NewUploader(a.Catalog, sink.Config{Delay: cfg.Catalog.UploadDelay}, logger)
	}

	a.Fetcher = fetch.NewFetcher(fetch.Config{
		DownloadDir:        cfg.Fetch.DownloadDir,
		Timeout:            cfg.Fetch.Timeout,
		PageTimeout:        cfg.Source.PageTimeout,
		UserAgent:          cfg.Source.UserAgent,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
	}, logger)
	a.Scraper = discovery.NewScraper(discovery.Config{
		BaseURL:  cfg.Source.BaseURL,
		Keywords: cfg.Source.Keywords,
	}, a.Fetcher, logger)

	a.Text = extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Method:    cfg.Extract.Method,
		Pdftotext: cfg.Extract.Pdftotext,
	}, logger), logger)

	a.Processor = core.NewProcessor(logger, a.Fetcher, a.Jobs,
		textextract.NewPipeline(a.Jobs, a.Text, logger),
		parsefields.NewPipeline(logger, parsefields.Config{MaxRecords: cfg.Extract.MaxRecords}, a.Jobs, battery,
			assemble.NewAssembler(assemble.Config{DefaultDistrict: cfg.Extract.DefaultDistrict}, logger)),
	)
	a.Exporter = export.NewService(export.Config{Dir: cfg.Output.Dir, Formats: cfg.Output.Formats}, logger)
	a.Ingestor = ingest.NewFSIngestor(logger)

	var up core.Uploader
	if a.Uploader != nil {
		up = a.Uploader
	}
	a.Batch = core.NewBatch(logger, core.BatchConfig{
		Workers:    cfg.Extract.Workers,
		DocTimeout: cfg.Extract.DocTimeout,
	}, a.Scraper, a.Processor, a.Exporter, up, a.Metrics)

	logger.Info("app.ready",
		"catalog", cfg.Catalog.Kind,
		"extract_method", cfg.Extract.Method,
		"workers", cfg.Extract.Workers,
		"formats", cfg.Output.Formats,
	)
	return a, nil
}

func buildBattery(path string, logger *slog.Logger) (*fields.Battery, error) {
	if path == "" {
		return fields.DefaultBattery(logger), nil
	}
	sc, err := fields.LoadStrategyConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy file: %w", err)
	}
	return fields.NewRegistry().BuildBattery(sc, logger)
}

func (a *App) openCatalog(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Catalog.Kind {
	case "http":
		a.Catalog = catalog.NewClient(catalog.Config{
			BaseURL:            cfg.Catalog.BackendURL,
			APIKey:             cfg.Catalog.APIKey,
			RequestTimeout:     cfg.Catalog.RequestTimeout,
			PingTimeout:        cfg.Catalog.PingTimeout,
			InsecureSkipVerify: cfg.Catalog.InsecureSkipVerify,
		}, a.Logger)
	case "postgres":
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("open catalog postgres: %w", err)
		}
		a.pool = pool
		if err := repository.MigratePostgres(ctx, pool); err != nil {
			return fmt.Errorf("migrate catalog postgres: %w", err)
		}
		a.Catalog = repository.NewPostgresAmenityRepository(pool, a.Logger)
	case "sqlite":
		db, err := repository.OpenSQLite(ctx, cfg.Catalog.SQLitePath, a.Logger)
		if err != nil {
			return fmt.Errorf("open catalog sqlite: %w", err)
		}
		a.catalogDB = db
		a.Catalog, err = repository.NewSQLiteAmenityRepository(ctx, db, a.Logger)
		if err != nil {
			return err
		}
	case "none":
	}
	return nil
}

// RunDocuments processes already-local documents, uploading when a catalog
// is configured.
func (a *App) RunDocuments(ctx context.Context, docs []entity.SourceDocument, skipParsed bool) (entity.RunReport, error) {
	return a.Batch.Run(ctx, core.Options{
		Documents:  docs,
		Upload:     a.Catalog != nil,
		SkipParsed: skipParsed,
	})
}

// Discover runs discovery on the configured listing page.
func (a *App) Discover(ctx context.Context, skipParsed bool) (entity.RunReport, error) {
	return a.Batch.Run(ctx, core.Options{
		ListingURL: a.Config.Source.ListingURL,
		Upload:     a.Catalog != nil,
		SkipParsed: skipParsed,
	})
}

// Close releases the databases. Safe to call on a partially built App.
func (a *App) Close() {
	repository.Close(a.pool, a.stateDB, a.Logger)
	if a.catalogDB != nil {
		if err := a.catalogDB.Close(); err != nil {
			a.Logger.Error("failed to close catalog sqlite", "error", err)
		}
	}
}
