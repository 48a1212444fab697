package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/async"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/metrics"
)

type Discoverer interface {
	Discover(ctx context.Context, pageURL string) ([]entity.SourceDocument, error)
}

type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.SourceDocument, skipParsed bool) DocumentResult
}

// Exporter writes the run's artifacts and returns their paths.
type Exporter interface {
	Export(ctx context.Context, records []entity.AmenityRecord, report entity.RunReport) ([]string, error)
}

type Uploader interface {
	Upload(ctx context.Context, records []entity.AmenityRecord) (entity.UploadReport, error)
}

type BatchConfig struct {
	Workers    int           // documents processed concurrently; default 1
	DocTimeout time.Duration // per document, fetch included
}

// Options selects the inputs of one run. Discovery runs only when
// ListingURL is set; URLs and Documents are appended after its results.
type Options struct {
	ListingURL string
	URLs       []string
	Documents  []entity.SourceDocument
	Upload     bool
	SkipParsed bool
}

// Batch runs discovery, per-document processing, exports and upload.
type Batch struct {
	logger     *slog.Logger
	cfg        BatchConfig
	discoverer Discoverer
	processor  DocumentProcessor
	exporter   Exporter
	uploader   Uploader
	metrics    *metrics.Metrics
}

func NewBatch(
	logger *slog.Logger,
	cfg BatchConfig,
	discoverer Discoverer,
	processor DocumentProcessor,
	exporter Exporter,
	uploader Uploader,
	m *metrics.Metrics,
) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DocTimeout <= 0 {
		cfg.DocTimeout = 3 * time.Minute
	}
	return &Batch{
		logger:     logger,
		cfg:        cfg,
		discoverer: discoverer,
		processor:  processor,
		exporter:   exporter,
		uploader:   uploader,
		metrics:    m,
	}
}

// Run always returns the report built so far. The error is non-nil when
// discovery fails, when ctx ends, when an export fails, or when the catalog
// pre-check fails (common.ErrCatalogUnavailable); documents that fail
// individually are only counted.
func (b *Batch) Run(ctx context.Context, opts Options) (entity.RunReport, error) {
	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	log := common.LoggerFrom(ctx, b.logger)
	report := entity.RunReport{RunID: runID}
	b.metrics.RunStarted()
	start := time.Now()

	docs, err := b.collect(ctx, opts)
	if err != nil {
		return report, err
	}
	report.Documents = len(docs)
	log.Info("batch.start", "documents", len(docs), "workers", b.cfg.Workers, "upload", opts.Upload)

	results := b.process(ctx, runID, docs, opts.SkipParsed)

	var records []entity.AmenityRecord
	for _, r := range results {
		switch {
		case r.Err != nil:
			report.DocumentsFailed++
		case r.NoBoundary:
			report.NoBoundary++
		}
		report.Rejected += r.Rejected
		records = append(records, r.Records...)
	}
	report.Extracted = len(records)
	log.Info("batch.extracted",
		"records", report.Extracted,
		"rejected", report.Rejected,
		"documents_failed", report.DocumentsFailed,
		"no_boundary", report.NoBoundary,
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	var errs []error
	if b.exporter != nil {
		paths, err := b.exporter.Export(ctx, records, report)
		report.Artifacts = paths
		if err != nil {
			log.Error("batch.export.failed", "error", err)
			errs = append(errs, fmt.Errorf("export: %w", err))
		}
	}

	if opts.Upload && b.uploader != nil {
		up, err := b.uploader.Upload(ctx, records)
		if err != nil {
			log.Error("batch.upload.aborted", "error", err)
			errs = append(errs, err)
		} else {
			report.Upload = &up
			b.metrics.Upload(up)
		}
	}

	b.metrics.RunFinished(report)
	log.Info("batch.done",
		"extracted", report.Extracted,
		"artifacts", len(report.Artifacts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, errors.Join(errs...)
}

func (b *Batch) collect(ctx context.Context, opts Options) ([]entity.SourceDocument, error) {
	log := common.LoggerFrom(ctx, b.logger)
	var found []entity.SourceDocument

	if opts.ListingURL != "" {
		if b.discoverer == nil {
			return nil, common.WrapError(common.ErrInvalidInput, "listing url given but discovery is not configured")
		}
		docs, err := b.discoverer.Discover(ctx, opts.ListingURL)
		if err != nil {
			log.Error("batch.discovery.failed", "url", opts.ListingURL, "error", err)
			return nil, err
		}
		found = append(found, docs...)
	}
	for _, u := range opts.URLs {
		found = append(found, entity.SourceDocument{URL: u, Title: titleFromURL(u)})
	}
	found = append(found, opts.Documents...)

	seen := make(map[string]struct{}, len(found))
	out := found[:0]
	for _, d := range found {
		key := d.URL
		if d.LocalPath != "" {
			key = d.LocalPath
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if !isPDF(d) {
			log.Info("batch.skip.not_pdf", "doc", d.Label())
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// process fans documents out to the worker queue and returns the results
// in input order.
func (b *Batch) process(ctx context.Context, runID string, docs []entity.SourceDocument, skipParsed bool) []DocumentResult {
	results := make([]DocumentResult, len(docs))
	var mu sync.Mutex

	q := async.NewProcessorQueue(func(jctx context.Context, job async.Job) {
		t0 := time.Now()
		res := b.processor.ProcessDocument(jctx, job.Document, job.SkipParsed)
		b.metrics.Document(outcome(res), time.Since(t0), len(res.Records), res.Rejected)
		mu.Lock()
		results[job.Seq] = res
		mu.Unlock()
	}, b.logger,
		async.WithWorkers(b.cfg.Workers),
		async.WithQueueSize(len(docs)+1),
		async.WithProcessTimeout(b.cfg.DocTimeout),
		async.WithBaseContext(ctx),
	)

	for i, d := range docs {
		err := q.Enqueue(ctx, async.Job{Seq: i, Document: d, SkipParsed: skipParsed, TraceID: runID})
		if err != nil {
			mu.Lock()
			results[i] = DocumentResult{Document: d, Err: err}
			mu.Unlock()
		}
	}
	q.Shutdown(context.Background())
	return results
}

func outcome(r DocumentResult) string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Skipped:
		return "skipped"
	case r.NoBoundary:
		return "no_boundary"
	default:
		return "ok"
	}
}

func isPDF(d entity.SourceDocument) bool {
	p := d.LocalPath
	if p == "" {
		p = d.URL
		if u, err := url.Parse(d.URL); err == nil {
			p = u.Path
		}
	}
	return constants.MapExtToFormat(filepath.Ext(p)) == constants.PDF
}

func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	base := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return raw
	}
	return base
}
