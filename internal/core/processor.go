package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/ingest"
	"github.com/joseph-ayodele/amenity-parser/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/amenity-parser/internal/pipeline/textextract"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
)

// Fetcher downloads a remote document and returns its local path.
type Fetcher interface {
	Download(ctx context.Context, url, filename string) (string, error)
}

// Processor coordinates fetch, text extraction and field parsing for one document.
type Processor struct {
	logger   *slog.Logger
	fetcher  Fetcher
	jobsRepo repository.DocumentJobRepository
	text     *textextract.Pipeline
	parse    *parsefields.Pipeline
}

// DocumentResult is what one document contributed to a run. Err is set for
// fetch and extraction failures; a missing table boundary only sets NoBoundary.
type DocumentResult struct {
	Document   entity.SourceDocument
	JobID      uuid.UUID
	Records    []entity.AmenityRecord
	Rejected   int
	Blocks     int
	Capped     bool
	NoBoundary bool
	Skipped    bool
	Err        error
}

func NewProcessor(
	logger *slog.Logger,
	fetcher Fetcher,
	jobsRepo repository.DocumentJobRepository,
	text *textextract.Pipeline,
	parse *parsefields.Pipeline,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		fetcher:  fetcher,
		jobsRepo: jobsRepo,
		text:     text,
		parse:    parse,
	}
}

// ProcessDocument runs one document end to end. With skipParsed set, content
// already recorded as PARSED in the ledger is not processed again.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.SourceDocument, skipParsed bool) DocumentResult {
	ctx = common.WithDocument(ctx, doc.Label())
	log := common.LoggerFrom(ctx, p.logger)
	start := time.Now()
	out := DocumentResult{Document: doc}

	// 1) fetch when the document only exists remotely
	if doc.LocalPath == "" {
		if p.fetcher == nil {
			out.Err = common.WrapError(common.ErrInvalidInput, "no fetcher for remote document "+doc.URL)
			return out
		}
		path, err := p.fetcher.Download(ctx, doc.URL, "")
		if err != nil {
			log.Error("processor.fetch.failed", "url", doc.URL, "error", err)
			if job, jerr := p.jobsRepo.Create(ctx, doc.URL, "", ""); jerr == nil {
				out.JobID = job.ID
				_ = p.jobsRepo.Fail(ctx, job.ID, err.Error())
			}
			out.Err = err
			return out
		}
		doc.LocalPath = path
		out.Document = doc
	}

	// 2) content hash for the ledger
	sum, size, err := ingest.HashFile(doc.LocalPath)
	if err != nil {
		log.Error("processor.hash.failed", "path", doc.LocalPath, "error", err)
		out.Err = err
		return out
	}
	if skipParsed {
		prev, err := p.jobsRepo.FindParsedByHash(ctx, sum)
		switch {
		case err == nil:
			log.Info("processor.skip.already_parsed", "job_id", prev.ID, "hash", sum)
			out.JobID = prev.ID
			out.Skipped = true
			return out
		case !errors.Is(err, common.ErrNotFound):
			log.Warn("processor.ledger.lookup_failed", "error", err)
		}
	}

	job, err := p.jobsRepo.Create(ctx, doc.URL, doc.LocalPath, sum)
	if err != nil {
		out.Err = err
		return out
	}
	out.JobID = job.ID
	log.Debug("processor.job.created", "job_id", job.ID, "bytes", size)

	// 3) text
	textRes, err := p.text.Run(ctx, job.ID, doc.LocalPath)
	if err != nil {
		log.Error("processor.text.failed", "job_id", job.ID, "error", err)
		out.Err = err
		return out
	}

	// 4) blocks -> records
	parsed, err := p.parse.Run(ctx, job.ID, doc, textRes.Lines)
	out.Records = parsed.Records
	out.Rejected = parsed.Rejected
	out.Blocks = parsed.Blocks
	out.Capped = parsed.Capped
	if err != nil {
		if errors.Is(err, common.ErrBoundaryNotFound) {
			out.NoBoundary = true
			log.Warn("processor.no_boundary", "job_id", job.ID, "lines", len(textRes.Lines))
			return out
		}
		log.Error("processor.parse.failed", "job_id", job.ID, "error", err)
		out.Err = err
		return out
	}

	log.Info("processor.document.ok",
		"job_id", job.ID,
		"records", len(out.Records),
		"rejected", out.Rejected,
		"blocks", out.Blocks,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}
