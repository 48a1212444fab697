package textextract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/internal/extract"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
)

type Pipeline struct {
	JobsRepo      repository.DocumentJobRepository
	TextExtractor extract.TextExtractor
	Log           *slog.Logger
}

func NewPipeline(jobs repository.DocumentJobRepository, tx extract.TextExtractor, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{JobsRepo: jobs, TextExtractor: tx, Log: log}
}

// Run moves the job to RUNNING, linearizes the document at path and marks
// the job TEXT_OK. A document with no text lines fails the job.
func (p *Pipeline) Run(ctx context.Context, jobID uuid.UUID, path string) (extract.TextExtractionResult, error) {
	if err := p.JobsRepo.MarkRunning(ctx, jobID); err != nil {
		return extract.TextExtractionResult{}, fmt.Errorf("mark running: %w", err)
	}

	res, err := p.TextExtractor.Extract(ctx, path)
	if err == nil && len(res.Lines) == 0 {
		err = fmt.Errorf("no text lines in %s", path)
	}
	if err != nil {
		_ = p.JobsRepo.Fail(ctx, jobID, err.Error())
		return res, err
	}

	if err := p.JobsRepo.FinishText(ctx, jobID, res.Method, len(res.Lines)); err != nil {
		return res, err
	}
	p.Log.Info("textextract.ok",
		"job_id", jobID,
		"method", res.Method,
		"pages", res.Pages,
		"lines", len(res.Lines),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
