// Package sink forwards assembled records to the catalog store.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/amenity-parser/internal/catalog"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

type Config struct {
	// Delay is the fixed gap between per-record requests. Zero disables pacing.
	Delay time.Duration
}

type Uploader struct {
	store   catalog.Store
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewUploader(store catalog.Store, cfg Config, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{store: store, limiter: newPacer(cfg.Delay), log: logger}
}

func newPacer(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Upload creates every record in the store. A failed connectivity pre-check
// aborts before any record is attempted and wraps common.ErrCatalogUnavailable.
// Per-record failures are recorded in the report and never stop the loop.
func (u *Uploader) Upload(ctx context.Context, records []entity.AmenityRecord) (entity.UploadReport, error) {
	log := common.LoggerFrom(ctx, u.log)
	report := entity.UploadReport{Outcomes: make([]entity.UploadOutcome, 0, len(records))}

	if err := u.store.Ping(ctx); err != nil {
		log.Error("sink.precheck.failed", "error", err)
		return report, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	log.Info("sink.upload.start", "records", len(records))
	start := time.Now()

	for i, rec := range records {
		if err := u.limiter.Wait(ctx); err != nil {
			log.Warn("sink.upload.interrupted", "done", i, "error", err)
			return report, err
		}
		report.Add(u.uploadOne(ctx, log, rec))
	}

	log.Info("sink.upload.done",
		"success", report.Success,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (u *Uploader) uploadOne(ctx context.Context, log *slog.Logger, rec entity.AmenityRecord) entity.UploadOutcome {
	out := entity.UploadOutcome{Name: rec.Name, Address: rec.Address}

	exists, err := u.store.Exists(ctx, rec.Name, rec.Address)
	if err != nil {
		log.Warn("sink.upload.exists_check_failed", "name", rec.Name, "error", err)
	}
	if exists {
		log.Info("sink.upload.skip", "name", rec.Name, "reason", "exists")
		out.Status = entity.UploadSkipped
		return out
	}

	id, err := u.store.Create(ctx, rec)
	switch {
	case common.IsConflict(err):
		log.Info("sink.upload.skip", "name", rec.Name, "reason", "conflict")
		out.Status = entity.UploadSkipped
	case err != nil:
		log.Error("sink.upload.failed", "name", rec.Name, "error", err)
		out.Status = entity.UploadFailed
		out.Error = err.Error()
	default:
		log.Debug("sink.upload.ok", "name", rec.Name, "id", id)
		out.Status = entity.UploadSuccess
		out.ID = id
	}
	return out
}
