package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/catalog"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// ClearListLimit bounds how many objects one Clear call removes.
const ClearListLimit = 1000

type ClearReport struct {
	Listed  int `json:"listed"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Clear lists up to ClearListLimit objects and deletes them one by one.
// Individual delete failures are counted; only the listing can fail the call.
func Clear(ctx context.Context, store catalog.Store, delay time.Duration, logger *slog.Logger) (ClearReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var report ClearReport

	objs, err := store.List(ctx, entity.CatalogFilter{Limit: ClearListLimit})
	if err != nil {
		logger.Error("sink.clear.list_failed", "error", err)
		return report, err
	}
	report.Listed = len(objs)
	if len(objs) == 0 {
		logger.Info("sink.clear.empty")
		return report, nil
	}

	logger.Warn("sink.clear.start", "objects", len(objs))
	pacer := newPacer(delay)
	for _, o := range objs {
		if err := pacer.Wait(ctx); err != nil {
			return report, err
		}
		if err := store.Delete(ctx, o.ID); err != nil {
			logger.Error("sink.clear.delete_failed", "id", o.ID, "name", o.Name, "error", err)
			report.Failed++
			continue
		}
		report.Deleted++
	}
	logger.Info("sink.clear.done", "deleted", report.Deleted, "failed", report.Failed)
	return report, nil
}
