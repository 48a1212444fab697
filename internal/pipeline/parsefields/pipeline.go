package parsefields

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/internal/assemble"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/fields"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
	"github.com/joseph-ayodele/amenity-parser/internal/segment"
)

// Config holds per-document limits for the parse stage.
type Config struct {
	MaxRecords int // default 100; 0 or less means the default
	Segment    segment.Options
}

type Pipeline struct {
	Logger    *slog.Logger
	Cfg       Config
	JobsRepo  repository.DocumentJobRepository
	Battery   *fields.Battery
	Assembler *assemble.Assembler
}

// Result is what one document yielded.
type Result struct {
	Records  []entity.AmenityRecord
	Rejected int
	Blocks   int
	Capped   bool
	Stats    segment.Stats
}

func NewPipeline(logger *slog.Logger, cfg Config, jobs repository.DocumentJobRepository, battery *fields.Battery, asm *assemble.Assembler) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = 100
	}
	if battery == nil {
		battery = fields.DefaultBattery(logger)
	}
	if asm == nil {
		asm = assemble.NewAssembler(assemble.Config{}, logger)
	}
	return &Pipeline{Logger: logger, Cfg: cfg, JobsRepo: jobs, Battery: battery, Assembler: asm}
}

// Run segments lines into blocks and assembles one record per block, in
// document order, stopping at MaxRecords. A document without a table
// boundary is recorded as parsed with zero records and the boundary error
// is returned for the caller to tally.
func (p *Pipeline) Run(ctx context.Context, jobID uuid.UUID, doc entity.SourceDocument, lines []string) (Result, error) {
	log := common.LoggerFrom(ctx, p.Logger)
	start := time.Now()

	blocks, st, err := segment.Split(lines, p.Cfg.Segment)
	if err != nil {
		if errors.Is(err, common.ErrBoundaryNotFound) {
			log.Warn("segment.boundary_not_found", "job_id", jobID, "lines", len(lines))
			if ferr := p.JobsRepo.FinishParse(ctx, jobID, 0, 0, 0); ferr != nil {
				return Result{}, ferr
			}
			return Result{Stats: st}, err
		}
		_ = p.JobsRepo.Fail(ctx, jobID, err.Error())
		return Result{}, err
	}
	log.Info("segment.boundary_found",
		"job_id", jobID,
		"boundary", st.Boundary,
		"blocks", st.Kept,
		"dropped_short", st.DroppedShort,
		"capped", st.Capped,
	)

	res := Result{Blocks: len(blocks), Stats: st}
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			_ = p.JobsRepo.Fail(ctx, jobID, err.Error())
			return res, err
		}
		if len(res.Records) == p.Cfg.MaxRecords {
			res.Capped = true
			log.Warn("parsefields.cap_reached", "job_id", jobID, "max", p.Cfg.MaxRecords, "remaining_blocks", len(blocks)-i)
			break
		}
		fm := p.Battery.Extract(b.Lines)
		rec, err := p.Assembler.Assemble(fm, doc, i+1)
		if err != nil {
			if common.IsRejected(err) {
				res.Rejected++
				log.Debug("parsefields.rejected", "block", i+1, "start_line", b.Start, "reason", err)
				continue
			}
			_ = p.JobsRepo.Fail(ctx, jobID, err.Error())
			return res, err
		}
		res.Records = append(res.Records, rec)
	}

	if err := p.JobsRepo.FinishParse(ctx, jobID, res.Blocks, len(res.Records), res.Rejected); err != nil {
		return res, err
	}
	log.Info("parsefields.ok",
		"job_id", jobID,
		"records", len(res.Records),
		"rejected", res.Rejected,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
