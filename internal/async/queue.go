package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// ErrClosed is returned by Enqueue once Shutdown has started.
var ErrClosed = errors.New("queue is shutting down")

// Job is one document to run through the pipeline. Seq is the document's
// position in its run and lets callers merge results in discovery order.
type Job struct {
	Seq         int
	Document    entity.SourceDocument
	SkipParsed  bool // skip content already recorded as parsed in the ledger
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes one job. It runs on a worker goroutine.
type Handler func(ctx context.Context, job Job)

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
