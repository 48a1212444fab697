package async

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

func TestQueueProcessesEveryJob(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	q := NewProcessorQueue(func(_ context.Context, job Job) {
		mu.Lock()
		seen = append(seen, job.Seq)
		mu.Unlock()
	}, nil, WithWorkers(3), WithQueueSize(2))

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Seq: i, Document: entity.SourceDocument{Title: "doc"}}))
	}
	q.Shutdown(context.Background())

	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{}), ErrClosed)
}

func TestQueueAppliesTimeoutAndTrace(t *testing.T) {
	var (
		hadDeadline atomic.Bool
		runID       atomic.Value
	)
	q := NewProcessorQueue(func(ctx context.Context, _ Job) {
		_, ok := ctx.Deadline()
		hadDeadline.Store(ok)
		runID.Store(common.RunIDFromContext(ctx))
	}, nil, WithProcessTimeout(time.Second))

	require.NoError(t, q.Enqueue(context.Background(), Job{TraceID: "run-1"}))
	q.Shutdown(context.Background())

	assert.True(t, hadDeadline.Load())
	assert.Equal(t, "run-1", runID.Load())
}

func TestQueueBaseContextCancelsJobs(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var cancelled atomic.Bool

	q := NewProcessorQueue(func(ctx context.Context, _ Job) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	}, nil, WithBaseContext(base))

	require.NoError(t, q.Enqueue(context.Background(), Job{}))
	<-started
	cancel()
	q.Shutdown(context.Background())
	assert.True(t, cancelled.Load())
}
