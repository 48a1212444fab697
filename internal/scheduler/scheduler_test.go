package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

func TestRunnerRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := NewRunner(func(ctx context.Context) (entity.RunReport, error) {
		close(started)
		<-release
		return entity.RunReport{RunID: "r1", Extracted: 3}, nil
	}, time.Minute, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()
	<-started

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "r1", last.Report.RunID)
	assert.Empty(t, last.Error)
	assert.False(t, last.FinishedAt.Before(last.StartedAt))
}

func TestRunnerRecordsFailure(t *testing.T) {
	r := NewRunner(func(context.Context) (entity.RunReport, error) {
		return entity.RunReport{RunID: "r2"}, errors.New("listing unreachable")
	}, 0, nil)

	_, ok := r.Last()
	assert.False(t, ok)

	_, err := r.Run(context.Background())
	require.Error(t, err)
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "listing unreachable", last.Error)
}

func TestRunnerGo(t *testing.T) {
	release := make(chan struct{})
	r := NewRunner(func(context.Context) (entity.RunReport, error) {
		<-release
		return entity.RunReport{RunID: "bg"}, nil
	}, time.Minute, nil)

	require.NoError(t, r.Go(context.Background()))
	assert.ErrorIs(t, r.Go(context.Background()), ErrRunInProgress)
	close(release)

	require.Eventually(t, func() bool {
		last, ok := r.Last()
		return ok && last.Report.RunID == "bg"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerFires(t *testing.T) {
	var runs atomic.Int32
	r := NewRunner(func(context.Context) (entity.RunReport, error) {
		runs.Add(1)
		return entity.RunReport{}, nil
	}, time.Minute, nil)

	s := NewScheduler(context.Background(), "@every 1s", r, nil)
	require.NoError(t, s.Start())
	assert.False(t, s.Next().IsZero())

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	<-s.Stop().Done()
}

func TestSchedulerBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), "every day", NewRunner(nil, 0, nil), nil)
	assert.Error(t, s.Start())
}
