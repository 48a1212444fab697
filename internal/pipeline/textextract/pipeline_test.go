package textextract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/extract"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
)

type stubExtractor struct {
	res extract.TextExtractionResult
	err error
}

func (s stubExtractor) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return s.res, s.err
}

func newLedger(t *testing.T) repository.DocumentJobRepository {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	jobs, err := repository.NewDocumentJobRepository(ctx, db, nil)
	require.NoError(t, err)
	return jobs
}

func TestRunMarksTextOK(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)
	job, err := jobs.Create(ctx, "", "/tmp/a.pdf", "h")
	require.NoError(t, err)

	tx := stubExtractor{res: extract.TextExtractionResult{Lines: []string{"a", "b"}, Method: "pdf-native"}}
	res, err := NewPipeline(jobs, tx, nil).Run(ctx, job.ID, "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Len(t, res.Lines, 2)

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusTextOK), got.Status)
	assert.Equal(t, "pdf-native", got.Method)
	assert.Equal(t, 2, got.Lines)
}

func TestRunFailsJob(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)

	for _, tx := range []stubExtractor{
		{err: errors.New("broken xref")},
		{res: extract.TextExtractionResult{Method: "pdf-native"}},
	} {
		job, err := jobs.Create(ctx, "", "/tmp/a.pdf", "h")
		require.NoError(t, err)

		_, err = NewPipeline(jobs, tx, nil).Run(ctx, job.ID, "/tmp/a.pdf")
		require.Error(t, err)

		got, err := jobs.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, string(constants.JobStatusFailed), got.Status)
		require.NotNil(t, got.ErrorMessage)
	}
}
