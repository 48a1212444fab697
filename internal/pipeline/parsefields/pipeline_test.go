package parsefields

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/repository"
)

var doc = entity.SourceDocument{URL: "https://www.volgograd.ru/upload/list.pdf", Title: "Перечень общественных территорий"}

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

func block(name string) []string {
	return []string{
		"Общественная территория, " + name,
		"г.Волгоград",
		"Центральный район",
		"ООО СтройГруп",
		"15.01.2024",
		"59,00",
	}
}

func TestRunSingleRecordTable(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)
	job, err := jobs.Create(ctx, doc.URL, "", "h")
	require.NoError(t, err)

	lines := append([]string{"Перечень объектов", "№ п/п"}, block("сквер по ул. Мира")...)
	res, err := NewPipeline(nil, Config{}, jobs, nil, nil).Run(ctx, job.ID, doc, lines)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Contains(t, rec.Name, "сквер по ул. Мира")
	assert.Equal(t, "Центральный", rec.District)
	assert.Equal(t, "2024-01-15", rec.StartDate)
	assert.Equal(t, 1, rec.ObjectNumber)
	assert.Equal(t, 2, res.Stats.Boundary)

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsed), got.Status)
	assert.Equal(t, 1, got.Records)
}

func TestRunWithoutBoundary(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)
	job, err := jobs.Create(ctx, doc.URL, "", "h")
	require.NoError(t, err)

	res, err := NewPipeline(nil, Config{}, jobs, nil, nil).Run(ctx, job.ID, doc, []string{"Отчёт", "г.Волгоград", "2024"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBoundaryNotFound)
	assert.Empty(t, res.Records)

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusParsed), got.Status)
	assert.Zero(t, got.Records)
}

func TestRunDropsShortBlock(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)
	job, err := jobs.Create(ctx, doc.URL, "", "h")
	require.NoError(t, err)

	lines := []string{"Общественная территория, сквер", "г.Волгоград", "Советский район"}
	lines = append(lines, block("парк Гагарина")...)
	res, err := NewPipeline(nil, Config{}, jobs, nil, nil).Run(ctx, job.ID, doc, lines)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.DroppedShort)
	require.Len(t, res.Records, 1)
	assert.Contains(t, res.Records[0].Name, "парк Гагарина")
}

func TestRunCountsRejectionsAndCaps(t *testing.T) {
	ctx := context.Background()
	jobs := newLedger(t)
	job, err := jobs.Create(ctx, doc.URL, "", "h")
	require.NoError(t, err)

	var lines []string
	lines = append(lines, "Общественная территория,", "г.Волгоград", "12", "15.01.2024", "ООО Ромашка")
	for i := 0; i < 4; i++ {
		lines = append(lines, block(fmt.Sprintf("сквер у дома %d по ул. Мира", i+1))...)
	}

	res, err := NewPipeline(nil, Config{MaxRecords: 2}, jobs, nil, nil).Run(ctx, job.ID, doc, lines)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rejected)
	assert.Len(t, res.Records, 2)
	assert.True(t, res.Capped)
	assert.Equal(t, 5, res.Blocks)
	assert.Equal(t, 2, res.Records[0].ObjectNumber)
}
