package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

func testConfig(t *testing.T, kind string) *common.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CATALOG_KIND", kind)
	t.Setenv("CATALOG_SQLITE_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("STATE_DB_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("FETCH_DOWNLOAD_DIR", filepath.Join(dir, "pdfs"))
	t.Setenv("OUTPUT_FORMATS", "json,csv")
	t.Setenv("EXTRACT_STRATEGY_FILE", "")
	return common.LoadConfig()
}

func TestBuildWithSQLiteCatalog(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(t, "sqlite"), nil, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NotNil(t, a.Catalog)
	require.NotNil(t, a.Uploader)
	require.NoError(t, a.Catalog.Ping(ctx))

	// Not a PDF body: text extraction fails and the document is only counted.
	bad := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))

	report, err := a.RunDocuments(ctx, []entity.SourceDocument{{Title: "broken", LocalPath: bad}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.DocumentsFailed)
	assert.Equal(t, 0, report.Extracted)
	require.NotNil(t, report.Upload)
	require.Len(t, report.Artifacts, 2)
	for _, p := range report.Artifacts {
		assert.FileExists(t, p)
	}

	jobs, err := a.Jobs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "FAILED", string(jobs[0].Status))
}

func TestBuildWithoutCatalog(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t, "none"), nil, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	assert.Nil(t, a.Catalog)
	assert.Nil(t, a.Uploader)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "none")
	cfg.Extract.Method = "tesseract"
	_, err := Build(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBuildRejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig(t, "none")
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategies:\n  - name: horoscope\n"), 0o644))
	cfg.Extract.StrategyFile = path

	_, err := Build(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
