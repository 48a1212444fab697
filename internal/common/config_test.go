package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("CATALOG_KIND", "")
	cfg := LoadConfig()

	assert.Equal(t, DefaultListingURL, cfg.Source.ListingURL)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.InsecureSkipVerify)
	assert.False(t, cfg.Catalog.InsecureSkipVerify)
	assert.Equal(t, 100*time.Millisecond, cfg.Catalog.UploadDelay)
	assert.Equal(t, 100, cfg.Extract.MaxRecords)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SOURCE_KEYWORDS", "парк, сквер ,,")
	t.Setenv("EXTRACT_WORKERS", "3")
	t.Setenv("FETCH_INSECURE_TLS", "false")
	t.Setenv("CATALOG_KIND", "postgres")
	t.Setenv("DB_URL", "")

	cfg := LoadConfig()
	assert.Equal(t, []string{"парк", "сквер"}, cfg.Source.Keywords)
	assert.Equal(t, 3, cfg.Extract.Workers)
	assert.False(t, cfg.Fetch.InsecureSkipVerify)

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	cfg := LoadConfig()
	cfg.Extract.Method = "ocr"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}
