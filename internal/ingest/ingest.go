package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath string    `json:"source_path"`
	HashHex    string    `json:"sha256,omitempty"`
	FileExt    string    `json:"ext,omitempty"`
	Size       int64     `json:"size,omitempty"`
	ModTime    time.Time `json:"mod_time"`
	Err        string    `json:"error,omitempty"`
}

// Document turns an ingested file into a pipeline input labelled by file name.
func (r IngestionResult) Document() entity.SourceDocument {
	base := filepath.Base(r.SourcePath)
	return entity.SourceDocument{
		Title:     strings.TrimSuffix(base, filepath.Ext(base)),
		LocalPath: r.SourcePath,
	}
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32 `json:"scanned"`
	Matched   uint32 `json:"matched"`
	Succeeded uint32 `json:"succeeded"`
	Failed    uint32 `json:"failed"`
}

// Ingestor is the behavior the batch and the daemon depend on.
type Ingestor interface {
	// IngestPath a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
