package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/ingest"
)

// DocumentsFunc runs the pipeline over already-local documents.
type DocumentsFunc func(ctx context.Context, docs []entity.SourceDocument) (entity.RunReport, error)

// IngestionService accepts a local file or directory and runs the pipeline
// over the PDFs it finds.
type IngestionService struct {
	ingestor ingest.Ingestor
	process  DocumentsFunc
	logger   *slog.Logger
}

func NewIngestionService(ing ingest.Ingestor, process DocumentsFunc, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{ingestor: ing, process: process, logger: logger}
}

type IngestRequest struct {
	Path       string `json:"path"`
	SkipHidden *bool  `json:"skip_hidden,omitempty"` // default true
}

type IngestResponse struct {
	Scanned   uint32                   `json:"scanned"`
	Matched   uint32                   `json:"matched"`
	Succeeded uint32                   `json:"succeeded"`
	Failed    uint32                   `json:"failed"`
	Files     []ingest.IngestionResult `json:"files"`
	Report    *entity.RunReport        `json:"report,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// Ingest scans path and processes every PDF that hashed cleanly.
func (s *IngestionService) Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.logger.Error("ingest request missing path")
		return IngestResponse{}, errBadRequest("path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return IngestResponse{}, errBadRequest("path: " + err.Error())
	}

	var (
		results []ingest.IngestionResult
		stats   ingest.DirStats
	)
	if info.IsDir() {
		skipHidden := true
		if req.SkipHidden != nil {
			skipHidden = *req.SkipHidden
		}
		s.logger.Info("ingest.directory.start", "root", path, "skip_hidden", skipHidden)
		results, stats, err = s.ingestor.IngestDirectory(ctx, path, skipHidden)
		if err != nil {
			return IngestResponse{}, errBadRequest("ingest directory: " + err.Error())
		}
	} else {
		r, err := s.ingestor.IngestPath(ctx, path)
		if err != nil {
			return IngestResponse{}, errBadRequest("ingest: " + err.Error())
		}
		results = []ingest.IngestionResult{r}
		stats = ingest.DirStats{Scanned: 1, Matched: 1, Succeeded: 1}
	}

	out := IngestResponse{
		Scanned:   stats.Scanned,
		Matched:   stats.Matched,
		Succeeded: stats.Succeeded,
		Failed:    stats.Failed,
		Files:     results,
	}

	docs := make([]entity.SourceDocument, 0, len(results))
	for _, r := range results {
		if r.Err == "" {
			docs = append(docs, r.Document())
		}
	}
	if len(docs) == 0 || s.process == nil {
		return out, nil
	}

	s.logger.Info("ingest.process.start", "documents", len(docs))
	report, err := s.process(ctx, docs)
	out.Report = &report
	if err != nil {
		s.logger.Error("ingest.process.failed", "error", err)
		out.Error = err.Error()
	}
	return out, nil
}

func (s *IngestionService) Handle(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	resp, err := s.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }
