package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/amenity-parser/constants"
)

const (
	MethodPDFText   = "pdf-text"   // pdftotext via Runner
	MethodPDFNative = "pdf-native" // pure Go reader
)

type Config struct {
	Method    string // "pdftotext" | "native"; if empty -> "native"
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Lines      []string
	Pages      int
	SourceType string
	Method     string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Extractor turns a PDF into linearized lines.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner is NewExtractor with an injected command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Method == "" {
		cfg.Method = "native"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract linearizes the document at path. pdftotext falls back to the
// native reader when the binary is not installed.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != constants.PDF {
		e.logger.Error("ocr.unsupported_extension", "extension", ext, "path", path)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	res := ExtractionResult{SourceType: constants.PDF}
	var (
		text  string
		pages int
		warns []string
		err   error
	)
	switch e.cfg.Method {
	case "pdftotext":
		res.Method = MethodPDFText
		text, pages, warns, err = e.pdfToText(ctx, path)
		if err != nil && errors.Is(err, exec.ErrNotFound) {
			e.logger.Warn("ocr.pdftotext_missing", "bin", e.cfg.Pdftotext, "fallback", MethodPDFNative)
			warns = append(warns, "pdftotext not found, used native reader")
			res.Method = MethodPDFNative
			text, pages, err = e.nativeText(path)
		}
	default:
		res.Method = MethodPDFNative
		text, pages, err = e.nativeText(path)
	}
	res.Warnings = warns
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract_failed", "path", path, "method", res.Method, "error", err)
		return res, fmt.Errorf("extract text: %w", err)
	}

	res.Text = text
	res.Pages = pages
	res.Lines = Linearize(text)
	res.Confidence = heuristicConfidence(res.Lines)
	e.logger.Debug("ocr.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"lines", len(res.Lines),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
