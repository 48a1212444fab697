package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatReport = "report"
)

type Config struct {
	Dir     string
	Formats []string // json is always written
	Prefix  string   // file name prefix, default "volgograd_objects"
}

// Service writes a run's records to the output directory.
type Service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "volgograd_objects"
	}
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// Export writes the JSON artifact first, then every other configured
// format, and returns the paths written. A failure in a secondary format
// does not remove the artifacts already written.
func (s *Service) Export(ctx context.Context, records []entity.AmenityRecord, report entity.RunReport) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := s.baseName(report.RunID)

	var written []string
	for _, format := range s.formats() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		var (
			buf  bytes.Buffer
			name string
			err  error
		)
		switch format {
		case FormatJSON:
			name, err = base+".json", WriteJSON(&buf, records)
		case FormatCSV:
			name, err = base+".csv", WriteCSV(&buf, records)
		case FormatXLSX:
			var b []byte
			b, err = BuildXLSX(records)
			buf.Write(b)
			name = base + ".xlsx"
		case FormatReport:
			name, err = base+"_report.txt", WriteReport(&buf, records, report, s.now())
		default:
			s.logger.Warn("export.format.unknown", "format", format)
			continue
		}
		if err != nil {
			s.logger.Error("export.format.failed", "format", format, "error", err)
			return written, fmt.Errorf("%s: %w", format, err)
		}
		p := filepath.Join(s.cfg.Dir, name)
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
		s.logger.Info("export."+format+".ok", "path", p, "records", len(records), "bytes", buf.Len())
	}

	s.logger.Debug("export.done", "files", len(written), "elapsed_ms", time.Since(start).Milliseconds())
	return written, nil
}

func (s *Service) formats() []string {
	out := []string{FormatJSON}
	seen := map[string]bool{FormatJSON: true}
	for _, f := range s.cfg.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func (s *Service) baseName(runID string) string {
	name := s.cfg.Prefix + "_" + s.now().UTC().Format("2006-01-02")
	if len(runID) >= 8 {
		name += "_" + runID[:8]
	}
	return name
}
