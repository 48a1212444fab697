package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	// -layout is left off: it interleaves table columns on one line.
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, args...)
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil, nil
}

// nativeText reads the PDF's text layer row by row. The reader panics on
// malformed object graphs; that is returned as an error for this document.
func (e *Extractor) nativeText(path string) (text string, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("ocr.native.panic", "path", path, "panic", rec)
			text, pages, err = "", 0, fmt.Errorf("read pdf: %v", rec)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("ocr.close_failed", "path", path, "error", cerr)
		}
	}()

	total := r.NumPage()
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		total = e.cfg.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			b.WriteString(joinRow(row.Content))
			b.WriteByte('\n')
		}
		b.WriteByte('\f')
	}
	return b.String(), total, nil
}

// joinRow glues text runs of one row, inserting a space where runs do not touch.
func joinRow(items pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range items {
		if i > 0 && t.X-prevEnd > t.FontSize*0.15 && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return b.String()
}
