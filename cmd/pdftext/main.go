package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/amenity-parser/internal/extract"
	"github.com/joseph-ayodele/amenity-parser/internal/ocr"
	"github.com/joseph-ayodele/amenity-parser/internal/segment"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	method := flag.String("method", "native", "native | pdftotext")
	blocks := flag.Bool("blocks", false, "print record blocks instead of raw lines")
	flag.Parse()

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "pdftext [-method native|pdftotext] [-blocks] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tx := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{Method: *method}, logger), logger)

	start := time.Now()
	res, err := tx.Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}
	logger.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"lines", len(res.Lines),
		"duration_ms", dur.Milliseconds(),
	)

	if !*blocks {
		for i, l := range res.Lines {
			fmt.Printf("%5d  %s\n", i, l)
		}
		return
	}

	bs, st, err := segment.Split(res.Lines, segment.DefaultOptions())
	if err != nil {
		logger.Error("segmentation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("segmentation OK", "boundary", st.Boundary, "blocks", len(bs), "capped", st.Capped)
	for i, b := range bs {
		fmt.Printf("--- block %d (line %d, capped=%t)\n", i+1, b.Start, b.Capped)
		for _, l := range b.Lines {
			fmt.Printf("  %s\n", l)
		}
	}
}
