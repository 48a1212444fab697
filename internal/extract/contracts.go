package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Lines      []string // linearized: trimmed, non-empty, in order
	Pages      int
	SourceType string // "PDF"
	Method     string // "pdf-text" | "pdf-native"
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// LineClassifier answers "does this line carry the field?".
type LineClassifier interface {
	Classify(line string) bool
}

// ClassifierFunc adapts a predicate to LineClassifier.
type ClassifierFunc func(line string) bool

func (f ClassifierFunc) Classify(line string) bool { return f(line) }

// FieldExtractor is Stage 2: one record block -> one field.
// Extract scans the block in order and reports the value and the indices of
// the lines it consumed. ok is false when the field is absent; absence is
// never an error.
type FieldExtractor interface {
	Field() string
	Extract(block []string) (value any, consumed []int, ok bool)
}
