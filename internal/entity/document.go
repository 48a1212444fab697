package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceDocument is a candidate document found by discovery or supplied locally.
type SourceDocument struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	LocalPath string `json:"local_path,omitempty"`
}

// Label is the provenance tag carried by every record extracted from the document.
func (d SourceDocument) Label() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	if d.URL != "" {
		return d.URL
	}
	return d.LocalPath
}

// DocumentJob is one row of the document ledger.
type DocumentJob struct {
	ID           uuid.UUID  `json:"id"`
	SourceURL    string     `json:"source_url"`
	LocalPath    string     `json:"local_path"`
	ContentHash  string     `json:"content_hash"`
	Status       string     `json:"status"`
	Method       string     `json:"method,omitempty"`
	Lines        int        `json:"lines"`
	Blocks       int        `json:"blocks"`
	Records      int        `json:"records"`
	Rejected     int        `json:"rejected"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
