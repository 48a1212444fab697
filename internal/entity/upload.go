package entity

// UploadStatus is the per-record outcome of the output sink.
type UploadStatus string

const (
	UploadSuccess UploadStatus = "success"
	UploadSkipped UploadStatus = "skipped"
	UploadFailed  UploadStatus = "failed"
)

// UploadOutcome records what happened to one record.
type UploadOutcome struct {
	Name    string       `json:"name"`
	Address string       `json:"address"`
	Status  UploadStatus `json:"status"`
	ID      string       `json:"id,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UploadReport aggregates a sink run.
type UploadReport struct {
	Success  int             `json:"success"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Outcomes []UploadOutcome `json:"outcomes"`
}

func (r *UploadReport) Add(o UploadOutcome) {
	switch o.Status {
	case UploadSuccess:
		r.Success++
	case UploadSkipped:
		r.Skipped++
	case UploadFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// RunReport is the operator-facing tally of a whole pipeline run.
type RunReport struct {
	RunID           string        `json:"run_id"`
	Documents       int           `json:"documents"`
	DocumentsFailed int           `json:"documents_failed"`
	NoBoundary      int           `json:"no_boundary"`
	Extracted       int           `json:"extracted"`
	Rejected        int           `json:"rejected"`
	Upload          *UploadReport `json:"upload,omitempty"`
	Artifacts       []string      `json:"artifacts,omitempty"`
}
