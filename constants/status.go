package constants

import "strings"

// Status is the lifecycle state of an amenity.
type Status string

const (
	StatusActive              Status = "активный"
	StatusUnderReconstruction Status = "на реконструкции"
	StatusPlanned             Status = "планируется"
	StatusClosed              Status = "закрыт"
)

var allStatuses = []Status{StatusActive, StatusUnderReconstruction, StatusPlanned, StatusClosed}

// StatusKeyword maps a lowercase keyword stem to the status it signals.
type StatusKeyword struct {
	Keyword string
	Status  Status
}

// DefaultStatusKeywords is ordered by priority.
var DefaultStatusKeywords = []StatusKeyword{
	{"завершен", StatusActive},
	{"выполнен", StatusActive},
	{"строительств", StatusUnderReconstruction},
	{"реконструкци", StatusUnderReconstruction},
	{"смр", StatusUnderReconstruction},
	{"планируется", StatusPlanned},
	{"закрыт", StatusClosed},
}

const (
	DetailedStatusConstruction = "СМР (строительно-монтажные работы)"
	DetailedStatusInProgress   = "В работе"
)

func StatusStrings() []string {
	out := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		out[i] = string(s)
	}
	return out
}

// CanonicalizeStatus maps free text onto the closed set, falling back to StatusActive.
func CanonicalizeStatus(input string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return StatusActive, false
	}
	for _, s := range allStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	switch normalized {
	case "active", "completed", "завершен", "выполнен":
		return StatusActive, true
	case "under-construction", "under construction", "строительство", "реконструкция":
		return StatusUnderReconstruction, true
	case "planned":
		return StatusPlanned, true
	case "closed":
		return StatusClosed, true
	}
	return StatusActive, false
}

// JobStatus is the canonical status for rows in the document ledger.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusTextOK  JobStatus = "TEXT_OK" // text linearized
	JobStatusParsed  JobStatus = "PARSED"  // records assembled
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
