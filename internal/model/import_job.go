package model

import "time"

// JobStatus is the lifecycle state of an import job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusUnknown    JobStatus = "unknown"
)

// MaxJobRowErrors caps the number of rejected rows kept on a job snapshot.
const MaxJobRowErrors = 50

// RowErrorInfo describes a rejected CSV row.
type RowErrorInfo struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// ImportJob is the latest progress snapshot of one CSV import.
type ImportJob struct {
	ID            string         `json:"job_id"`
	Status        JobStatus      `json:"status"`
	Progress      int            `json:"progress"`
	Message       string         `json:"message"`
	TotalRows     int            `json:"total_rows"`
	ProcessedRows int            `json:"processed_rows"`
	ImportedRows  int            `json:"imported_rows"`
	SkippedRows   int            `json:"skipped_rows"`
	Errors        []RowErrorInfo `json:"errors,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewImportJob returns the initial snapshot stored when an upload is accepted.
func NewImportJob(id string) ImportJob {
	return ImportJob{
		ID:        id,
		Status:    JobStatusProcessing,
		Message:   "queued",
		UpdatedAt: time.Now(),
	}
}

// UnknownJob is the sentinel returned for ids the status table has never seen.
func UnknownJob(id string) ImportJob {
	return ImportJob{
		ID:      id,
		Status:  JobStatusUnknown,
		Message: "Job not found",
	}
}

// IsTerminal reports whether the job has finished.
func (j ImportJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Clone returns a copy that does not share the Errors slice.
func (j ImportJob) Clone() ImportJob {
	if j.Errors != nil {
		errs := make([]RowErrorInfo, len(j.Errors))
		copy(errs, j.Errors)
		j.Errors = errs
	}
	return j
}
