package models

// StatusReport is the JSON document returned by the status endpoint. Every
// field is always present; FinalStatus marshals to {} until the run succeeds.
type StatusReport struct {
	ExecutionArn string          `json:"executionArn"`
	Status       ExecutionStatus `json:"status"`
	Message      string          `json:"message"`
	Progress     string          `json:"progress"`
	CurrentStep  string          `json:"current_step"`
	FinalStatus  FinalStatus     `json:"final_status"`
}

// FinalStatus carries the download locations and counters of a successful run.
type FinalStatus struct {
	SpecificationDownloadURL    string `json:"specification_download_url,omitempty"`
	ValidationReportDownloadURL string `json:"validation_report_download_url,omitempty"`
	XMLJSDownloadURL            string `json:"xmljs_download_url,omitempty"`
	TotalSegments               *int64 `json:"total_segments,omitempty"`
	TotalRows                   *int64 `json:"total_rows,omitempty"`
}

// IsEmpty is true while the run has not succeeded.
func (f FinalStatus) IsEmpty() bool {
	return f == FinalStatus{}
}
