package services

import (
	"fmt"

	"github.com/dukex/hl7autoct/pkg/models"
)

const (
	messagePending   = "Pipeline has been accepted and is waiting to start."
	messageRunning   = "Pipeline is still running. Download URLs are not available yet."
	messageSucceeded = "Pipeline completed successfully. Use the download URLs below to retrieve the artifacts."
)

// AssembleReport formats the status document. Every field is present for
// every status; summary is only used when the run succeeded.
func AssembleReport(
	handle models.ExecutionHandle,
	status models.ExecutionStatus,
	estimate models.ProgressEstimate,
	summary *models.FinalSummary,
) *models.StatusReport {
	report := &models.StatusReport{
		ExecutionArn: handle.String(),
		Status:       status,
		Message:      reportMessage(status),
		Progress:     estimate.Progress(),
		CurrentStep:  estimate.CurrentStep,
	}

	if status == models.StatusSucceeded && summary != nil {
		report.FinalStatus = finalStatus(summary)
	}

	return report
}

func reportMessage(status models.ExecutionStatus) string {
	switch {
	case status == models.StatusSucceeded:
		return messageSucceeded
	case status.IsFailure():
		return fmt.Sprintf("Pipeline did not complete (%s). No artifacts were produced.", status)
	case status == models.StatusRunning:
		return messageRunning
	default:
		return messagePending
	}
}

func finalStatus(summary *models.FinalSummary) models.FinalStatus {
	totalSegments := summary.TotalSegments
	totalRows := summary.TotalRows

	fs := models.FinalStatus{
		TotalSegments: &totalSegments,
		TotalRows:     &totalRows,
	}

	if d, ok := summary.Descriptor(models.ArtifactSpecification); ok {
		fs.SpecificationDownloadURL = d.Location
	}

	if d, ok := summary.Descriptor(models.ArtifactValidation); ok {
		fs.ValidationReportDownloadURL = d.Location
	}

	if d, ok := summary.Descriptor(models.ArtifactXMLJS); ok {
		fs.XMLJSDownloadURL = d.Location
	}

	return fs
}
