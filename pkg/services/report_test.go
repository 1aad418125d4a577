package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleReport_AllFieldsPresent(t *testing.T) {
	t.Parallel()

	statuses := []models.ExecutionStatus{
		models.StatusPending,
		models.StatusRunning,
		models.StatusFailed,
		models.StatusTimedOut,
		models.StatusAborted,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			report := AssembleReport(testHandle, status, models.ProgressEstimate{Percent: 43, CurrentStep: "Validating JS Logic"}, nil)

			body, err := json.Marshal(report)
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(body, &fields))

			for _, key := range []string{"executionArn", "status", "message", "progress", "current_step", "final_status"} {
				assert.Contains(t, fields, key)
			}

			assert.JSONEq(t, `{}`, string(fields["final_status"]))
			assert.Equal(t, "43%", report.Progress)
		})
	}
}

func TestAssembleReport_SummaryIgnoredUnlessSucceeded(t *testing.T) {
	t.Parallel()

	summary := &models.FinalSummary{
		TotalSegments: 4,
		TotalRows:     10,
		Artifacts: []models.ArtifactDescriptor{
			{Type: models.ArtifactSpecification, Location: "https://example.com/spec"},
		},
	}

	report := AssembleReport(testHandle, models.StatusFailed, models.ProgressEstimate{}, summary)
	assert.True(t, report.FinalStatus.IsEmpty())

	report = AssembleReport(testHandle, models.StatusSucceeded, models.ProgressEstimate{Percent: 100}, summary)
	assert.Equal(t, "https://example.com/spec", report.FinalStatus.SpecificationDownloadURL)
	assert.Empty(t, report.FinalStatus.ValidationReportDownloadURL)
	require.NotNil(t, report.FinalStatus.TotalRows)
	assert.Equal(t, int64(10), *report.FinalStatus.TotalRows)
}

func TestAssembleReport_ZeroCountersArePresent(t *testing.T) {
	t.Parallel()

	expires := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	summary := &models.FinalSummary{
		Artifacts: []models.ArtifactDescriptor{
			{Type: models.ArtifactValidation, Location: "https://example.com/report", ExpiresAt: &expires},
		},
	}

	report := AssembleReport(testHandle, models.StatusSucceeded, models.ProgressEstimate{Percent: 100}, summary)

	body, err := json.Marshal(report.FinalStatus)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"validation_report_download_url": "https://example.com/report",
		"total_segments": 0,
		"total_rows": 0
	}`, string(body))
}
