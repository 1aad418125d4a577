package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionHandle_WellFormed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		handle models.ExecutionHandle
		want   bool
	}{
		{"step functions arn", "arn:aws:states:us-east-1:123456789012:execution:HL7v2AutoCT:8f0c", true},
		{"opaque token", "run-42", true},
		{"empty", "", false},
		{"inner space", "arn:aws states", false},
		{"newline", "arn\n", false},
		{"tab", "\tarn", false},
		{"too long", models.ExecutionHandle(strings.Repeat("a", models.MaxHandleLength+1)), false},
		{"max length", models.ExecutionHandle(strings.Repeat("a", models.MaxHandleLength)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.handle.WellFormed())
		})
	}
}

func TestExecutionStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, models.StatusPending.IsTerminal())
	assert.False(t, models.StatusRunning.IsTerminal())
	assert.True(t, models.StatusSucceeded.IsTerminal())
	assert.True(t, models.StatusFailed.IsTerminal())
	assert.True(t, models.StatusTimedOut.IsTerminal())
	assert.True(t, models.StatusAborted.IsTerminal())

	assert.False(t, models.StatusSucceeded.IsFailure())
	assert.True(t, models.StatusAborted.IsFailure())
}

func TestParseArtifactType(t *testing.T) {
	t.Parallel()

	got, ok := models.ParseArtifactType(" Specification ")
	require.True(t, ok)
	assert.Equal(t, models.ArtifactSpecification, got)

	got, ok = models.ParseArtifactType("XMLJS")
	require.True(t, ok)
	assert.Equal(t, models.ArtifactXMLJS, got)

	_, ok = models.ParseArtifactType("pdf")
	assert.False(t, ok)

	_, ok = models.ParseArtifactType("")
	assert.False(t, ok)
}

func TestFinalSummary_Descriptor(t *testing.T) {
	t.Parallel()

	summary := &models.FinalSummary{
		Artifacts: []models.ArtifactDescriptor{
			{Type: models.ArtifactValidation, Location: "https://example.com/report.xlsx"},
		},
	}

	d, ok := summary.Descriptor(models.ArtifactValidation)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/report.xlsx", d.Location)

	_, ok = summary.Descriptor(models.ArtifactXMLJS)
	assert.False(t, ok)

	var nilSummary *models.FinalSummary
	_, ok = nilSummary.Descriptor(models.ArtifactXMLJS)
	assert.False(t, ok)
}

func TestStatusReport_FinalStatusShape(t *testing.T) {
	t.Parallel()

	t.Run("empty final status marshals to an empty object", func(t *testing.T) {
		t.Parallel()

		body, err := json.Marshal(models.StatusReport{
			ExecutionArn: "arn:1",
			Status:       models.StatusRunning,
			Progress:     "11%",
		})
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))

		for _, field := range []string{"executionArn", "status", "message", "progress", "current_step", "final_status"} {
			assert.Contains(t, decoded, field)
		}

		assert.Equal(t, map[string]any{}, decoded["final_status"])
	})

	t.Run("zero counters are emitted once populated", func(t *testing.T) {
		t.Parallel()

		var zero int64
		body, err := json.Marshal(models.FinalStatus{
			SpecificationDownloadURL:    "s",
			ValidationReportDownloadURL: "v",
			XMLJSDownloadURL:            "x",
			TotalSegments:               &zero,
			TotalRows:                   &zero,
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"specification_download_url": "s",
			"validation_report_download_url": "v",
			"xmljs_download_url": "x",
			"total_segments": 0,
			"total_rows": 0
		}`, string(body))
	})
}

func TestProgressEstimate_Progress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "43%", models.ProgressEstimate{Percent: 43}.Progress())
	assert.Equal(t, "0%", models.ProgressEstimate{}.Progress())
}
