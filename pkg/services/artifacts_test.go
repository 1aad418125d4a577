package services

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/hl7autoct/pkg/mocks"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArtifactResolver_Summarize(t *testing.T) {
	t.Parallel()

	expires := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	store := &mocks.MockObjectStore{}
	store.On("MintURL", mock.Anything,
		objectstore.Reference{Kind: objectstore.KindObject, Bucket: "hl7-artifacts", Key: "run-1/specification.xlsx"},
		models.ArtifactSpecification,
	).Return(objectstore.MintedURL{URL: "https://signed/spec", ExpiresAt: &expires}, nil).Once()
	store.On("MintURL", mock.Anything,
		objectstore.Reference{Kind: objectstore.KindObject, Bucket: "hl7-artifacts", Key: "run-1/validation.html"},
		models.ArtifactValidation,
	).Return(objectstore.MintedURL{URL: "https://signed/validation", ExpiresAt: &expires}, nil).Once()

	resolver := NewArtifactResolver(store, nil, slog.New(slog.DiscardHandler), time.Second)

	summary, err := resolver.Summarize(t.Context(), testHandle, json.RawMessage(`{
		"final_status": {
			"total_segments": 2,
			"artifacts": {
				"specification": "s3://hl7-artifacts/run-1/specification.xlsx",
				"validation": "s3://hl7-artifacts/run-1/validation.html"
			}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalSegments)
	assert.Equal(t, int64(0), summary.TotalRows)
	require.Len(t, summary.Artifacts, 2)

	spec, ok := summary.Descriptor(models.ArtifactSpecification)
	require.True(t, ok)
	assert.Equal(t, "https://signed/spec", spec.Location)
	assert.Equal(t, &expires, spec.ExpiresAt)

	_, ok = summary.Descriptor(models.ArtifactXMLJS)
	assert.False(t, ok)

	store.AssertExpectations(t)
}

func TestArtifactResolver_Summarize_PrefersArtifactsOverLegacyURLs(t *testing.T) {
	t.Parallel()

	store := &mocks.MockObjectStore{}
	store.On("MintURL", mock.Anything, mock.Anything, mock.Anything).
		Return(objectstore.MintedURL{URL: "https://signed/object"}, nil)

	resolver := NewArtifactResolver(store, nil, slog.New(slog.DiscardHandler), 0)

	summary, err := resolver.Summarize(t.Context(), testHandle, json.RawMessage(`{
		"final_status": {
			"artifacts": {"specification": "s3://b/spec", "validation": "s3://b/validation"},
			"specification_download_url": "https://legacy/spec",
			"validation_report_download_url": "https://legacy/validation",
			"xmljs_download_url": "https://legacy/xmljs"
		}
	}`))
	require.NoError(t, err)

	spec, _ := summary.Descriptor(models.ArtifactSpecification)
	assert.Equal(t, "https://signed/object", spec.Location)

	xmljs, ok := summary.Descriptor(models.ArtifactXMLJS)
	require.True(t, ok)
	assert.Equal(t, "https://legacy/xmljs", xmljs.Location)
	assert.Nil(t, xmljs.ExpiresAt)
}
