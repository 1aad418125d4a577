package models

import (
	"strings"
	"time"
)

// ArtifactType selects one of the files produced by a successful pipeline run.
type ArtifactType string

const (
	ArtifactSpecification ArtifactType = "specification"
	ArtifactValidation    ArtifactType = "validation"
	ArtifactXMLJS         ArtifactType = "xmljs"
)

// ArtifactTypes lists every artifact kind in response order.
func ArtifactTypes() []ArtifactType {
	return []ArtifactType{ArtifactSpecification, ArtifactValidation, ArtifactXMLJS}
}

// ParseArtifactType matches a caller supplied selector, ignoring case and
// surrounding whitespace.
func ParseArtifactType(value string) (ArtifactType, bool) {
	candidate := ArtifactType(strings.ToLower(strings.TrimSpace(value)))

	for _, t := range ArtifactTypes() {
		if t == candidate {
			return t, true
		}
	}

	return "", false
}

// ArtifactDescriptor is a retrievable location for one artifact.
type ArtifactDescriptor struct {
	Type      ArtifactType `json:"type"`
	Location  string       `json:"location"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// FinalSummary is only built for executions that reached SUCCEEDED.
type FinalSummary struct {
	TotalSegments int64                `json:"total_segments"`
	TotalRows     int64                `json:"total_rows"`
	Artifacts     []ArtifactDescriptor `json:"artifacts"`
}

// Descriptor returns the artifact of the given kind, if present.
func (s *FinalSummary) Descriptor(t ArtifactType) (ArtifactDescriptor, bool) {
	if s == nil {
		return ArtifactDescriptor{}, false
	}

	for _, d := range s.Artifacts {
		if d.Type == t {
			return d, true
		}
	}

	return ArtifactDescriptor{}, false
}
