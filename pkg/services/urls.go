package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dukex/hl7autoct/pkg/models"
)

var ErrInvalidStatusURL = errors.New("status url must be an absolute http(s) url")

// URLBuilder derives the polling and retrieval URLs returned to callers.
type URLBuilder struct {
	base string
}

// NewURLBuilder takes the absolute URL of the status endpoint.
func NewURLBuilder(statusURL string) (*URLBuilder, error) {
	u, err := url.Parse(statusURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatusURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusURL, statusURL)
	}

	return &URLBuilder{base: strings.TrimSuffix(statusURL, "?")}, nil
}

// StatusURL is <base>?executionArn=<handle>. The handle keeps its colons
// so the returned URL contains the exact token.
func (b *URLBuilder) StatusURL(handle models.ExecutionHandle) string {
	separator := "?"
	if strings.Contains(b.base, "?") {
		separator = "&"
	}

	return b.base + separator + "executionArn=" + escapeHandle(handle)
}

func (b *URLBuilder) ArtifactURL(handle models.ExecutionHandle, artifactType models.ArtifactType) string {
	return b.StatusURL(handle) + "&type=" + url.QueryEscape(string(artifactType))
}

func escapeHandle(handle models.ExecutionHandle) string {
	return strings.ReplaceAll(url.QueryEscape(handle.String()), "%3A", ":")
}
