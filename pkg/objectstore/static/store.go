// Package static serves artifacts from a public base URL, such as a CDN or a
// local MinIO bucket with anonymous reads. URLs never expire.
package static

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/objectstore"
)

var ErrInvalidBaseURL = errors.New("invalid static artifact base url")

type Store struct {
	base *url.URL
}

func New(baseURL string) (*Store, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	return &Store{base: u}, nil
}

// MintURL returns <base>/<bucket>/<key>.
func (s *Store) MintURL(_ context.Context, ref objectstore.Reference, kind models.ArtifactType) (objectstore.MintedURL, error) {
	if ref.Kind != objectstore.KindObject {
		return objectstore.MintedURL{}, fmt.Errorf("%w: %s artifact is not a stored object", objectstore.ErrInvalidReference, kind)
	}

	return objectstore.MintedURL{URL: s.base.JoinPath(ref.Bucket, ref.Key).String()}, nil
}
