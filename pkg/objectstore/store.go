// Package objectstore turns artifact references from pipeline output records
// into retrievable download locations.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/hl7autoct/pkg/models"
)

var (
	ErrInvalidReference = errors.New("invalid artifact reference")
	ErrUnavailable      = errors.New("object store unavailable")
)

// ReferenceKind distinguishes stored objects from ready-made URLs.
type ReferenceKind int

const (
	// KindObject is a bucket/key pair that needs a minted URL.
	KindObject ReferenceKind = iota + 1
	// KindURL is an http(s) location already usable by callers, as written by
	// older pipeline versions.
	KindURL
)

// Reference points at one artifact produced by a pipeline run.
type Reference struct {
	Kind   ReferenceKind
	Bucket string
	Key    string
	URL    string
}

const s3Scheme = "s3://"

// ParseReference accepts s3://bucket/key and http(s) URLs. S3 keys are taken
// verbatim: no percent-decoding, and '?' or '#' stay part of the key.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: empty", ErrInvalidReference)
	}

	if len(raw) >= len(s3Scheme) && strings.EqualFold(raw[:len(s3Scheme)], s3Scheme) {
		return parseObjectReference(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return Reference{}, fmt.Errorf("%w: %q has no host", ErrInvalidReference, raw)
		}

		return Reference{Kind: KindURL, URL: raw}, nil
	default:
		return Reference{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidReference, u.Scheme)
	}
}

func parseObjectReference(raw string) (Reference, error) {
	bucket, key, _ := strings.Cut(raw[len(s3Scheme):], "/")
	if bucket == "" || key == "" || strings.ContainsAny(bucket, "?#") {
		return Reference{}, fmt.Errorf("%w: %q needs a bucket and a key", ErrInvalidReference, raw)
	}

	return Reference{Kind: KindObject, Bucket: bucket, Key: key}, nil
}

func (r Reference) String() string {
	if r.Kind == KindURL {
		return r.URL
	}

	return "s3://" + r.Bucket + "/" + r.Key
}

// MintedURL is a download location and the moment it stops working, if any.
type MintedURL struct {
	URL       string
	ExpiresAt *time.Time
}

// Store mints download URLs for stored objects. Implementations must return
// the same URL for the same object until it is close to expiring, so repeated
// polls of a finished run observe stable locations.
type Store interface {
	MintURL(ctx context.Context, ref Reference, kind models.ArtifactType) (MintedURL, error)
}
