// Package s3 mints presigned GET URLs for pipeline artifacts kept in S3.
//
// URLs are signed as of the start of the current signing window, so every
// request inside one window produces the same URL for the same object.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/dukex/hl7autoct/pkg/objectstore"
)

var ErrInvalidWindow = errors.New("signing window must be positive and shorter than the url expiry")

// maxExpiry is the longest validity SigV4 query signing allows.
const maxExpiry = 7 * 24 * time.Hour

type Options struct {
	Expiry        time.Duration
	SigningWindow time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Store struct {
	presign *s3.PresignClient
	signer  *v4.Signer
	expiry  time.Duration
	window  time.Duration
	now     func() time.Time
}

func New(client *s3.Client, opts Options) (*Store, error) {
	if opts.SigningWindow <= 0 || opts.SigningWindow >= opts.Expiry || opts.Expiry > maxExpiry {
		return nil, fmt.Errorf("%w: window %s, expiry %s", ErrInvalidWindow, opts.SigningWindow, opts.Expiry)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		presign: s3.NewPresignClient(client),
		signer:  v4.NewSigner(),
		expiry:  opts.Expiry,
		window:  opts.SigningWindow,
		now:     now,
	}, nil
}

// WindowStart is the signing time used for a request made at t.
func (s *Store) WindowStart(t time.Time) time.Time {
	return t.UTC().Truncate(s.window)
}

func (s *Store) MintURL(ctx context.Context, ref objectstore.Reference, kind models.ArtifactType) (objectstore.MintedURL, error) {
	if ref.Kind != objectstore.KindObject {
		return objectstore.MintedURL{}, fmt.Errorf("%w: %s artifact is not an s3 object", objectstore.ErrInvalidReference, kind)
	}

	signedAt := s.WindowStart(s.now())

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	}, func(o *s3.PresignOptions) {
		o.Expires = s.expiry
		o.Presigner = fixedTimePresigner{signer: s.signer, signedAt: signedAt}
	})
	if err != nil {
		return objectstore.MintedURL{}, fmt.Errorf("%w: presign %s: %w", objectstore.ErrUnavailable, ref, err)
	}

	expiresAt := signedAt.Add(s.expiry)

	return objectstore.MintedURL{URL: req.URL, ExpiresAt: &expiresAt}, nil
}

// fixedTimePresigner signs with a pinned time instead of the request time.
type fixedTimePresigner struct {
	signer   *v4.Signer
	signedAt time.Time
}

func (p fixedTimePresigner) PresignHTTP(
	ctx context.Context, credentials aws.Credentials, r *http.Request,
	payloadHash string, service string, region string, _ time.Time,
	optFns ...func(*v4.SignerOptions),
) (string, http.Header, error) {
	return p.signer.PresignHTTP(ctx, credentials, r, payloadHash, service, region, p.signedAt, optFns...)
}
