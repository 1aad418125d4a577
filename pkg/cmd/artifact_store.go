package cmd

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukex/hl7autoct/pkg/objectstore"
	"github.com/dukex/hl7autoct/pkg/objectstore/s3"
	"github.com/dukex/hl7autoct/pkg/objectstore/static"
)

type ArtifactStoreOptions struct {
	Provider      string
	BaseURL       string
	Expiry        time.Duration
	SigningWindow time.Duration
}

func NewArtifactStore(opts ArtifactStoreOptions, awsCfg aws.Config) (objectstore.Store, error) {
	switch opts.Provider {
	case "s3":
		store, err := s3.New(awss3.NewFromConfig(awsCfg), s3.Options{
			Expiry:        opts.Expiry,
			SigningWindow: opts.SigningWindow,
		})
		if err != nil {
			return nil, err
		}

		return store, nil
	case "static":
		store, err := static.New(opts.BaseURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unsupported artifact store: %q", opts.Provider)
	}
}
