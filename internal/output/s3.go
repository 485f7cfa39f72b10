package output

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/at-ishikawa/d2glossary/internal/config"
)

// S3Sink uploads the exact JSON bytes of the primary output file.
type S3Sink struct {
	svc          s3iface.S3API
	bucket       string
	key          string
	cacheSeconds int
}

func NewS3Sink(cfg config.S3Config) (*S3Sink, error) {
	awsConfig := aws.NewConfig()
	if cfg.Region != "" {
		awsConfig = awsConfig.WithRegion(cfg.Region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("session.NewSessionWithOptions > %w", err)
	}
	return newS3Sink(s3.New(sess), cfg), nil
}

func newS3Sink(svc s3iface.S3API, cfg config.S3Config) *S3Sink {
	return &S3Sink{
		svc:          svc,
		bucket:       cfg.Bucket,
		key:          cfg.Key,
		cacheSeconds: cfg.CacheSeconds,
	}
}

func (s *S3Sink) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *S3Sink) Write(ctx context.Context, artifact Artifact) error {
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.key),
		Body:         bytes.NewReader(artifact.JSON),
		CacheControl: aws.String(fmt.Sprintf("no-transform, public, max-age=%d", s.cacheSeconds)),
		ContentType:  aws.String("application/json; charset=utf-8"),
		Metadata: map[string]*string{
			"manifest-version": aws.String(artifact.Document.Metadata.Version),
			"data-hash":        aws.String(artifact.Document.Metadata.DataHash),
		},
	})
	if err != nil {
		return fmt.Errorf("svc.PutObjectWithContext(%s) > %w", s.Name(), err)
	}
	return nil
}
