// Package media stores attachment binaries in an S3-compatible object store.
// The workflow engine only ever sees the opaque object keys this package
// hands back.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/sentinelcore/inehss/internal/platform"
)

// Store writes and removes attachment objects against an S3-compatible
// endpoint (AWS S3, MinIO, Ceph RGW).
type Store struct {
	logger    zerolog.Logger
	endpoint  string
	bucket    string
	accessKey string
	secretKey string
}

func NewStore(logger zerolog.Logger, endpoint, bucket, accessKey, secretKey string) *Store {
	return &Store{
		logger:    logger.With().Str("component", "media-store").Logger(),
		endpoint:  endpoint,
		bucket:    bucket,
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

// client returns an S3 client configured for the endpoint. Path style keeps
// bucket addressing working against non-AWS endpoints.
func (s *Store) client() *s3.Client {
	return s3.New(s3.Options{
		BaseEndpoint: aws.String(s.endpoint),
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, ""),
		UsePathStyle: true,
	})
}

// ObjectKey builds a collision-free key for an uploaded filename, bucketed by
// year/month like the rest of the attachment tree.
func ObjectKey(filename string, now time.Time) string {
	return path.Join("inehss/attachments",
		now.Format("2006/01"),
		platform.NewID()+"-"+path.Base(filename))
}

// Put uploads an object. The caller supplies the declared content type; the
// store never inspects the bytes.
func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	s.logger.Debug().Str("key", key).Int64("size", size).Msg("uploading attachment object")

	_, err := s.client().PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Used only by cleanup tooling; attachment rows are
// the authority on what exists.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client().DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
