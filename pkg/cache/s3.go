package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// S3API is the slice of the S3 client the store needs. *s3.Client
// satisfies it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Envelope is the stored object body. S3 has no native per-key TTL, so
// the expiry travels with the entry and is checked lazily on read.
type s3Envelope struct {
	Metadata  *metadata.Metadata `json:"metadata"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// S3Store keeps resolved metadata in an S3 bucket. Useful when rendered
// pages are already published to S3 and the cache should live next to
// them.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := cache.NewS3Store(s3.NewFromConfig(cfg), "my-bucket")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// S3StoreOption configures S3Store behavior.
type S3StoreOption func(*S3Store)

// WithS3Prefix sets the object key prefix. Default: "metadata-cache/".
func WithS3Prefix(prefix string) S3StoreOption {
	return func(s *S3Store) {
		s.prefix = prefix
	}
}

// NewS3Store creates an S3-backed metadata cache.
func NewS3Store(client S3API, bucket string, opts ...S3StoreOption) *S3Store {
	s := &S3Store{
		client: client,
		bucket: bucket,
		prefix: "metadata-cache/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3Store) key(k string) string { return s.prefix + k }

// Get retrieves cached metadata. Missing objects and lazily detected
// expired entries both read as (nil, nil).
func (s *S3Store) Get(ctx context.Context, key string) (*metadata.Metadata, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		// The SDK has no stable sentinel for NoSuchKey across backends;
		// treat any read failure as a miss rather than failing the render.
		return nil, nil
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	var env s3Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if !env.ExpiresAt.IsZero() && time.Now().After(env.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, nil
	}
	return env.Metadata, nil
}

// Set stores metadata, embedding the expiry in the object body.
func (s *S3Store) Set(ctx context.Context, key string, md *metadata.Metadata, ttl time.Duration) error {
	env := s3Envelope{Metadata: md}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(key)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	return err
}

// Delete removes an entry.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	return err
}
