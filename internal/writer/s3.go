package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Sink writes the mirror as objects below Prefix in an S3-compatible
// bucket.
type S3Sink struct {
	client *minio.Client
	bucket string
	prefix string
	region string
	force  bool
}

// NewS3Sink validates cfg and creates the client. No request is made until
// Prepare.
func NewS3Sink(cfg S3Config, force bool) (*S3Sink, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		region: region,
		force:  force,
	}, nil
}

// Prepare creates the bucket if it does not exist and clears or rejects
// objects already stored below the prefix.
func (s *S3Sink) Prepare(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket: %w", err)
		}
		return nil
	}

	var existing []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.listPrefix(),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("list objects: %w", obj.Err)
		}
		existing = append(existing, obj)
	}
	if len(existing) == 0 {
		return nil
	}
	if !s.force {
		return fmt.Errorf("s3://%s/%s: %w", s.bucket, s.prefix, ErrOutputNotEmpty)
	}

	objects := make(chan minio.ObjectInfo, len(existing))
	for _, obj := range existing {
		objects <- obj
	}
	close(objects)
	return firstRemoveError(s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}))
}

// firstRemoveError reads errs until it is closed and returns the first
// failure. The sender blocks until every result is taken.
func firstRemoveError(errs <-chan minio.RemoveObjectError) error {
	var first error
	for rerr := range errs {
		if rerr.Err != nil && first == nil {
			first = fmt.Errorf("remove %s: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return first
}

func (s *S3Sink) Put(ctx context.Context, p string, content []byte) error {
	p = strings.TrimLeft(strings.TrimSpace(p), "/")
	if p == "" {
		return fmt.Errorf("object path is required")
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(p), bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType(p)})
	if err != nil {
		return fmt.Errorf("put %s: %w", p, err)
	}
	return nil
}

func (s *S3Sink) Close() error { return nil }

func (s *S3Sink) objectKey(p string) string {
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

func (s *S3Sink) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

func contentType(p string) string {
	switch path.Ext(p) {
	case ".json":
		return "application/json"
	case ".jsonl":
		return "application/x-ndjson"
	case ".csv":
		return "text/csv"
	case ".c", ".h":
		return "text/x-c"
	default:
		return "application/octet-stream"
	}
}
