// Package s3 implements the artifact store on an S3-compatible backend
// (AWS S3 or MinIO). Single bucket; keys map to object keys directly.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"psephos/internal/artifact/core"
)

// Store implements core.Store against a single S3 bucket.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// Config holds explicit construction parameters (mostly for tests). For prod
// we rely primarily on environment variables.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	PathStyle       bool
}

// Environment variables:
//   PSEPHOS_ARTIFACT_DRIVER=s3
//   PSEPHOS_ARTIFACT_S3_BUCKET=<bucket> (required)
//   PSEPHOS_ARTIFACT_S3_REGION=<region> (default us-east-1)
//   PSEPHOS_ARTIFACT_S3_ENDPOINT=<url> (optional, for MinIO)
//   PSEPHOS_ARTIFACT_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional)

// New creates an S3 artifact store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, presign: s3.NewPresignClient(client), bucket: cfg.Bucket}, nil
}

// OpenFromEnv constructs an S3 store from process environment.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("PSEPHOS_ARTIFACT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("PSEPHOS_ARTIFACT_S3_BUCKET required for s3 driver")
	}
	cfg := Config{
		Bucket:    bucket,
		Region:    os.Getenv("PSEPHOS_ARTIFACT_S3_REGION"),
		Endpoint:  os.Getenv("PSEPHOS_ARTIFACT_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("PSEPHOS_ARTIFACT_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverS3 }

// Put uploads a new artifact; a Head emulates create-only semantics.
func (s *Store) Put(ctx context.Context, key string, payload []byte, contentType string) (core.Info, error) {
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err == nil {
		return core.Info{}, fmt.Errorf("artifact %s already exists", key)
	}
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: bytes.NewReader(payload)}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return core.Info{}, err
	}
	return s.head(ctx, key)
}

// Get downloads artifact metadata and payload.
func (s *Store) Get(ctx context.Context, key string) (core.Info, []byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return core.Info{}, nil, err
	}
	defer func() { _ = out.Body.Close() }()
	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return core.Info{}, nil, err
	}
	info := infoFrom(key, int64(len(payload)), out.ContentType, out.ETag, out.LastModified)
	return info, payload, nil
}

// List returns artifacts under the key prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	var infos []core.Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &prefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			infos = append(infos, core.Info{Key: aws.ToString(obj.Key), Size: size, PublishedAt: aws.ToTime(obj.LastModified)})
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL returns a time-limited GET URL for the artifact.
func (s *Store) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	pout, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		func(po *s3.PresignOptions) { po.Expires = expiry })
	if err != nil {
		return "", err
	}
	return pout.URL, nil
}

func (s *Store) head(ctx context.Context, key string) (core.Info, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return core.Info{}, err
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return infoFrom(key, size, out.ContentType, out.ETag, out.LastModified), nil
}

func infoFrom(key string, size int64, contentType, etag *string, lastModified *time.Time) core.Info {
	var ct, et string
	if contentType != nil {
		ct = *contentType
	}
	if etag != nil {
		et = strings.Trim(*etag, "\"")
	}
	published := time.Now().UTC()
	if lastModified != nil {
		published = *lastModified
	}
	return core.Info{Key: key, Size: size, ContentType: ct, ETag: et, PublishedAt: published}
}
