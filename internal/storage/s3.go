package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const minMultipartSize = 12 << 20

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // R2, MinIO and other S3 compatible services
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

type S3Store struct {
	C         *s3.Client
	Bucket    *string
	publicURL string
}

func NewS3(ctx context.Context, c S3Config) (*S3Store, error) {
	if c.Bucket == "" {
		return nil, errors.New("bucket can't be empty")
	}

	opts := []func(*config.LoadOptions) error{}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(c.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Region != "" {
			o.Region = c.Region
		}
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	publicURL := c.PublicURL
	if publicURL == "" {
		if c.Endpoint != "" {
			publicURL = strings.TrimSuffix(c.Endpoint, "/") + "/" + c.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, client.Options().Region)
		}
	}

	return &S3Store{
		C:         client,
		Bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, path, name string) (url string, err error) {
	start := time.Now()
	defer func() { observe("s3", "upload", start, err) }()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact, %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat artifact, %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(name),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String("video/mp4"),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	if stat.Size() > minMultipartSize {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = u.Upload(ctx, input)
	} else {
		_, err = s.C.PutObject(ctx, input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload video to s3, %w", err)
	}

	zap.L().Debug("Uploaded object", zap.String("key", name), zap.Int64("size", stat.Size()))
	return s.publicURL + "/" + name, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { observe("s3", "delete", start, err) }()

	_, err = s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(name),
	})
	return err
}
