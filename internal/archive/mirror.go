package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/felixhoffmnn/latex-templates/internal/config"
)

// Uploader is the subset of the S3 upload manager used by the mirror.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Mirror copies archived artifacts to an S3 bucket.
type Mirror struct {
	uploader Uploader
	bucket   string
	prefix   string
}

// NewS3Mirror builds a Mirror from the archive settings.
func NewS3Mirror(ctx context.Context, cfg config.ArchiveSettings) (*Mirror, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return NewMirror(manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

// NewMirror wraps an existing uploader.
func NewMirror(uploader Uploader, bucket, prefix string) *Mirror {
	return &Mirror{uploader: uploader, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an archived file.
func (m *Mirror) Key(year int, file string) string {
	return path.Join(m.prefix, strconv.Itoa(year), filepath.Base(file))
}

// Upload copies the archived file at localPath.
func (m *Mirror) Upload(ctx context.Context, year int, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening archived file: %w", err)
	}
	defer f.Close()

	key := m.Key(year, localPath)
	_, err = m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return key, nil
}
