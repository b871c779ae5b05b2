// Package archive copies run artifacts to an S3-compatible bucket after a
// run. The off-site copy is best effort; the local ledger and audit log
// remain authoritative.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
)

var (
	now = time.Now

	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, in)
	}
)

// Uploader snapshots local files into the configured bucket under
// <prefix>/<date>/<basename>.
type Uploader struct {
	cfg *config.Config
	log logging.Logger
}

func NewUploader(cfg *config.Config, log logging.Logger) *Uploader {
	return &Uploader{cfg: cfg, log: log}
}

// Enabled reports whether archiving is configured at all.
func (u *Uploader) Enabled() bool {
	return u.cfg.S3Bucket != ""
}

func (u *Uploader) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(u.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.S3RootUser,
			u.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true // MinIO and friends
	}), nil
}

// Snapshot uploads each existing path. Missing files are skipped silently;
// the ledger may legitimately not exist before the first issuance.
func (u *Uploader) Snapshot(ctx context.Context, paths ...string) error {
	client, err := u.getClient(ctx)
	if err != nil {
		return err
	}

	day := now().Format("2006-01-02")
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		key := fmt.Sprintf("%s/%s/%s", u.cfg.S3Prefix, day, filepath.Base(path))
		_, err = putObject(client, ctx, &s3.PutObjectInput{
			Bucket: aws.String(u.cfg.S3Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		u.log.Info(ctx, "snapshot uploaded", "key", key, "bytes", len(data))
	}
	return nil
}
