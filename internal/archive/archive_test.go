package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
)

type recordedPut struct {
	key  string
	body string
}

func stubS3(t *testing.T, putErr error) *[]recordedPut {
	t.Helper()

	origNow := now
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	t.Cleanup(func() {
		now = origNow
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	now = func() time.Time { return time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC) }
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}

	var puts []recordedPut
	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		if putErr != nil {
			return nil, putErr
		}
		body, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		puts = append(puts, recordedPut{key: aws.ToString(in.Key), body: string(body)})
		return &s3.PutObjectOutput{}, nil
	}
	return &puts
}

func uploaderConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.S3Bucket = "votekeeper-archive"
	cfg.S3RootUser = "minio"
	cfg.S3RootPassword = "minio123"
	cfg.S3BaseEndpoint = "http://localhost:9000"
	cfg.LedgerPath = filepath.Join(dir, "ledger.csv")
	return cfg
}

func TestUploader_Enabled(t *testing.T) {
	cfg := uploaderConfig(t.TempDir())
	assert.True(t, NewUploader(cfg, logging.NewNop()).Enabled())

	cfg.S3Bucket = ""
	assert.False(t, NewUploader(cfg, logging.NewNop()).Enabled())
}

func TestUploader_Snapshot_UploadsUnderDatedPrefix(t *testing.T) {
	puts := stubS3(t, nil)
	dir := t.TempDir()
	cfg := uploaderConfig(dir)

	ledger := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(ledger, []byte("header\nrow"), 0o600))

	u := NewUploader(cfg, logging.NewNop())
	require.NoError(t, u.Snapshot(context.Background(), ledger))

	require.Len(t, *puts, 1)
	assert.Equal(t, "votekeeper/2026-09-12/ledger.csv", (*puts)[0].key)
	assert.Equal(t, "header\nrow", (*puts)[0].body)
}

func TestUploader_Snapshot_SkipsMissingFiles(t *testing.T) {
	puts := stubS3(t, nil)
	dir := t.TempDir()
	cfg := uploaderConfig(dir)

	present := filepath.Join(dir, "audit_log.csv")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o600))

	u := NewUploader(cfg, logging.NewNop())
	err := u.Snapshot(context.Background(), filepath.Join(dir, "absent.csv"), present)
	require.NoError(t, err)
	require.Len(t, *puts, 1)
	assert.Contains(t, (*puts)[0].key, "audit_log.csv")
}

func TestUploader_Snapshot_PropagatesUploadFailure(t *testing.T) {
	boom := errors.New("connection refused")
	stubS3(t, boom)
	dir := t.TempDir()
	cfg := uploaderConfig(dir)

	ledger := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(ledger, []byte("x"), 0o600))

	u := NewUploader(cfg, logging.NewNop())
	require.ErrorIs(t, u.Snapshot(context.Background(), ledger), boom)
}
