package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oszuidwest/zwfm-dictate/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-dictate/internal/types"
	"github.com/oszuidwest/zwfm-dictate/internal/util"
)

// Archive upload limits.
const (
	archiveAttempts     = 3
	archiveTimeout      = 5 * time.Minute
	archiveInitialDelay = 2 * time.Second
	archiveMaxDelay     = 30 * time.Second
)

// ErrArchiveNotConfigured is returned when bucket or credentials are missing.
var ErrArchiveNotConfigured = errors.New("archive is not configured")

// objectPutter is the part of *s3.Client the archive uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive uploads finished recordings to S3-compatible storage.
type Archive struct {
	client  objectPutter
	bucket  string
	prefix  string
	backoff *util.Backoff
}

// NewArchive creates an Archive from cfg.
func NewArchive(cfg *types.ArchiveConfig) (*Archive, error) {
	if !cfg.IsConfigured() {
		return nil, ErrArchiveNotConfigured
	}
	return &Archive{
		client:  createS3Client(cfg),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		backoff: util.NewBackoff(archiveInitialDelay, archiveMaxDelay),
	}, nil
}

// createS3Client creates an S3 client with the given configuration.
func createS3Client(cfg *types.ArchiveConfig) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = region
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

// Key returns the object key for a recording made at recordedAt.
func (a *Archive) Key(filename string, recordedAt time.Time) string {
	return path.Join(a.prefix, recordedAt.Format("2006"), recordedAt.Format("01"), filename)
}

// Upload stores the file at localPath and returns its object key and the
// number of attempts made.
func (a *Archive) Upload(ctx context.Context, localPath string, recordedAt time.Time) (string, int, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, archiveTimeout, errors.New("s3 upload timeout"))
	defer cancel()

	key := a.Key(filepath.Base(localPath), recordedAt)
	notMissing := func(err error) bool { return !errors.Is(err, os.ErrNotExist) }

	attempts, err := a.backoff.Retry(ctx, archiveAttempts, notMissing, func(attempt int) error {
		if attempt > 1 {
			slog.Info("retrying upload", "key", key, "attempt", attempt)
		}
		err := a.put(ctx, localPath, key)
		if err != nil {
			slog.Warn("upload failed", "key", key, "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return key, attempts, fmt.Errorf("upload %s: %w", key, err)
	}

	slog.Info("upload completed", "key", key, "attempts", attempts)
	return key, attempts, nil
}

func (a *Archive) put(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return util.WrapError("open file for upload", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close file after upload", "path", localPath, "error", err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return util.WrapError("stat file for upload", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ffmpeg.ContentType(filepath.Ext(localPath))),
	})
	return err
}
