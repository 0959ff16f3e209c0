package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

const DefaultLinkTTL = time.Hour

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type BucketResolver func(ctx context.Context) (string, error)

// Archive stores processing log entries as JSON objects, one per order.
type Archive struct {
	log       *slog.Logger
	client    S3API
	presigner Presigner
	bucket    BucketResolver
}

func New(log *slog.Logger, client S3API, presigner Presigner, bucket BucketResolver) *Archive {
	return &Archive{
		log:       log,
		client:    client,
		presigner: presigner,
		bucket:    bucket,
	}
}

// StaticBucket resolves to a fixed bucket name.
func StaticBucket(name string) BucketResolver {
	return func(context.Context) (string, error) {
		if name == "" {
			return "", fmt.Errorf("archive bucket: %w", internalErrors.ErrResourceNotFound)
		}
		return name, nil
	}
}

// Put overwrites the object at key, so reprocessing keeps a single entry.
func (a *Archive) Put(ctx context.Context, key string, entry models.ProcessingLogEntry) error {
	const op = "repository.archive.Archive.Put"

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: marshal entry: %w", op, errors.Join(internalErrors.ErrPermanent, err))
	}

	bucket, err := a.bucket(ctx)
	if err != nil {
		return fmt.Errorf("%s: resolve bucket: %w", op, err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.log.Error(op, slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("%s: put object: %w", op, err)
	}

	return nil
}

func (a *Archive) Get(ctx context.Context, key string) (models.ProcessingLogEntry, error) {
	const op = "repository.archive.Archive.Get"

	bucket, err := a.bucket(ctx)
	if err != nil {
		return models.ProcessingLogEntry{}, fmt.Errorf("%s: resolve bucket: %w", op, err)
	}

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return models.ProcessingLogEntry{}, fmt.Errorf("%s: get object: %w", op, err)
	}
	defer out.Body.Close()

	var entry models.ProcessingLogEntry
	if err = json.NewDecoder(out.Body).Decode(&entry); err != nil {
		return models.ProcessingLogEntry{}, fmt.Errorf("%s: decode entry: %w", op, err)
	}

	return entry, nil
}

// Link returns a presigned GET URL for key valid for ttl.
func (a *Archive) Link(ctx context.Context, key string, ttl time.Duration) (string, error) {
	const op = "repository.archive.Archive.Link"

	bucket, err := a.bucket(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: resolve bucket: %w", op, err)
	}

	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%s: presign: %w", op, err)
	}

	return req.URL, nil
}
