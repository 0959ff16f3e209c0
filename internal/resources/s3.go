package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

const defaultRegion = "us-east-1"

type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Buckets resolves buckets. A bucket's address is its name.
type S3Buckets struct {
	client S3API
	region string
}

func NewS3Buckets(client S3API, region string) *S3Buckets {
	return &S3Buckets{
		client: client,
		region: region,
	}
}

func (b *S3Buckets) Lookup(ctx context.Context, name string) (string, error) {
	ok, err := b.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", internalErrors.ErrResourceNotFound
	}

	return name, nil
}

func (b *S3Buckets) Create(ctx context.Context, name string) (string, error) {
	in := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if b.region != "" && b.region != defaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, in); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return name, nil
		}
		return "", err
	}

	return name, nil
}

func (b *S3Buckets) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err != nil {
		if internalErrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// BucketMinter returns a generator of globally unique bucket names.
func BucketMinter(prefix, envID string) func() string {
	return func() string {
		return strings.ToLower(fmt.Sprintf("%s-%s-%s", prefix, envID, uuid.NewString()[:8]))
	}
}
