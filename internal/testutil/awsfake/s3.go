package awsfake

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3 struct {
	mu sync.Mutex

	buckets     map[string]map[string][]byte
	Constraints map[string]string
	PutErr      error
}

func NewS3() *S3 {
	return &S3{
		buckets:     map[string]map[string][]byte{},
		Constraints: map[string]string{},
	}
}

func (f *S3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.buckets[aws.ToString(in.Bucket)]; !ok {
		return nil, &types.NotFound{}
	}

	return &s3.HeadBucketOutput{}, nil
}

func (f *S3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.Bucket)
	if _, ok := f.buckets[name]; ok {
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("bucket exists")}
	}

	f.buckets[name] = map[string][]byte{}
	if in.CreateBucketConfiguration != nil {
		f.Constraints[name] = string(in.CreateBucketConfiguration.LocationConstraint)
	}

	return &s3.CreateBucketOutput{}, nil
}

func (f *S3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PutErr != nil {
		return nil, f.PutErr
	}

	bucket, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("no such bucket")}
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	bucket[aws.ToString(in.Key)] = body

	return &s3.PutObjectOutput{}, nil
}

func (f *S3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("no such bucket")}
	}

	body, ok := bucket[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// Delete removes a bucket, leaving any stored name dangling.
func (f *S3) Delete(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.buckets, name)
}

func (f *S3) Buckets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}

	return names
}

func (f *S3) Objects(bucket string) map[string][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[string][]byte{}
	for k, v := range f.buckets[bucket] {
		out[k] = v
	}

	return out
}
