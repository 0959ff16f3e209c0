package paramstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/cache_impl"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

type fakeSSM struct {
	values map[string]string
	gets   int
	putErr error
}

func newFakeSSM() *fakeSSM {
	return &fakeSSM{values: map[string]string{}}
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.gets++

	value, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("missing")}
	}

	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(value)}}, nil
}

func (f *fakeSSM) PutParameter(_ context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	if _, ok := f.values[aws.ToString(in.Name)]; ok && !aws.ToBool(in.Overwrite) {
		return nil, errors.New("parameter already exists")
	}

	f.values[aws.ToString(in.Name)] = aws.ToString(in.Value)

	return &ssm.PutParameterOutput{}, nil
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeSSM()
	store := New(logger.Discard(), client)

	_, err := store.Get(ctx, "/bevflow/sqs-url-dev")
	require.ErrorIs(t, err, internalErrors.ErrResourceNotFound)

	require.NoError(t, store.Put(ctx, "/bevflow/sqs-url-dev", "https://queue/1"))
	require.NoError(t, store.Put(ctx, "/bevflow/sqs-url-dev", "https://queue/2"))

	value, err := store.Get(ctx, "/bevflow/sqs-url-dev")
	require.NoError(t, err)
	require.Equal(t, "https://queue/2", value)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	client := newFakeSSM()
	client.values["/bevflow/sns-arn-dev"] = "arn:aws:sns:us-east-1:1:topic"

	cached := NewCached(
		New(logger.Discard(), client),
		cache_impl.NewExpirable[string, string](logger.Discard(), 8, time.Minute),
	)

	for range 3 {
		value, err := cached.Get(ctx, "/bevflow/sns-arn-dev")
		require.NoError(t, err)
		require.Equal(t, "arn:aws:sns:us-east-1:1:topic", value)
	}
	require.Equal(t, 1, client.gets)

	require.NoError(t, cached.Put(ctx, "/bevflow/sns-arn-dev", "arn:new"))
	value, err := cached.Get(ctx, "/bevflow/sns-arn-dev")
	require.NoError(t, err)
	require.Equal(t, "arn:new", value)
	require.Equal(t, 1, client.gets)

	client.putErr = errors.New("throttled")
	require.Error(t, cached.Put(ctx, "/bevflow/sns-arn-dev", "arn:lost"))

	value, err = cached.Get(ctx, "/bevflow/sns-arn-dev")
	require.NoError(t, err)
	require.Equal(t, "arn:new", value)
	require.Equal(t, 2, client.gets)

	_, err = cached.Get(ctx, "/bevflow/missing")
	require.ErrorIs(t, err, internalErrors.ErrResourceNotFound)
}
