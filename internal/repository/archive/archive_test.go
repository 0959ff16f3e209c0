package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	"github.com/jeevanjot011/bevflow/internal/testutil/awsfake"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires

	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", aws.ToString(in.Bucket), aws.ToString(in.Key), int(opts.Expires.Seconds())),
		Method: "GET",
	}, nil
}

func entry(orderID models.ID) models.ProcessingLogEntry {
	return models.ProcessingLogEntry{
		Message:    models.OrderMessage{OrderID: orderID, ProductName: "Cold Brew", Quantity: 2, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		DistanceKm: 12,
		ETADays:    5,
	}
}

func TestPutOverwritesSingleEntry(t *testing.T) {
	ctx := context.Background()
	api := awsfake.NewS3()
	_, err := api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String("logs")})
	require.NoError(t, err)

	a := New(logger.Discard(), api, &fakePresigner{}, StaticBucket("logs"))

	require.NoError(t, a.Put(ctx, models.LogKey("42"), entry("42")))
	require.NoError(t, a.Put(ctx, models.LogKey("42"), entry("42")))

	objects := api.Objects("logs")
	require.Len(t, objects, 1)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(objects["order-logs/42.json"], &stored))
	require.Equal(t, float64(12), stored["distance_km"])
	require.Equal(t, float64(5), stored["eta_days"])
	require.Contains(t, stored, "message")

	got, err := a.Get(ctx, "order-logs/42.json")
	require.NoError(t, err)
	require.Equal(t, entry("42"), got)
}

func TestPutErrors(t *testing.T) {
	ctx := context.Background()

	a := New(logger.Discard(), awsfake.NewS3(), &fakePresigner{}, StaticBucket(""))
	require.ErrorIs(t, a.Put(ctx, "k", entry("1")), internalErrors.ErrResourceNotFound)

	api := awsfake.NewS3()
	api.PutErr = errors.New("connection reset")
	a = New(logger.Discard(), api, &fakePresigner{}, StaticBucket("logs"))

	err := a.Put(ctx, "k", entry("1"))
	require.ErrorIs(t, err, api.PutErr)
	require.True(t, internalErrors.IsRetryable(err))
}

func TestLink(t *testing.T) {
	presigner := &fakePresigner{}
	a := New(logger.Discard(), awsfake.NewS3(), presigner, StaticBucket("logs"))

	url, err := a.Link(context.Background(), "order-logs/42.json", 0)
	require.NoError(t, err)
	require.Equal(t, "https://logs.s3.amazonaws.com/order-logs/42.json?X-Amz-Expires=3600", url)
	require.Equal(t, DefaultLinkTTL, presigner.expires)
}
