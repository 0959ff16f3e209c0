package sns

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	subs       []types.Subscription
	pageSize   int
	published  []string
	publishErr error
}

func (f *fakeAPI) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, aws.ToString(in.Message))
	return &awssns.PublishOutput{}, nil
}

func (f *fakeAPI) Subscribe(_ context.Context, in *awssns.SubscribeInput, _ ...func(*awssns.Options)) (*awssns.SubscribeOutput, error) {
	arn := fmt.Sprintf("%s:%d", aws.ToString(in.TopicArn), len(f.subs))
	f.subs = append(f.subs, types.Subscription{
		TopicArn:        in.TopicArn,
		Protocol:        in.Protocol,
		Endpoint:        in.Endpoint,
		SubscriptionArn: aws.String(arn),
	})
	return &awssns.SubscribeOutput{SubscriptionArn: aws.String(arn)}, nil
}

func (f *fakeAPI) ListSubscriptionsByTopic(_ context.Context, in *awssns.ListSubscriptionsByTopicInput, _ ...func(*awssns.Options)) (*awssns.ListSubscriptionsByTopicOutput, error) {
	start := 0
	if in.NextToken != nil {
		fmt.Sscanf(aws.ToString(in.NextToken), "%d", &start)
	}

	end := min(start+f.pageSize, len(f.subs))
	out := &awssns.ListSubscriptionsByTopicOutput{Subscriptions: f.subs[start:end]}
	if end < len(f.subs) {
		out.NextToken = aws.String(fmt.Sprint(end))
	}

	return out, nil
}

func TestEnsureSubscriptionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pageSize: 1}
	client := New(api)

	const topic = "arn:aws:sns:us-east-1:1:bevflow-orders-topic-dev"

	created, err := client.EnsureSubscription(ctx, topic, ProtocolEmail, "a@brewco.ie")
	require.NoError(t, err)
	require.True(t, created)

	created, err = client.EnsureSubscription(ctx, topic, ProtocolSQS, "arn:aws:sqs:us-east-1:1:q")
	require.NoError(t, err)
	require.True(t, created)

	for range 2 {
		created, err = client.EnsureSubscription(ctx, topic, ProtocolSQS, "arn:aws:sqs:us-east-1:1:q")
		require.NoError(t, err)
		require.False(t, created)
	}

	require.Len(t, api.subs, 2)
}

func TestPublishText(t *testing.T) {
	api := &fakeAPI{pageSize: 10}
	client := New(api)

	require.NoError(t, client.PublishText(context.Background(), "arn", "New order #1"))
	require.Equal(t, []string{"New order #1"}, api.published)

	api.publishErr = errors.New("denied")
	require.ErrorIs(t, client.PublishText(context.Background(), "arn", "x"), api.publishErr)
}
