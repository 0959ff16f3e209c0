package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/samber/lo"
)

const (
	ProtocolSQS   = "sqs"
	ProtocolEmail = "email"
)

type API interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
	Subscribe(ctx context.Context, params *awssns.SubscribeInput, optFns ...func(*awssns.Options)) (*awssns.SubscribeOutput, error)
	ListSubscriptionsByTopic(ctx context.Context, params *awssns.ListSubscriptionsByTopicInput, optFns ...func(*awssns.Options)) (*awssns.ListSubscriptionsByTopicOutput, error)
}

type Client struct {
	api API
}

func New(api API) *Client {
	return &Client{api: api}
}

func (c *Client) PublishText(ctx context.Context, topicARN, text string) error {
	const op = "brokers.sns.Client.PublishText"

	_, err := c.api.Publish(ctx, &awssns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(text),
	})
	if err != nil {
		return fmt.Errorf("%s: publish: %w", op, err)
	}

	return nil
}

// EnsureSubscription subscribes endpoint to the topic unless an identical
// subscription already exists. It reports whether a subscription was created.
func (c *Client) EnsureSubscription(ctx context.Context, topicARN, protocol, endpoint string) (bool, error) {
	const op = "brokers.sns.Client.EnsureSubscription"

	subs, err := c.subscriptions(ctx, topicARN)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	exists := lo.ContainsBy(subs, func(s types.Subscription) bool {
		return aws.ToString(s.Protocol) == protocol && aws.ToString(s.Endpoint) == endpoint
	})
	if exists {
		return false, nil
	}

	_, err = c.api.Subscribe(ctx, &awssns.SubscribeInput{
		TopicArn: aws.String(topicARN),
		Protocol: aws.String(protocol),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return false, fmt.Errorf("%s: subscribe %s: %w", op, protocol, err)
	}

	return true, nil
}

func (c *Client) subscriptions(ctx context.Context, topicARN string) ([]types.Subscription, error) {
	var (
		subs  []types.Subscription
		token *string
	)

	for {
		out, err := c.api.ListSubscriptionsByTopic(ctx, &awssns.ListSubscriptionsByTopicInput{
			TopicArn:  aws.String(topicARN),
			NextToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list subscriptions: %w", err)
		}

		subs = append(subs, out.Subscriptions...)

		if aws.ToString(out.NextToken) == "" {
			return subs, nil
		}
		token = out.NextToken
	}
}
