package resources

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/samber/lo"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type SNSAPI interface {
	ListTopics(ctx context.Context, params *sns.ListTopicsInput, optFns ...func(*sns.Options)) (*sns.ListTopicsOutput, error)
	CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, optFns ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error)
}

// SNSTopics resolves topics to their ARNs.
type SNSTopics struct {
	client SNSAPI
}

func NewSNSTopics(client SNSAPI) *SNSTopics {
	return &SNSTopics{client: client}
}

func (t *SNSTopics) Lookup(ctx context.Context, name string) (string, error) {
	paginator := sns.NewListTopicsPaginator(t.client, &sns.ListTopicsInput{})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", err
		}

		arns := lo.Map(page.Topics, func(topic types.Topic, _ int) string { return aws.ToString(topic.TopicArn) })
		if arn, ok := lo.Find(arns, func(arn string) bool { return strings.HasSuffix(arn, ":"+name) }); ok {
			return arn, nil
		}
	}

	return "", internalErrors.ErrResourceNotFound
}

func (t *SNSTopics) Create(ctx context.Context, name string) (string, error) {
	out, err := t.client.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String(name)})
	if err != nil {
		return "", err
	}

	return aws.ToString(out.TopicArn), nil
}

func (t *SNSTopics) Exists(ctx context.Context, arn string) (bool, error) {
	_, err := t.client.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{TopicArn: aws.String(arn)})
	if err != nil {
		if internalErrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
