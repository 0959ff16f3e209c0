package resources

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQSQueues resolves queues to their URLs.
type SQSQueues struct {
	client SQSAPI
}

func NewSQSQueues(client SQSAPI) *SQSQueues {
	return &SQSQueues{client: client}
}

func (q *SQSQueues) Lookup(ctx context.Context, name string) (string, error) {
	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		if internalErrors.IsNotFound(err) {
			return "", internalErrors.ErrResourceNotFound
		}
		return "", err
	}

	return aws.ToString(out.QueueUrl), nil
}

// Create is idempotent on the SQS side for identical attributes.
func (q *SQSQueues) Create(ctx context.Context, name string) (string, error) {
	out, err := q.client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(name)})
	if err != nil {
		return "", err
	}

	return aws.ToString(out.QueueUrl), nil
}

func (q *SQSQueues) Exists(ctx context.Context, queueURL string) (bool, error) {
	_, err := q.Arn(ctx, queueURL)
	if err != nil {
		if internalErrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (q *SQSQueues) Arn(ctx context.Context, queueURL string) (string, error) {
	out, err := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return "", err
	}

	arn, ok := out.Attributes[string(types.QueueAttributeNameQueueArn)]
	if !ok {
		return "", fmt.Errorf("queue %s has no arn attribute", queueURL)
	}

	return arn, nil
}
