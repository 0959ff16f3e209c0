package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const keyAttribute = "order_id"

type sendAPI interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
}

type Sender struct {
	client sendAPI
}

func NewSender(client sendAPI) *Sender {
	return &Sender{client: client}
}

// Send puts body on the queue at queueURL. key is attached as a message attribute.
func (s *Sender) Send(ctx context.Context, queueURL, key string, body []byte) error {
	const op = "brokers.sqs.Sender.Send"

	in := &awssqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	}
	if key != "" {
		in.MessageAttributes = map[string]types.MessageAttributeValue{
			keyAttribute: {DataType: aws.String("String"), StringValue: aws.String(key)},
		}
	}

	if _, err := s.client.SendMessage(ctx, in); err != nil {
		return fmt.Errorf("%s: send message: %w", op, err)
	}

	return nil
}
