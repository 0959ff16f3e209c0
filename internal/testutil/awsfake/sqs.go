// Package awsfake provides in-memory stand-ins for the AWS APIs the pipeline uses.
package awsfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	Region  = "us-east-1"
	Account = "000000000000"
)

type SQS struct {
	mu sync.Mutex

	urls       map[string]string
	attributes map[string]map[string]string
	Sent       map[string][]string
	Creates    int
	SendErr    error
}

func NewSQS() *SQS {
	return &SQS{
		urls:       map[string]string{},
		attributes: map[string]map[string]string{},
		Sent:       map[string][]string{},
	}
}

func (f *SQS) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	url, ok := f.urls[aws.ToString(in.QueueName)]
	if !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}

	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String(url)}, nil
}

func (f *SQS) CreateQueue(_ context.Context, in *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(in.QueueName)
	if url, ok := f.urls[name]; ok {
		return &sqs.CreateQueueOutput{QueueUrl: aws.String(url)}, nil
	}

	f.Creates++

	url := fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", Region, Account, name)
	f.urls[name] = url
	f.attributes[url] = map[string]string{
		string(types.QueueAttributeNameQueueArn): fmt.Sprintf("arn:aws:sqs:%s:%s:%s", Region, Account, name),
	}

	return &sqs.CreateQueueOutput{QueueUrl: aws.String(url)}, nil
}

func (f *SQS) GetQueueAttributes(_ context.Context, in *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attrs, ok := f.attributes[aws.ToString(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}

	out := map[string]string{}
	for _, name := range in.AttributeNames {
		if value, ok := attrs[string(name)]; ok {
			out[string(name)] = value
		}
	}

	return &sqs.GetQueueAttributesOutput{Attributes: out}, nil
}

func (f *SQS) SetQueueAttributes(_ context.Context, in *sqs.SetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attrs, ok := f.attributes[aws.ToString(in.QueueUrl)]
	if !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}

	for k, v := range in.Attributes {
		attrs[k] = v
	}

	return &sqs.SetQueueAttributesOutput{}, nil
}

func (f *SQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SendErr != nil {
		return nil, f.SendErr
	}

	url := aws.ToString(in.QueueUrl)
	if _, ok := f.attributes[url]; !ok {
		return nil, &types.QueueDoesNotExist{Message: aws.String("queue does not exist")}
	}

	f.Sent[url] = append(f.Sent[url], aws.ToString(in.MessageBody))

	return &sqs.SendMessageOutput{MessageId: aws.String(fmt.Sprint(len(f.Sent[url])))}, nil
}

// Delete removes a queue, leaving any stored URL dangling.
func (f *SQS) Delete(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.attributes, f.urls[name])
	delete(f.urls, name)
}

func (f *SQS) Attribute(url, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.attributes[url][name]
}

func (f *SQS) QueueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.urls)
}
