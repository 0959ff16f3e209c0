package awsfake

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNS struct {
	mu sync.Mutex

	topics     map[string]struct{}
	subs       map[string][]types.Subscription
	Published  map[string][]string
	PublishErr error
	PageSize   int
}

func NewSNS() *SNS {
	return &SNS{
		topics:    map[string]struct{}{},
		subs:      map[string][]types.Subscription{},
		Published: map[string][]string{},
		PageSize:  2,
	}
}

func TopicARN(name string) string {
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", Region, Account, name)
}

func (f *SNS) ListTopics(_ context.Context, in *sns.ListTopicsInput, _ ...func(*sns.Options)) (*sns.ListTopicsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	arns := make([]string, 0, len(f.topics))
	for arn := range f.topics {
		arns = append(arns, arn)
	}
	sort.Strings(arns)

	start := 0
	if in.NextToken != nil {
		start, _ = strconv.Atoi(aws.ToString(in.NextToken))
	}
	end := min(start+f.PageSize, len(arns))

	out := &sns.ListTopicsOutput{}
	for _, arn := range arns[start:end] {
		out.Topics = append(out.Topics, types.Topic{TopicArn: aws.String(arn)})
	}
	if end < len(arns) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}

	return out, nil
}

func (f *SNS) CreateTopic(_ context.Context, in *sns.CreateTopicInput, _ ...func(*sns.Options)) (*sns.CreateTopicOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	arn := TopicARN(aws.ToString(in.Name))
	f.topics[arn] = struct{}{}

	return &sns.CreateTopicOutput{TopicArn: aws.String(arn)}, nil
}

func (f *SNS) GetTopicAttributes(_ context.Context, in *sns.GetTopicAttributesInput, _ ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	arn := aws.ToString(in.TopicArn)
	if _, ok := f.topics[arn]; !ok {
		return nil, &types.NotFoundException{Message: aws.String("topic does not exist")}
	}

	return &sns.GetTopicAttributesOutput{Attributes: map[string]string{"TopicArn": arn}}, nil
}

func (f *SNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishErr != nil {
		return nil, f.PublishErr
	}

	arn := aws.ToString(in.TopicArn)
	if _, ok := f.topics[arn]; !ok {
		return nil, &types.NotFoundException{Message: aws.String("topic does not exist")}
	}

	f.Published[arn] = append(f.Published[arn], aws.ToString(in.Message))

	return &sns.PublishOutput{MessageId: aws.String(strconv.Itoa(len(f.Published[arn])))}, nil
}

func (f *SNS) Subscribe(_ context.Context, in *sns.SubscribeInput, _ ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	arn := aws.ToString(in.TopicArn)
	if _, ok := f.topics[arn]; !ok {
		return nil, &types.NotFoundException{Message: aws.String("topic does not exist")}
	}

	subArn := fmt.Sprintf("%s:%d", arn, len(f.subs[arn]))
	f.subs[arn] = append(f.subs[arn], types.Subscription{
		TopicArn:        in.TopicArn,
		Protocol:        in.Protocol,
		Endpoint:        in.Endpoint,
		SubscriptionArn: aws.String(subArn),
	})

	return &sns.SubscribeOutput{SubscriptionArn: aws.String(subArn)}, nil
}

func (f *SNS) ListSubscriptionsByTopic(_ context.Context, in *sns.ListSubscriptionsByTopicInput, _ ...func(*sns.Options)) (*sns.ListSubscriptionsByTopicOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs := f.subs[aws.ToString(in.TopicArn)]

	start := 0
	if in.NextToken != nil {
		start, _ = strconv.Atoi(aws.ToString(in.NextToken))
	}
	end := min(start+f.PageSize, len(subs))

	out := &sns.ListSubscriptionsByTopicOutput{Subscriptions: append([]types.Subscription(nil), subs[start:end]...)}
	if end < len(subs) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}

	return out, nil
}

// Delete removes a topic, leaving any stored ARN dangling.
func (f *SNS) Delete(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.topics, TopicARN(name))
}

func (f *SNS) TopicCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.topics)
}

func (f *SNS) Subscriptions(topicARN string) []types.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]types.Subscription(nil), f.subs[topicARN]...)
}
