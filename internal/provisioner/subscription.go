package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/samber/lo"

	brokersns "github.com/jeevanjot011/bevflow/pkg/brokers/sns"
)

const (
	policySid     = "Allow-SNS-SendMessage"
	policyVersion = "2012-10-17"
)

type queuePolicyAPI interface {
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(ctx context.Context, params *sqs.SetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error)
}

type subscriptionEnsurer interface {
	EnsureSubscription(ctx context.Context, topicARN, protocol, endpoint string) (bool, error)
}

// SQSSubscriber lets the topic deliver into the queue: it grants the topic
// SendMessage on the queue and subscribes the queue once.
type SQSSubscriber struct {
	log    *slog.Logger
	queues queuePolicyAPI
	topics subscriptionEnsurer
}

func NewSQSSubscriber(log *slog.Logger, queues queuePolicyAPI, topics subscriptionEnsurer) *SQSSubscriber {
	return &SQSSubscriber{
		log:    log,
		queues: queues,
		topics: topics,
	}
}

func (s *SQSSubscriber) Subscribe(ctx context.Context, queueURL, topicARN string) error {
	const op = "provisioner.SQSSubscriber.Subscribe"

	out, err := s.queues.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(queueURL),
		AttributeNames: []types.QueueAttributeName{
			types.QueueAttributeNameQueueArn,
			types.QueueAttributeNamePolicy,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: queue attributes: %w", op, err)
	}

	queueARN := out.Attributes[string(types.QueueAttributeNameQueueArn)]
	if queueARN == "" {
		return fmt.Errorf("%s: queue %s has no arn", op, queueURL)
	}

	policy, changed, err := mergePolicy(out.Attributes[string(types.QueueAttributeNamePolicy)], queueARN, topicARN)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if changed {
		_, err = s.queues.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
			QueueUrl:   aws.String(queueURL),
			Attributes: map[string]string{string(types.QueueAttributeNamePolicy): policy},
		})
		if err != nil {
			return fmt.Errorf("%s: set queue policy: %w", op, err)
		}

		s.log.Info(op, slog.String("queue", queueARN), slog.String("policy", "updated"))
	}

	created, err := s.topics.EnsureSubscription(ctx, topicARN, brokersns.ProtocolSQS, queueARN)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if created {
		s.log.Info(op, slog.String("queue", queueARN), slog.String("topic", topicARN), slog.String("subscription", "created"))
	}

	return nil
}

type policyDocument struct {
	Version   string           `json:"Version"`
	ID        string           `json:"Id,omitempty"`
	Statement []map[string]any `json:"Statement"`
}

// mergePolicy replaces the statement with our Sid in the existing policy and
// keeps every other statement. It reports whether the policy changed.
func mergePolicy(existing, queueARN, topicARN string) (string, bool, error) {
	doc := policyDocument{Version: policyVersion, ID: queueARN + "/SQSDefaultPolicy"}

	if existing != "" {
		var raw struct {
			Version   string          `json:"Version"`
			ID        string          `json:"Id"`
			Statement json.RawMessage `json:"Statement"`
		}
		if err := json.Unmarshal([]byte(existing), &raw); err != nil {
			return "", false, fmt.Errorf("decode queue policy: %w", err)
		}

		statements, err := decodeStatements(raw.Statement)
		if err != nil {
			return "", false, err
		}

		doc.Statement = statements
		if raw.Version != "" {
			doc.Version = raw.Version
		}
		if raw.ID != "" {
			doc.ID = raw.ID
		}
	}

	wanted := allowTopicStatement(queueARN, topicARN)

	current, found := lo.Find(doc.Statement, func(st map[string]any) bool { return st["Sid"] == policySid })
	if found && sameJSON(current, wanted) {
		return existing, false, nil
	}

	doc.Statement = append(
		lo.Reject(doc.Statement, func(st map[string]any, _ int) bool { return st["Sid"] == policySid }),
		wanted,
	)

	merged, err := json.Marshal(doc)
	if err != nil {
		return "", false, fmt.Errorf("encode queue policy: %w", err)
	}

	return string(merged), true, nil
}

func decodeStatements(raw json.RawMessage) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '{' {
		var single map[string]any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("decode policy statement: %w", err)
		}
		return []map[string]any{single}, nil
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode policy statements: %w", err)
	}

	return list, nil
}

func allowTopicStatement(queueARN, topicARN string) map[string]any {
	return map[string]any{
		"Sid":       policySid,
		"Effect":    "Allow",
		"Principal": map[string]any{"AWS": "*"},
		"Action":    "SQS:SendMessage",
		"Resource":  queueARN,
		"Condition": map[string]any{
			"ArnEquals": map[string]any{"aws:SourceArn": topicARN},
		},
	}
}

func sameJSON(a, b any) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return bytes.Equal(left, right)
}
