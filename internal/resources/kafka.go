package resources

import (
	"context"
	"errors"

	"github.com/IBM/sarama"

	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type KafkaAdmin interface {
	ListTopics() (map[string]sarama.TopicDetail, error)
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
}

// KafkaTopics backs the durable queue with a Kafka topic. The address is the topic name.
type KafkaTopics struct {
	admin             KafkaAdmin
	partitions        int32
	replicationFactor int16
}

func NewKafkaTopics(admin KafkaAdmin, partitions int32, replicationFactor int16) *KafkaTopics {
	return &KafkaTopics{
		admin:             admin,
		partitions:        partitions,
		replicationFactor: replicationFactor,
	}
}

func (k *KafkaTopics) Lookup(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	topics, err := k.admin.ListTopics()
	if err != nil {
		return "", err
	}

	if _, ok := topics[name]; !ok {
		return "", internalErrors.ErrResourceNotFound
	}

	return name, nil
}

func (k *KafkaTopics) Create(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err := k.admin.CreateTopic(name, &sarama.TopicDetail{
		NumPartitions:     k.partitions,
		ReplicationFactor: k.replicationFactor,
	}, false)
	if err != nil && !topicExists(err) {
		return "", err
	}

	return name, nil
}

func (k *KafkaTopics) Exists(ctx context.Context, name string) (bool, error) {
	_, err := k.Lookup(ctx, name)
	if errors.Is(err, internalErrors.ErrResourceNotFound) {
		return false, nil
	}

	return err == nil, err
}

func topicExists(err error) bool {
	var topicErr *sarama.TopicError
	if errors.As(err, &topicErr) {
		return topicErr.Err == sarama.ErrTopicAlreadyExists
	}

	return errors.Is(err, sarama.ErrTopicAlreadyExists)
}
