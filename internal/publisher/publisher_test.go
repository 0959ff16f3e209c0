package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	"github.com/jeevanjot011/bevflow/internal/publisher/mocks"
	"github.com/jeevanjot011/bevflow/internal/repository/paramstore"
	"github.com/jeevanjot011/bevflow/internal/resources"
	"github.com/jeevanjot011/bevflow/internal/testutil/awsfake"
	brokersns "github.com/jeevanjot011/bevflow/pkg/brokers/sns"
	brokersqs "github.com/jeevanjot011/bevflow/pkg/brokers/sqs"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

const (
	queueURL = "https://sqs.us-east-1.amazonaws.com/000000000000/bevflow-orders-test"
	topicARN = "arn:aws:sns:us-east-1:000000000000:bevflow-orders-topic-test"
)

func order() models.OrderMessage {
	return models.OrderMessage{
		OrderID:              "42",
		ProductID:            "7",
		ProductName:          "Cold Brew",
		Quantity:             3,
		CustomerID:           "11",
		CustomerUsername:     "alice",
		ManufacturerID:       "5",
		ManufacturerEmail:    "orders@brewco.ie",
		CustomerAreaCode:     "D8",
		ManufacturerAreaCode: "D24",
		CreatedAt:            time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	body, err := order().Marshal()
	require.NoError(t, err)

	invalid := order()
	invalid.Quantity = 0

	type behavior func(addr *mocks.MockAddressResolver, queue *mocks.MockQueueSender, topic *mocks.MockTopicClient)

	tCases := []struct {
		name         string
		msg          models.OrderMessage
		mockBehavior behavior
		wantErr      error
	}{
		{
			name: "ok",
			msg:  order(),
			mockBehavior: func(addr *mocks.MockAddressResolver, queue *mocks.MockQueueSender, topic *mocks.MockTopicClient) {
				addr.EXPECT().QueueURL(ctx).Return(queueURL, nil)
				queue.EXPECT().Send(ctx, queueURL, "42", body).Return(nil)
				addr.EXPECT().TopicARN(ctx).Return(topicARN, nil)
				topic.EXPECT().PublishText(ctx, topicARN, "New order #42 for Cold Brew x3 by alice").Return(nil)
			},
		},
		{
			name: "queue_failure_surfaces",
			msg:  order(),
			mockBehavior: func(addr *mocks.MockAddressResolver, queue *mocks.MockQueueSender, _ *mocks.MockTopicClient) {
				addr.EXPECT().QueueURL(ctx).Return(queueURL, nil)
				queue.EXPECT().Send(ctx, queueURL, "42", body).Return(errors.New("access denied"))
			},
			wantErr: internalErrors.ErrEnqueueFailed,
		},
		{
			name: "queue_unresolvable",
			msg:  order(),
			mockBehavior: func(addr *mocks.MockAddressResolver, _ *mocks.MockQueueSender, _ *mocks.MockTopicClient) {
				addr.EXPECT().QueueURL(ctx).Return("", errors.New("throttled"))
			},
			wantErr: internalErrors.ErrEnqueueFailed,
		},
		{
			name: "topic_failure_is_swallowed",
			msg:  order(),
			mockBehavior: func(addr *mocks.MockAddressResolver, queue *mocks.MockQueueSender, topic *mocks.MockTopicClient) {
				addr.EXPECT().QueueURL(ctx).Return(queueURL, nil)
				queue.EXPECT().Send(ctx, queueURL, "42", body).Return(nil)
				addr.EXPECT().TopicARN(ctx).Return(topicARN, nil)
				topic.EXPECT().PublishText(ctx, topicARN, gomock.Any()).Return(errors.New("denied"))
			},
		},
		{
			name: "topic_unresolvable_is_swallowed",
			msg:  order(),
			mockBehavior: func(addr *mocks.MockAddressResolver, queue *mocks.MockQueueSender, _ *mocks.MockTopicClient) {
				addr.EXPECT().QueueURL(ctx).Return(queueURL, nil)
				queue.EXPECT().Send(ctx, queueURL, "42", body).Return(nil)
				addr.EXPECT().TopicARN(ctx).Return("", errors.New("denied"))
			},
		},
		{
			name:         "invalid_message_is_rejected",
			msg:          invalid,
			mockBehavior: func(*mocks.MockAddressResolver, *mocks.MockQueueSender, *mocks.MockTopicClient) {},
			wantErr:      internalErrors.ErrInvalidMessage,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			addr := mocks.NewMockAddressResolver(ctl)
			queue := mocks.NewMockQueueSender(ctl)
			topic := mocks.NewMockTopicClient(ctl)
			tCase.mockBehavior(addr, queue, topic)

			err := New(logger.Discard(), addr, queue, topic).Publish(ctx, tCase.msg)
			if tCase.wantErr != nil {
				require.ErrorIs(t, err, tCase.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSubscribeEmail(t *testing.T) {
	ctx := context.Background()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	addr := mocks.NewMockAddressResolver(ctl)
	topic := mocks.NewMockTopicClient(ctl)

	addr.EXPECT().TopicARN(ctx).Return(topicARN, nil).Times(2)
	gomock.InOrder(
		topic.EXPECT().EnsureSubscription(ctx, topicARN, "email", "orders@brewco.ie").Return(true, nil),
		topic.EXPECT().EnsureSubscription(ctx, topicARN, "email", "orders@brewco.ie").Return(false, nil),
	)

	p := New(logger.Discard(), addr, mocks.NewMockQueueSender(ctl), topic)

	created, err := p.SubscribeEmail(ctx, "orders@brewco.ie")
	require.NoError(t, err)
	require.True(t, created)

	created, err = p.SubscribeEmail(ctx, "orders@brewco.ie")
	require.NoError(t, err)
	require.False(t, created)
}

func TestPublishCreatesResourcesLazily(t *testing.T) {
	ctx := context.Background()

	sqsAPI := awsfake.NewSQS()
	snsAPI := awsfake.NewSNS()
	ssm := awsfake.NewSSM()

	resolver := resources.NewResolver(logger.Discard(), paramstore.New(logger.Discard(), ssm))
	addresses := resources.NewAddresses(resolver,
		resources.Resource{Kind: "queue", Name: "bevflow-orders-test", Param: "/bevflow/sqs-url-test", Backend: resources.NewSQSQueues(sqsAPI)},
		resources.Resource{Kind: "topic", Name: "bevflow-orders-topic-test", Param: "/bevflow/sns-arn-test", Backend: resources.NewSNSTopics(snsAPI)},
	)

	p := New(logger.Discard(), addresses, brokersqs.NewSender(sqsAPI), brokersns.New(snsAPI))

	require.NoError(t, p.Publish(ctx, order()))
	require.NoError(t, p.Publish(ctx, order()))

	require.Equal(t, 1, sqsAPI.QueueCount())
	require.Len(t, sqsAPI.Sent[queueURL], 2)
	require.Equal(t, queueURL, ssm.Get("/bevflow/sqs-url-test"))
	require.Equal(t, topicARN, ssm.Get("/bevflow/sns-arn-test"))
	require.Equal(t, []string{
		"New order #42 for Cold Brew x3 by alice",
		"New order #42 for Cold Brew x3 by alice",
	}, snsAPI.Published[topicARN])

	snsAPI.PublishErr = errors.New("denied")
	require.NoError(t, p.Publish(ctx, order()))

	sqsAPI.SendErr = errors.New("denied")
	require.ErrorIs(t, p.Publish(ctx, order()), internalErrors.ErrEnqueueFailed)
}
