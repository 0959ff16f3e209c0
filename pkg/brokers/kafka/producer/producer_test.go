package producer

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/pkg/logger"
)

func TestSend(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true

	sync := mocks.NewSyncProducer(t, config)
	sync.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		require.JSONEq(t, `{"order_id":"42"}`, string(val))
		return nil
	})
	sync.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := New(logger.Discard(), sync)
	defer func() { require.NoError(t, p.Close()) }()

	require.NoError(t, p.Send(context.Background(), "bevflow-orders-dev", "42", []byte(`{"order_id":"42"}`)))
	require.ErrorIs(t, p.Send(context.Background(), "bevflow-orders-dev", "43", []byte(`{}`)), sarama.ErrOutOfBrokers)
}

func TestSendCanceled(t *testing.T) {
	sync := mocks.NewSyncProducer(t, mocks.NewTestConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(logger.Discard(), sync)
	require.ErrorIs(t, p.Send(ctx, "t", "k", nil), context.Canceled)
	require.NoError(t, p.Close())
}
