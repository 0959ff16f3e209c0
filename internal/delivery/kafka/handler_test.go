package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/consumer"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

type countingProcessor struct {
	mu sync.Mutex

	calls     map[string]int
	failTimes map[string]int
}

func (p *countingProcessor) ProcessRecord(_ context.Context, record consumer.Record) consumer.RecordResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[record.ID]++

	return consumer.RecordResult{
		RecordID:  record.ID,
		Redeliver: p.calls[record.ID] <= p.failTimes[string(record.Body)],
	}
}

type session struct {
	ctx    context.Context
	marked []int64
}

func (s *session) Claims() map[string][]int32               { return nil }
func (s *session) MemberID() string                         { return "member" }
func (s *session) GenerationID() int32                      { return 1 }
func (s *session) MarkOffset(string, int32, int64, string)  {}
func (s *session) Commit()                                  {}
func (s *session) ResetOffset(string, int32, int64, string) {}
func (s *session) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}
func (s *session) Context() context.Context { return s.ctx }

type claim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *claim) Topic() string                            { return "orders" }
func (c *claim) Partition() int32                         { return 0 }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return int64(len(c.messages)) }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func newClaim(bodies ...string) *claim {
	c := &claim{messages: make(chan *sarama.ConsumerMessage, len(bodies))}
	for i, body := range bodies {
		c.messages <- &sarama.ConsumerMessage{Topic: "orders", Offset: int64(i), Value: []byte(body)}
	}
	close(c.messages)

	return c
}

func TestConsumeClaim(t *testing.T) {
	tCases := []struct {
		name       string
		failTimes  map[string]int
		maxRetries uint64
		wantCalls  map[string]int
	}{
		{
			name:       "all_succeed",
			maxRetries: 3,
			wantCalls:  map[string]int{"orders/0/0": 1, "orders/0/1": 1},
		},
		{
			name:       "retried_until_success",
			failTimes:  map[string]int{"b": 2},
			maxRetries: 3,
			wantCalls:  map[string]int{"orders/0/0": 1, "orders/0/1": 3},
		},
		{
			name:       "retries_exhausted_then_committed",
			failTimes:  map[string]int{"a": 10},
			maxRetries: 2,
			wantCalls:  map[string]int{"orders/0/0": 3, "orders/0/1": 1},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			processor := &countingProcessor{calls: map[string]int{}, failTimes: tCase.failTimes}

			h := NewHandler(logger.Discard(), processor, tCase.maxRetries)
			h.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

			s := &session{ctx: context.Background()}
			require.NoError(t, h.ConsumeClaim(s, newClaim("a", "b")))

			require.Equal(t, tCase.wantCalls, processor.calls)
			require.Equal(t, []int64{0, 1}, s.marked)
		})
	}
}

func TestConsumeClaimCanceledLeavesOffset(t *testing.T) {
	processor := &countingProcessor{calls: map[string]int{}, failTimes: map[string]int{"a": 100}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHandler(logger.Discard(), processor, 5)
	h.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	s := &session{ctx: ctx}
	c := &claim{messages: make(chan *sarama.ConsumerMessage, 1)}
	c.messages <- &sarama.ConsumerMessage{Topic: "orders", Value: []byte("a")}

	err := h.handle(ctx, <-c.messages)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, s.marked)
}
