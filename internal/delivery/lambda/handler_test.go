package lambda

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/consumer"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

type stubProcessor struct {
	got       []consumer.Record
	redeliver map[string]bool
}

func (s *stubProcessor) ProcessBatch(_ context.Context, records []consumer.Record) consumer.BatchResult {
	s.got = records

	var result consumer.BatchResult
	for _, r := range records {
		result.Records = append(result.Records, consumer.RecordResult{RecordID: r.ID, Redeliver: s.redeliver[r.ID]})
	}

	return result
}

func TestHandle(t *testing.T) {
	tCases := []struct {
		name      string
		redeliver map[string]bool
		expected  []events.SQSBatchItemFailure
	}{
		{name: "all_ok"},
		{
			name:      "one_redelivered",
			redeliver: map[string]bool{"m2": true},
			expected:  []events.SQSBatchItemFailure{{ItemIdentifier: "m2"}},
		},
		{
			name:      "all_redelivered",
			redeliver: map[string]bool{"m1": true, "m2": true},
			expected:  []events.SQSBatchItemFailure{{ItemIdentifier: "m1"}, {ItemIdentifier: "m2"}},
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			processor := &stubProcessor{redeliver: tCase.redeliver}
			h := NewHandler(logger.Discard(), processor)

			resp, err := h.Handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
				{MessageId: "m1", Body: `{"order_id":"1"}`},
				{MessageId: "m2", Body: `not json`},
			}})
			require.NoError(t, err)
			require.ElementsMatch(t, tCase.expected, resp.BatchItemFailures)

			require.Len(t, processor.got, 2)
			require.Equal(t, "m1", processor.got[0].ID)
			require.Equal(t, []byte("not json"), processor.got[1].Body)
		})
	}
}
