package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/require"
)

type fakeSendAPI struct {
	in  *awssqs.SendMessageInput
	err error
}

func (f *fakeSendAPI) SendMessage(_ context.Context, in *awssqs.SendMessageInput, _ ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.in = in
	return &awssqs.SendMessageOutput{}, f.err
}

func TestSend(t *testing.T) {
	client := &fakeSendAPI{}
	sender := NewSender(client)

	require.NoError(t, sender.Send(context.Background(), "https://q", "42", []byte(`{"order_id":"42"}`)))
	require.Equal(t, "https://q", aws.ToString(client.in.QueueUrl))
	require.Equal(t, `{"order_id":"42"}`, aws.ToString(client.in.MessageBody))
	require.Equal(t, "42", aws.ToString(client.in.MessageAttributes[keyAttribute].StringValue))

	client.err = errors.New("unreachable")
	require.ErrorIs(t, sender.Send(context.Background(), "https://q", "", nil), client.err)
	require.Empty(t, client.in.MessageAttributes)
}
