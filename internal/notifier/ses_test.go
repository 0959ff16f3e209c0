package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestNotify(t *testing.T) {
	client := &fakeSES{}
	n := NewSES(logger.Discard(), client, "no-reply@bevflow.ie")

	err := n.Notify(context.Background(), models.Notification{
		To:      "orders@brewco.ie",
		Subject: "New Order #42 — Cold Brew",
		Text:    "text",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)

	require.Equal(t, "no-reply@bevflow.ie", aws.ToString(client.in.FromEmailAddress))
	require.Equal(t, []string{"orders@brewco.ie"}, client.in.Destination.ToAddresses)
	require.Equal(t, "New Order #42 — Cold Brew", aws.ToString(client.in.Content.Simple.Subject.Data))
	require.Equal(t, "text", aws.ToString(client.in.Content.Simple.Body.Text.Data))
	require.Equal(t, "<p>html</p>", aws.ToString(client.in.Content.Simple.Body.Html.Data))
}

func TestNotifyErrors(t *testing.T) {
	require.Error(t, NewSES(logger.Discard(), &fakeSES{}, "").Notify(context.Background(), models.Notification{To: "a@b.ie"}))

	client := &fakeSES{err: errors.New("MessageRejected")}
	err := NewSES(logger.Discard(), client, "no-reply@bevflow.ie").Notify(context.Background(), models.Notification{To: "a@b.ie"})
	require.ErrorIs(t, err, client.err)
}
