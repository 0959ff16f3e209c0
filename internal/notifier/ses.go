package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
)

const charset = "UTF-8"

type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES delivers notifications as multipart (text + HTML) e-mails.
type SES struct {
	log    *slog.Logger
	client SESAPI
	sender string
}

func NewSES(log *slog.Logger, client SESAPI, sender string) *SES {
	return &SES{
		log:    log,
		client: client,
		sender: sender,
	}
}

func (s *SES) Notify(ctx context.Context, n models.Notification) error {
	const op = "notifier.SES.Notify"

	if s.sender == "" {
		return fmt.Errorf("%s: sender address is not configured", op)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender),
		Destination:      &types.Destination{ToAddresses: []string{n.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(n.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(n.Text), Charset: aws.String(charset)},
					Html: &types.Content{Data: aws.String(n.HTML), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		s.log.Error(op, slog.String("to", n.To), slog.String("error", err.Error()))
		return fmt.Errorf("%s: send email: %w", op, err)
	}

	s.log.Debug(op, slog.String("to", n.To), slog.String("message_id", aws.ToString(out.MessageId)))

	return nil
}
