// Package sesservice provides an Amazon SES (v2 API) email service implementation.
package sesservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sgaunet/mailsend/internal/mailservice"
	"github.com/sirupsen/logrus"
)

const charset = "UTF-8"

// ErrNoRegion is returned when the AWS config carries no region.
var ErrNoRegion = errors.New("aws region is mandatory for ses")

// SendEmailAPI is the part of the sesv2 client used here.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesService struct {
	client SendEmailAPI
	log    *logrus.Logger
}

// NewSESService creates a new SES service instance from an AWS config.
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewSESService(cfg aws.Config, log *logrus.Logger) (mailservice.MailSender, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w", ErrNoRegion)
	}
	return NewSESServiceWithClient(sesv2.NewFromConfig(cfg), log), nil
}

// NewSESServiceWithClient wraps an existing client.
//nolint:ireturn // Factory function intentionally returns interface for dependency injection
func NewSESServiceWithClient(client SendEmailAPI, log *logrus.Logger) mailservice.MailSender {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &sesService{client: client, log: log}
}

func (s *sesService) Send(ctx context.Context, msg mailservice.Message) error {
	out, err := s.client.SendEmail(ctx, buildInput(msg))
	if err != nil {
		return fmt.Errorf("failed to send email via ses: %w", err)
	}
	s.log.WithField("id", aws.ToString(out.MessageId)).Debugln("mail accepted by ses")
	return nil
}

func buildInput(msg mailservice.Message) *sesv2.SendEmailInput {
	dest := &types.Destination{
		ToAddresses: []string{msg.To},
	}
	if len(msg.Cc) > 0 {
		dest.CcAddresses = append([]string(nil), msg.Cc...)
	}
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      dest,
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String(charset),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String(charset),
					},
				},
			},
		},
	}
}
