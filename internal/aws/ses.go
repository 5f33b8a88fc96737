// internal/aws/ses.go
package aws

import (
	"context"
	"fmt"
	"net/mail"
	"sort"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/model"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends outreach mail through SES. Every message goes out under
// the configuration set so bounces and complaints reach the feedback topic.
type SESMailer struct {
	client           sesAPI
	configurationSet string
	defaultSender    string
	log              *zap.Logger
}

func NewSESMailer(cfg awssdk.Config, configurationSet, defaultSender string, log *zap.Logger) *SESMailer {
	return &SESMailer{
		client:           sesv2.NewFromConfig(cfg),
		configurationSet: configurationSet,
		defaultSender:    defaultSender,
		log:              logger.OrNop(log),
	}
}

func (m *SESMailer) input(msg model.OutboundEmail) *sesv2.SendEmailInput {
	fromEmail := msg.FromEmail
	if fromEmail == "" {
		fromEmail = m.defaultSender
	}
	from := mail.Address{Name: msg.FromName, Address: fromEmail}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: awssdk.String(from.String()),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: awssdk.String(msg.Subject), Charset: awssdk.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: awssdk.String(msg.Body), Charset: awssdk.String("UTF-8")},
				},
			},
		},
	}
	if m.configurationSet != "" {
		in.ConfigurationSetName = awssdk.String(m.configurationSet)
	}

	keys := make([]string, 0, len(msg.Tags))
	for k := range msg.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		in.EmailTags = append(in.EmailTags, types.MessageTag{Name: awssdk.String(k), Value: awssdk.String(msg.Tags[k])})
	}
	return in
}

// Send delivers msg and returns the provider message id.
func (m *SESMailer) Send(ctx context.Context, msg model.OutboundEmail) (string, error) {
	out, err := m.client.SendEmail(ctx, m.input(msg))
	if err != nil {
		return "", fmt.Errorf("ses send: %w", err)
	}
	id := awssdk.ToString(out.MessageId)
	m.log.Debug("email handed to ses", zap.String("message_id", id))
	return id, nil
}
