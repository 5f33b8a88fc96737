// internal/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/unclebandit/togetherunite-backend/internal/model"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	ConfirmSubscription(ctx context.Context, params *sns.ConfirmSubscriptionInput, optFns ...func(*sns.Options)) (*sns.ConfirmSubscriptionOutput, error)
}

type SNSClient struct {
	client snsAPI
	// OrganizerTopicARN receives organizer alerts. Alerts are dropped when empty.
	OrganizerTopicARN string
}

func NewSNSClient(cfg awssdk.Config, organizerTopicARN string) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), OrganizerTopicARN: organizerTopicARN}
}

// ConfirmSubscription completes the handshake for an HTTP topic subscription.
func (s *SNSClient) ConfirmSubscription(ctx context.Context, topicARN, token string) error {
	_, err := s.client.ConfirmSubscription(ctx, &sns.ConfirmSubscriptionInput{
		TopicArn: awssdk.String(topicARN),
		Token:    awssdk.String(token),
	})
	if err != nil {
		return fmt.Errorf("confirm sns subscription: %w", err)
	}
	return nil
}

func (s *SNSClient) NotifyOrganizer(ctx context.Context, alert model.OrganizerAlert) error {
	if s.OrganizerTopicARN == "" {
		return nil
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode organizer alert: %w", err)
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.OrganizerTopicARN),
		Subject:  awssdk.String("Recipient removed from campaign"),
		Message:  awssdk.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("publish organizer alert: %w", err)
	}
	return nil
}
