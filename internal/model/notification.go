package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	SNSTypeNotification             = "Notification"
	SNSTypeSubscriptionConfirmation = "SubscriptionConfirmation"
	SNSTypeUnsubscribeConfirmation  = "UnsubscribeConfirmation"
)

// SNSEnvelope is the outer message delivered by a notification topic.
type SNSEnvelope struct {
	Type         string `json:"Type"`
	MessageID    string `json:"MessageId"`
	TopicArn     string `json:"TopicArn"`
	Subject      string `json:"Subject"`
	Message      string `json:"Message"`
	Token        string `json:"Token"`
	SubscribeURL string `json:"SubscribeURL"`
	Timestamp    string `json:"Timestamp"`
}

func ParseSNSEnvelope(body []byte) (*SNSEnvelope, error) {
	var env SNSEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode sns envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode sns envelope: missing Type")
	}
	return &env, nil
}

type BouncedRecipient struct {
	EmailAddress   string `json:"emailAddress"`
	Action         string `json:"action"`
	Status         string `json:"status"`
	DiagnosticCode string `json:"diagnosticCode"`
}

type Bounce struct {
	BounceType        string             `json:"bounceType"`
	BounceSubType     string             `json:"bounceSubType"`
	BouncedRecipients []BouncedRecipient `json:"bouncedRecipients"`
	Timestamp         string             `json:"timestamp"`
}

type ComplainedRecipient struct {
	EmailAddress string `json:"emailAddress"`
}

type Complaint struct {
	ComplainedRecipients  []ComplainedRecipient `json:"complainedRecipients"`
	ComplaintFeedbackType string                `json:"complaintFeedbackType"`
	Timestamp             string                `json:"timestamp"`
}

type MailMetadata struct {
	MessageID   string   `json:"messageId"`
	Source      string   `json:"source"`
	Destination []string `json:"destination"`
}

// SESNotification is a delivery-feedback message from the mail provider.
// Identity notifications carry notificationType; configuration-set event
// destinations carry eventType instead.
type SESNotification struct {
	NotificationType string       `json:"notificationType"`
	EventType        string       `json:"eventType"`
	Bounce           *Bounce      `json:"bounce,omitempty"`
	Complaint        *Complaint   `json:"complaint,omitempty"`
	Mail             MailMetadata `json:"mail"`
}

type FeedbackKind string

const (
	FeedbackHardBounce FeedbackKind = "hard_bounce"
	FeedbackSoftBounce FeedbackKind = "soft_bounce"
	FeedbackComplaint  FeedbackKind = "complaint"
	FeedbackIgnored    FeedbackKind = "ignored"
)

func ParseSESNotification(message []byte) (*SESNotification, error) {
	var n SESNotification
	if err := json.Unmarshal(message, &n); err != nil {
		return nil, fmt.Errorf("decode ses notification: %w", err)
	}
	return &n, nil
}

// DecodeFeedbackPayload accepts either a topic envelope wrapping the
// notification or the bare notification itself.
func DecodeFeedbackPayload(body []byte) (*SESNotification, error) {
	var probe struct {
		Type    string `json:"Type"`
		Message string `json:"Message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode feedback payload: %w", err)
	}
	if probe.Type != "" && probe.Message != "" {
		return ParseSESNotification([]byte(probe.Message))
	}
	return ParseSESNotification(body)
}

func (n *SESNotification) kindName() string {
	if n.NotificationType != "" {
		return n.NotificationType
	}
	return n.EventType
}

// Kind classifies the notification. Permanent bounces are hard, every other
// bounce type is soft.
func (n *SESNotification) Kind() FeedbackKind {
	switch strings.ToLower(n.kindName()) {
	case "bounce":
		if n.Bounce != nil && strings.EqualFold(n.Bounce.BounceType, "Permanent") {
			return FeedbackHardBounce
		}
		return FeedbackSoftBounce
	case "complaint":
		return FeedbackComplaint
	default:
		return FeedbackIgnored
	}
}

// Recipients lists the affected addresses.
func (n *SESNotification) Recipients() []string {
	var out []string
	switch {
	case n.Bounce != nil:
		for _, r := range n.Bounce.BouncedRecipients {
			if r.EmailAddress != "" {
				out = append(out, r.EmailAddress)
			}
		}
	case n.Complaint != nil:
		for _, r := range n.Complaint.ComplainedRecipients {
			if r.EmailAddress != "" {
				out = append(out, r.EmailAddress)
			}
		}
	}
	return out
}

// OrganizerAlert tells a campaign organizer that a recipient was dropped.
type OrganizerAlert struct {
	OrganizerID    string       `json:"organizer_id"`
	CampaignID     string       `json:"campaign_id"`
	CampaignTitle  string       `json:"campaign_title"`
	RecipientEmail string       `json:"recipient_email"`
	Kind           FeedbackKind `json:"kind"`
}
