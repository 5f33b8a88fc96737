package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/metrics"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

// Mailer hands a composed message to the mail provider and returns its id.
type Mailer interface {
	Send(ctx context.Context, msg model.OutboundEmail) (string, error)
}

type OutreachService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ActionRepo   repository.CampaignActionRepositoryInterface
	Mailer       Mailer
	Logger       *zap.Logger

	// Now is the clock used for the daily limit; defaults to time.Now.
	Now func() time.Time
}

type SendOutreachInput struct {
	CampaignID          string `json:"campaign_id" validate:"required,uuid"`
	AdvocateID          string `json:"advocate_id" validate:"required,uuid"`
	RecipientEmail      string `json:"recipient_email" validate:"required,email"`
	RecipientName       string `json:"recipient_name"`
	PersonalizedMessage string `json:"personalized_message"`
	AdvocateName        string `json:"advocate_name" validate:"required"`
	AdvocateEmail       string `json:"advocate_email" validate:"omitempty,email"`
	EmailSubject        string `json:"email_subject" validate:"required"`
	EmailBody           string `json:"email_body" validate:"required"`
	SendMethod          string `json:"send_method" validate:"omitempty,oneof=smtp oauth"`
}

type SendOutreachResult struct {
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
	ActionID  string    `json:"action_id"`
	MessageID string    `json:"message_id,omitempty"`
}

func (s *OutreachService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Send delivers one outreach email on behalf of an advocate. At most one
// send per campaign, advocate and UTC calendar day is allowed; the day's
// action row is reserved before the provider is called, so two concurrent
// requests cannot both send.
func (s *OutreachService) Send(ctx context.Context, in SendOutreachInput) (*SendOutreachResult, error) {
	log := logger.OrNop(s.Logger).With(
		zap.String("campaign_id", in.CampaignID),
		zap.String("advocate_id", in.AdvocateID),
	)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now()
	day := model.CalendarDay(now)

	exists, err := s.ActionRepo.ExistsForDay(ctx, in.CampaignID, in.AdvocateID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.OutreachSends.WithLabelValues("rate_limited").Inc()
		return nil, &appErrors.RateLimitError{CampaignID: in.CampaignID, AdvocateID: in.AdvocateID}
	}

	campaign, err := s.CampaignRepo.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, appErrors.NewCampaignNotFound(in.CampaignID)
	}
	if !campaign.IsActive() {
		return nil, &appErrors.CampaignInactiveError{CampaignID: in.CampaignID}
	}

	if in.SendMethod == "oauth" {
		log.Info("oauth send requested, delivering through the mail provider instead")
	}

	bodyText := in.EmailBody
	if strings.TrimSpace(in.PersonalizedMessage) != "" {
		bodyText = in.PersonalizedMessage
	}
	body := ComposeOutreachBody(bodyText, in.RecipientName, in.AdvocateName)

	action := &model.CampaignAction{
		CampaignID:          in.CampaignID,
		AdvocateID:          in.AdvocateID,
		SentAt:              &now,
		SentOn:              day,
		RecipientEmail:      in.RecipientEmail,
		PersonalizedMessage: bodyText,
	}
	if err := s.ActionRepo.Reserve(ctx, action); err != nil {
		if errors.Is(err, repository.ErrDuplicateAction) {
			metrics.OutreachSends.WithLabelValues("rate_limited").Inc()
			return nil, &appErrors.RateLimitError{CampaignID: in.CampaignID, AdvocateID: in.AdvocateID}
		}
		return nil, err
	}

	messageID, err := s.Mailer.Send(ctx, model.OutboundEmail{
		FromName:  in.AdvocateName,
		FromEmail: in.AdvocateEmail,
		To:        in.RecipientEmail,
		Subject:   in.EmailSubject,
		Body:      body,
		Tags: map[string]string{
			"campaign_id": in.CampaignID,
			"advocate_id": in.AdvocateID,
			"action_id":   action.ID,
		},
	})
	if err != nil {
		metrics.OutreachSends.WithLabelValues("failed").Inc()
		log.Error("outreach send failed", zap.String("action_id", action.ID), zap.Error(err))
		return nil, &appErrors.DeliveryFailedError{Cause: err}
	}

	if err := s.ActionRepo.MarkSent(ctx, action.ID, true); err != nil {
		// The message is already out; report success and leave the row for reconciliation.
		log.Error("failed to mark action sent", zap.String("action_id", action.ID), zap.Error(err))
	}
	metrics.OutreachSends.WithLabelValues("sent").Inc()
	log.Info("outreach email sent", zap.String("action_id", action.ID), zap.String("message_id", messageID))

	return &SendOutreachResult{
		Message:   "Email sent successfully",
		SentAt:    now,
		ActionID:  action.ID,
		MessageID: messageID,
	}, nil
}
