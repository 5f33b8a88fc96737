package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/metrics"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

// OrganizerNotifier tells organizers when a recipient leaves their campaign.
type OrganizerNotifier interface {
	NotifyOrganizer(ctx context.Context, alert model.OrganizerAlert) error
}

type FeedbackService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ActionRepo   repository.CampaignActionRepositoryInterface
	Notifier     OrganizerNotifier
	Logger       *zap.Logger
}

type FeedbackResult struct {
	Kind      model.FeedbackKind `json:"kind"`
	Addresses int                `json:"addresses"`
	Matched   int                `json:"matched"`
	Removed   int                `json:"removed"`
}

// Process applies one delivery notification. Hard bounces and complaints
// remove the address from the campaign that last mailed it and mark that
// action failed. Soft bounces are only logged. Reprocessing a notification
// leaves the same state as processing it once.
func (s *FeedbackService) Process(ctx context.Context, n *model.SESNotification) (*FeedbackResult, error) {
	kind := n.Kind()
	log := logger.OrNop(s.Logger).With(zap.String("kind", string(kind)), zap.String("message_id", n.Mail.MessageID))
	metrics.FeedbackEvents.WithLabelValues(string(kind)).Inc()

	res := &FeedbackResult{Kind: kind}
	if kind == model.FeedbackIgnored {
		log.Debug("notification ignored", zap.String("type", n.NotificationType+n.EventType))
		return res, nil
	}

	for _, addr := range n.Recipients() {
		res.Addresses++
		action, err := s.ActionRepo.LatestByRecipient(ctx, addr)
		if err != nil {
			return res, fmt.Errorf("lookup action for %s: %w", addr, err)
		}
		if action == nil {
			log.Info("no campaign action for address", zap.String("email", addr))
			continue
		}
		res.Matched++

		if kind == model.FeedbackSoftBounce {
			log.Info("soft bounce recorded", zap.String("email", addr), zap.String("campaign_id", action.CampaignID))
			continue
		}

		removed, err := s.prune(ctx, log, action, addr, kind)
		if err != nil {
			return res, err
		}
		if removed {
			res.Removed++
		}
		if action.EmailSent {
			if err := s.ActionRepo.MarkSent(ctx, action.ID, false); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func (s *FeedbackService) prune(ctx context.Context, log *zap.Logger, action *model.CampaignAction, addr string, kind model.FeedbackKind) (bool, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, action.CampaignID)
	if err != nil {
		return false, err
	}
	if campaign == nil || !campaign.RecipientList.Contains(addr) {
		return false, nil
	}

	if err := s.CampaignRepo.UpdateRecipientList(ctx, campaign.ID, campaign.RecipientList.Without(addr)); err != nil {
		return false, err
	}
	log.Info("recipient removed from campaign", zap.String("email", addr), zap.String("campaign_id", campaign.ID))

	alert := model.OrganizerAlert{
		OrganizerID:    campaign.OrganizerID,
		CampaignID:     campaign.ID,
		CampaignTitle:  campaign.Title,
		RecipientEmail: addr,
		Kind:           kind,
	}
	if s.Notifier == nil {
		log.Info("notifying organizer", zap.String("organizer_id", alert.OrganizerID))
		return true, nil
	}
	if err := s.Notifier.NotifyOrganizer(ctx, alert); err != nil {
		// The list is already pruned; a lost alert must not undo that.
		log.Warn("organizer alert failed", zap.String("organizer_id", alert.OrganizerID), zap.Error(err))
	}
	return true, nil
}

// HandlePayload decodes a queued or pushed feedback message, either a topic
// envelope or a bare notification, and processes it.
func (s *FeedbackService) HandlePayload(ctx context.Context, body []byte) (*FeedbackResult, error) {
	n, err := model.DecodeFeedbackPayload(body)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, n)
}
