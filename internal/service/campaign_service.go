// internal/service/campaign_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

const qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	FrontendURL  string
	Logger       *zap.Logger

	// NewID generates campaign ids; defaults to random UUIDs.
	NewID func() string
}

type CreateCampaignInput struct {
	OrganizerID   string              `json:"organizer_id" validate:"required,uuid"`
	Title         string              `json:"title" validate:"required,max=255"`
	EmailSubject  string              `json:"email_subject" validate:"required,max=255"`
	EmailBody     string              `json:"email_body" validate:"required"`
	RecipientList model.RecipientList `json:"recipient_list" validate:"required,max=200,dive"`
	CampaignType  string              `json:"campaign_type" validate:"omitempty,oneof=pay-per-send unlimited"`
	ExpiresAt     *time.Time          `json:"expires_at"`
}

func (s *CampaignService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// ShareLink is the public page advocates open to take part in a campaign.
func (s *CampaignService) ShareLink(id string) string {
	return strings.TrimRight(s.FrontendURL, "/") + "/campaign/" + id
}

// QRCodeURL points at a rendered QR code for link.
func QRCodeURL(link string) string {
	q := url.Values{}
	q.Set("size", "300x300")
	q.Set("data", link)
	return qrCodeEndpoint + "?" + q.Encode()
}

func (s *CampaignService) Create(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.CampaignType == "" {
		in.CampaignType = model.CampaignTypePayPerSend
	}

	id := s.newID()
	link := s.ShareLink(id)
	c := &model.Campaign{
		ID:            id,
		OrganizerID:   in.OrganizerID,
		Title:         in.Title,
		EmailSubject:  in.EmailSubject,
		EmailBody:     in.EmailBody,
		RecipientList: in.RecipientList,
		CampaignType:  in.CampaignType,
		Status:        model.CampaignStatusActive,
		ExpiresAt:     in.ExpiresAt,
		CampaignURL:   link,
		QRCodeURL:     QRCodeURL(link),
		MaxRecipients: model.MaxRecipients,
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.OrNop(s.Logger).Info("campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("organizer_id", c.OrganizerID),
		zap.Int("recipients", len(c.RecipientList)),
	)
	return c, nil
}

// Get returns nil without error when the campaign does not exist.
func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.CampaignRepo.GetByID(ctx, id)
}

func (s *CampaignService) List(ctx context.Context, organizerID string) ([]*model.Campaign, error) {
	if organizerID != "" {
		if _, err := uuid.Parse(organizerID); err != nil {
			return []*model.Campaign{}, nil
		}
	}
	return s.CampaignRepo.List(ctx, organizerID)
}

var campaignPatchFields = map[string]bool{
	"title": true, "email_subject": true, "email_body": true, "recipient_list": true,
	"campaign_type": true, "status": true, "expires_at": true, "max_recipients": true,
	"reactivation_fee_paid": true,
}

// campaignPatch mirrors the updatable columns. Pointer fields tell absent
// keys apart from zero values.
type campaignPatch struct {
	Title               *string              `json:"title" validate:"omitnil,min=1,max=255"`
	EmailSubject        *string              `json:"email_subject" validate:"omitnil,min=1,max=255"`
	EmailBody           *string              `json:"email_body" validate:"omitnil,min=1"`
	RecipientList       *model.RecipientList `json:"recipient_list" validate:"omitnil,max=200,dive"`
	CampaignType        *string              `json:"campaign_type" validate:"omitnil,oneof=pay-per-send unlimited"`
	Status              *string              `json:"status" validate:"omitnil,oneof=active inactive"`
	ExpiresAt           *time.Time           `json:"expires_at"`
	MaxRecipients       *int                 `json:"max_recipients" validate:"omitnil,min=1,max=200"`
	ReactivationFeePaid *bool                `json:"reactivation_fee_paid"`
}

// ParseCampaignUpdate decodes a partial update body. Only the updatable
// columns are accepted; id and created_at are rejected explicitly.
func ParseCampaignUpdate(body []byte) (model.CampaignUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.CampaignUpdate{}, appErrors.NewValidation("Invalid JSON body")
	}
	if _, ok := raw["id"]; ok {
		return model.CampaignUpdate{}, appErrors.NewValidation("Cannot update id or created_at")
	}
	if _, ok := raw["created_at"]; ok {
		return model.CampaignUpdate{}, appErrors.NewValidation("Cannot update id or created_at")
	}
	var unknown []string
	for k := range raw {
		if !campaignPatchFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return model.CampaignUpdate{}, appErrors.NewValidation("Unknown fields: %s", strings.Join(unknown, ", "))
	}
	if len(raw) == 0 {
		return model.CampaignUpdate{}, appErrors.NewValidation("No fields to update")
	}

	var p campaignPatch
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return model.CampaignUpdate{}, appErrors.NewValidation("Invalid field value: %v", err)
	}
	if err := validateStruct(p); err != nil {
		return model.CampaignUpdate{}, err
	}

	u := model.CampaignUpdate{
		Title:               p.Title,
		EmailSubject:        p.EmailSubject,
		EmailBody:           p.EmailBody,
		RecipientList:       p.RecipientList,
		CampaignType:        p.CampaignType,
		Status:              p.Status,
		ExpiresAt:           p.ExpiresAt,
		MaxRecipients:       p.MaxRecipients,
		ReactivationFeePaid: p.ReactivationFeePaid,
	}
	if v, ok := raw["expires_at"]; ok && string(bytes.TrimSpace(v)) == "null" {
		u.ClearExpiresAt = true
	}
	if v, ok := raw["recipient_list"]; ok && string(bytes.TrimSpace(v)) == "null" {
		return model.CampaignUpdate{}, appErrors.NewValidation("recipient_list cannot be null")
	}
	return u, nil
}

func (s *CampaignService) Update(ctx context.Context, id string, u model.CampaignUpdate) (*model.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	if u.IsEmpty() {
		return nil, appErrors.NewValidation("No fields to update")
	}
	if u.RecipientList != nil && len(*u.RecipientList) > model.MaxRecipients {
		return nil, appErrors.NewValidation("Recipient list cannot exceed %d emails", model.MaxRecipients)
	}

	c, err := s.CampaignRepo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

// Delete removes the campaign and its actions. Deleting a missing campaign
// is not an error.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.NewValidation("Campaign ID required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	n, err := s.CampaignRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	logger.OrNop(s.Logger).Info("campaign deleted", zap.String("campaign_id", id), zap.Int64("rows", n))
	return nil
}

// Stats reports outreach totals for one campaign.
func (s *CampaignService) Stats(ctx context.Context, id string) (*model.CampaignStats, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	stats, err := s.CampaignRepo.ActionStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaign %s stats: %w", id, err)
	}
	stats.Status = c.Status
	stats.RecipientCount = len(c.RecipientList)
	return stats, nil
}
