// internal/model/campaign.go
package model

import "time"

const (
	CampaignTypePayPerSend = "pay-per-send"
	CampaignTypeUnlimited  = "unlimited"

	CampaignStatusActive   = "active"
	CampaignStatusInactive = "inactive"

	// MaxRecipients caps the number of recipients a campaign may target.
	MaxRecipients = 200
)

type Campaign struct {
	ID                  string        `db:"id" json:"id"`
	OrganizerID         string        `db:"organizer_id" json:"organizer_id"`
	Title               string        `db:"title" json:"title"`
	EmailSubject        string        `db:"email_subject" json:"email_subject"`
	EmailBody           string        `db:"email_body" json:"email_body"`
	RecipientList       RecipientList `db:"recipient_list" json:"recipient_list"`
	CampaignType        string        `db:"campaign_type" json:"campaign_type"`
	Status              string        `db:"status" json:"status"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
	ExpiresAt           *time.Time    `db:"expires_at" json:"expires_at"`
	CampaignURL         string        `db:"campaign_url" json:"campaign_url"`
	QRCodeURL           string        `db:"qr_code_url" json:"qr_code_url"`
	MaxRecipients       int           `db:"max_recipients" json:"max_recipients"`
	ReactivationFeePaid bool          `db:"reactivation_fee_paid" json:"reactivation_fee_paid"`
}

// IsActive reports whether the campaign currently accepts outreach.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// CampaignUpdate is a partial update. Nil fields are left untouched.
type CampaignUpdate struct {
	Title               *string
	EmailSubject        *string
	EmailBody           *string
	RecipientList       *RecipientList
	CampaignType        *string
	Status              *string
	ExpiresAt           *time.Time
	ClearExpiresAt      bool
	MaxRecipients       *int
	ReactivationFeePaid *bool
}

func (u CampaignUpdate) IsEmpty() bool {
	return u.Title == nil && u.EmailSubject == nil && u.EmailBody == nil &&
		u.RecipientList == nil && u.CampaignType == nil && u.Status == nil &&
		u.ExpiresAt == nil && !u.ClearExpiresAt && u.MaxRecipients == nil &&
		u.ReactivationFeePaid == nil
}

// CampaignStats aggregates outreach attempts recorded for a campaign.
type CampaignStats struct {
	CampaignID     string `json:"campaign_id"`
	Status         string `json:"status"`
	RecipientCount int    `json:"recipient_count"`
	TotalActions   int    `json:"total_actions"`
	EmailsSent     int    `json:"emails_sent"`
	EmailsFailed   int    `json:"emails_failed"`
}
