// internal/model/campaign_action.go
package model

import "time"

// CampaignAction records one outreach attempt by an advocate for a campaign.
type CampaignAction struct {
	ID                  string     `db:"id" json:"id"`
	CampaignID          string     `db:"campaign_id" json:"campaign_id"`
	AdvocateID          string     `db:"advocate_id" json:"advocate_id"`
	EmailSent           bool       `db:"email_sent" json:"email_sent"`
	SentAt              *time.Time `db:"sent_at" json:"sent_at"`
	SentOn              string     `db:"sent_on" json:"sent_on"`
	RecipientEmail      string     `db:"recipient_email" json:"recipient_email"`
	PersonalizedMessage string     `db:"personalized_message" json:"personalized_message"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`

	// OrganizerID is only populated by recipient lookups that join campaigns.
	OrganizerID string `db:"-" json:"-"`
}

// CalendarDay returns the UTC date used for the daily send limit.
func CalendarDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// OutboundEmail is a fully composed message ready for the mail transport.
type OutboundEmail struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	Body      string
	Tags      map[string]string
}
