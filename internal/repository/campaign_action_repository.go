package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/unclebandit/togetherunite-backend/internal/model"
)

// ErrDuplicateAction is returned when an action already exists for the same
// campaign, advocate and calendar day.
var ErrDuplicateAction = errors.New("campaign action already recorded for this day")

const uniqueViolation = "23505"

type CampaignActionRepositoryInterface interface {
	ExistsForDay(ctx context.Context, campaignID, advocateID, day string) (bool, error)
	Reserve(ctx context.Context, a *model.CampaignAction) error
	MarkSent(ctx context.Context, id string, sent bool) error
	RecordPaidSend(ctx context.Context, campaignID, advocateID string, at time.Time) (bool, error)
	LatestByRecipient(ctx context.Context, email string) (*model.CampaignAction, error)
}

type CampaignActionRepository struct {
	DB *sql.DB
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *CampaignActionRepository) ExistsForDay(ctx context.Context, campaignID, advocateID, day string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaign_actions
			WHERE campaign_id = $1 AND advocate_id = $2 AND sent_on = $3
		)`, campaignID, advocateID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check daily action: %w", err)
	}
	return exists, nil
}

// Reserve inserts the action. The unique constraint on
// (campaign_id, advocate_id, sent_on) makes this the point where concurrent
// sends for the same day are serialised; the loser gets ErrDuplicateAction.
func (r *CampaignActionRepository) Reserve(ctx context.Context, a *model.CampaignAction) error {
	query := `
		INSERT INTO campaign_actions (campaign_id, advocate_id, email_sent, sent_at, sent_on, recipient_email, personalized_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, a.CampaignID, a.AdvocateID, a.EmailSent, a.SentAt, a.SentOn,
		a.RecipientEmail, a.PersonalizedMessage).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAction
		}
		return fmt.Errorf("reserve campaign action: %w", err)
	}
	return nil
}

func (r *CampaignActionRepository) MarkSent(ctx context.Context, id string, sent bool) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE campaign_actions SET email_sent = $1 WHERE id = $2`, sent, id); err != nil {
		return fmt.Errorf("mark campaign action: %w", err)
	}
	return nil
}

// RecordPaidSend stores a successful send confirmed by a payment. It is a
// no-op when the day's action already exists and reports whether a row was
// inserted.
func (r *CampaignActionRepository) RecordPaidSend(ctx context.Context, campaignID, advocateID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO campaign_actions (campaign_id, advocate_id, email_sent, sent_at, sent_on)
		VALUES ($1, $2, TRUE, $3, $4)
		ON CONFLICT (campaign_id, advocate_id, sent_on) DO NOTHING`,
		campaignID, advocateID, at, model.CalendarDay(at))
	if err != nil {
		return false, fmt.Errorf("record paid send: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LatestByRecipient finds the most recent action addressed to email, along
// with the owning campaign's organizer. Returns nil when none exists.
func (r *CampaignActionRepository) LatestByRecipient(ctx context.Context, email string) (*model.CampaignAction, error) {
	query := `
		SELECT ca.id, ca.campaign_id, ca.advocate_id, ca.email_sent, ca.sent_at, ca.sent_on::text,
			COALESCE(ca.recipient_email, ''), COALESCE(ca.personalized_message, ''), ca.created_at, c.organizer_id
		FROM campaign_actions ca
		JOIN campaigns c ON c.id = ca.campaign_id
		WHERE lower(ca.recipient_email) = lower($1)
		ORDER BY ca.sent_at DESC NULLS LAST, ca.created_at DESC
		LIMIT 1
	`
	var a model.CampaignAction
	var sentAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.CampaignID, &a.AdvocateID, &a.EmailSent,
		&sentAt, &a.SentOn, &a.RecipientEmail, &a.PersonalizedMessage, &a.CreatedAt, &a.OrganizerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find action by recipient: %w", err)
	}
	if sentAt.Valid {
		t := sentAt.Time
		a.SentAt = &t
	}
	return &a, nil
}

var _ CampaignActionRepositoryInterface = (*CampaignActionRepository)(nil)
