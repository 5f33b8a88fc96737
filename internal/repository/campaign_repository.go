package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/unclebandit/togetherunite-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, organizerID string) ([]*model.Campaign, error)
	Update(ctx context.Context, id string, u model.CampaignUpdate) (*model.Campaign, error)
	Delete(ctx context.Context, id string) (int64, error)

	// Status and recipients
	UpdateStatus(ctx context.Context, id, status string) (int64, error)
	Reactivate(ctx context.Context, id string) (int64, error)
	UpdateRecipientList(ctx context.Context, id string, list model.RecipientList) error

	ActionStats(ctx context.Context, id string) (*model.CampaignStats, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const campaignColumns = `id, organizer_id, title, email_subject, email_body, recipient_list, campaign_type, status,
	created_at, updated_at, expires_at, COALESCE(campaign_url, ''), COALESCE(qr_code_url, ''), max_recipients, reactivation_fee_paid`

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var expires sql.NullTime
	err := row.Scan(&c.ID, &c.OrganizerID, &c.Title, &c.EmailSubject, &c.EmailBody, &c.RecipientList,
		&c.CampaignType, &c.Status, &c.CreatedAt, &c.UpdatedAt, &expires, &c.CampaignURL, &c.QRCodeURL,
		&c.MaxRecipients, &c.ReactivationFeePaid)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
		INSERT INTO campaigns (id, organizer_id, title, email_subject, email_body, recipient_list,
			campaign_type, status, expires_at, campaign_url, qr_code_url, max_recipients)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.OrganizerID, c.Title, c.EmailSubject, c.EmailBody,
		c.RecipientList, c.CampaignType, c.Status, c.ExpiresAt, c.CampaignURL, c.QRCodeURL, c.MaxRecipients,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// GetByID returns nil when the campaign does not exist.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, organizerID string) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []any{}
	argPos := 1

	if organizerID != "" {
		query += fmt.Sprintf(" AND organizer_id = $%d", argPos)
		args = append(args, organizerID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Update applies the non-nil fields of u and returns the stored campaign,
// or nil when no campaign has that id.
func (r *CampaignRepository) Update(ctx context.Context, id string, u model.CampaignUpdate) (*model.Campaign, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.EmailSubject != nil {
		add("email_subject", *u.EmailSubject)
	}
	if u.EmailBody != nil {
		add("email_body", *u.EmailBody)
	}
	if u.RecipientList != nil {
		add("recipient_list", *u.RecipientList)
	}
	if u.CampaignType != nil {
		add("campaign_type", *u.CampaignType)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.ExpiresAt != nil {
		add("expires_at", *u.ExpiresAt)
	} else if u.ClearExpiresAt {
		sets = append(sets, "expires_at = NULL")
	}
	if u.MaxRecipients != nil {
		add("max_recipients", *u.MaxRecipients)
	}
	if u.ReactivationFeePaid != nil {
		add("reactivation_fee_paid", *u.ReactivationFeePaid)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE campaigns SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), campaignColumns)
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return c, nil
}

// Delete removes the campaign; its actions go with it through the cascade.
func (r *CampaignRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete campaign: %w", err)
	}
	return res.RowsAffected()
}

// ====================== Status and recipients ======================

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("update campaign status: %w", err)
	}
	return res.RowsAffected()
}

func (r *CampaignRepository) Reactivate(ctx context.Context, id string) (int64, error) {
	query := `UPDATE campaigns SET status = 'active', reactivation_fee_paid = TRUE, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("reactivate campaign: %w", err)
	}
	return res.RowsAffected()
}

func (r *CampaignRepository) UpdateRecipientList(ctx context.Context, id string, list model.RecipientList) error {
	query := `UPDATE campaigns SET recipient_list = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.DB.ExecContext(ctx, query, list, id); err != nil {
		return fmt.Errorf("update recipient list: %w", err)
	}
	return nil
}

func (r *CampaignRepository) ActionStats(ctx context.Context, id string) (*model.CampaignStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE email_sent),
			COUNT(*) FILTER (WHERE NOT email_sent)
		FROM campaign_actions WHERE campaign_id = $1
	`
	stats := &model.CampaignStats{CampaignID: id}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&stats.TotalActions, &stats.EmailsSent, &stats.EmailsFailed)
	if err != nil {
		return nil, fmt.Errorf("campaign stats: %w", err)
	}
	return stats, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
