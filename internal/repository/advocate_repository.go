package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/unclebandit/togetherunite-backend/internal/model"
)

// AdvocateRepositoryInterface defines methods used by services
type AdvocateRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID string) (*model.Advocate, error)
	Create(ctx context.Context, a *model.Advocate) error
	MarkValidated(ctx context.Context, userID string, expiresAt time.Time) (int64, error)
}

type AdvocateRepository struct {
	DB *sql.DB
}

const advocateColumns = `id, user_id, email, COALESCE(name, ''), validation_fee_paid, validation_expires_at, created_at`

func scanAdvocate(row rowScanner) (*model.Advocate, error) {
	var a model.Advocate
	var expires sql.NullTime
	if err := row.Scan(&a.ID, &a.UserID, &a.Email, &a.Name, &a.ValidationFeePaid, &expires, &a.CreatedAt); err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		a.ValidationExpiresAt = &t
	}
	return &a, nil
}

// GetByUserID returns nil when no advocate is linked to the identity.
func (r *AdvocateRepository) GetByUserID(ctx context.Context, userID string) (*model.Advocate, error) {
	query := `SELECT ` + advocateColumns + ` FROM advocates WHERE user_id = $1`
	a, err := scanAdvocate(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get advocate: %w", err)
	}
	return a, nil
}

// Create inserts the advocate. When a concurrent request already created a
// row for the same user, that row is loaded into a instead.
func (r *AdvocateRepository) Create(ctx context.Context, a *model.Advocate) error {
	query := `
		INSERT INTO advocates (user_id, email, name)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + advocateColumns
	created, err := scanAdvocate(r.DB.QueryRowContext(ctx, query, a.UserID, a.Email, a.Name))
	if err != nil {
		return fmt.Errorf("create advocate: %w", err)
	}
	*a = *created
	return nil
}

// MarkValidated records a paid validation fee and returns the affected rows.
func (r *AdvocateRepository) MarkValidated(ctx context.Context, userID string, expiresAt time.Time) (int64, error) {
	query := `UPDATE advocates SET validation_fee_paid = TRUE, validation_expires_at = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, expiresAt, userID)
	if err != nil {
		return 0, fmt.Errorf("mark advocate validated: %w", err)
	}
	return res.RowsAffected()
}

var _ AdvocateRepositoryInterface = (*AdvocateRepository)(nil)
