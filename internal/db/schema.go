package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS advocates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR(255) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255),
		validation_fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
		validation_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id UUID PRIMARY KEY,
		organizer_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		email_subject VARCHAR(255) NOT NULL,
		email_body TEXT NOT NULL,
		recipient_list JSONB NOT NULL DEFAULT '[]'::jsonb,
		campaign_type VARCHAR(50) NOT NULL DEFAULT 'pay-per-send',
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ,
		qr_code_url TEXT,
		campaign_url TEXT,
		max_recipients INTEGER NOT NULL DEFAULT 200,
		reactivation_fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT campaigns_recipient_list_size CHECK (
			jsonb_typeof(recipient_list) = 'array' AND jsonb_array_length(recipient_list) <= 200
		),
		CONSTRAINT campaigns_type_check CHECK (campaign_type IN ('pay-per-send', 'unlimited')),
		CONSTRAINT campaigns_status_check CHECK (status IN ('active', 'inactive'))
	)`,
	`CREATE INDEX IF NOT EXISTS campaigns_organizer_id_idx ON campaigns (organizer_id)`,
	`CREATE TABLE IF NOT EXISTS campaign_actions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		campaign_id UUID NOT NULL REFERENCES campaigns (id) ON DELETE CASCADE,
		advocate_id UUID NOT NULL REFERENCES advocates (id),
		email_sent BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at TIMESTAMPTZ,
		sent_on DATE NOT NULL,
		recipient_email VARCHAR(255),
		personalized_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT campaign_actions_daily_limit UNIQUE (campaign_id, advocate_id, sent_on)
	)`,
	`CREATE INDEX IF NOT EXISTS campaign_actions_recipient_idx ON campaign_actions (lower(recipient_email))`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, conn *sql.DB) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
