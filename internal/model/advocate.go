package model

import "time"

// Advocate is the local record for an identity-provider user.
type Advocate struct {
	ID                  string     `db:"id" json:"id"`
	UserID              string     `db:"user_id" json:"user_id"`
	Email               string     `db:"email" json:"email"`
	Name                string     `db:"name" json:"name"`
	ValidationFeePaid   bool       `db:"validation_fee_paid" json:"validation_fee_paid"`
	ValidationExpiresAt *time.Time `db:"validation_expires_at" json:"validation_expires_at"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

type IdentityAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// IdentityProfile mirrors the user record held by the identity provider.
type IdentityProfile struct {
	Username       string              `json:"Username"`
	UserAttributes []IdentityAttribute `json:"UserAttributes"`
	Enabled        bool                `json:"Enabled"`
	UserStatus     string              `json:"UserStatus"`
}

// Attribute returns the named attribute value, or "" when absent.
func (p *IdentityProfile) Attribute(name string) string {
	if p == nil {
		return ""
	}
	for _, a := range p.UserAttributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
