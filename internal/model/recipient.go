package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Recipient struct {
	Name  string `json:"name" validate:"omitempty,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// RecipientList is stored as a JSONB array of recipients.
type RecipientList []Recipient

func (l RecipientList) Value() (driver.Value, error) {
	if l == nil {
		l = RecipientList{}
	}
	b, err := json.Marshal([]Recipient(l))
	if err != nil {
		return nil, fmt.Errorf("encode recipient list: %w", err)
	}
	return b, nil
}

func (l *RecipientList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = RecipientList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan recipient list: unsupported type %T", src)
	}
	list, err := ParseRecipientList(raw)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

// ParseRecipientList decodes a stored recipient list. Older rows may hold the
// array double-encoded as a JSON string; both forms are accepted.
func ParseRecipientList(raw []byte) (RecipientList, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return RecipientList{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode recipient list: %w", err)
		}
		return ParseRecipientList([]byte(inner))
	}
	var list RecipientList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode recipient list: %w", err)
	}
	if list == nil {
		list = RecipientList{}
	}
	return list, nil
}

// Contains reports whether email is on the list, ignoring case.
func (l RecipientList) Contains(email string) bool {
	email = strings.TrimSpace(email)
	for _, r := range l {
		if strings.EqualFold(strings.TrimSpace(r.Email), email) {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every entry for email removed.
func (l RecipientList) Without(email string) RecipientList {
	email = strings.TrimSpace(email)
	out := make(RecipientList, 0, len(l))
	for _, r := range l {
		if strings.EqualFold(strings.TrimSpace(r.Email), email) {
			continue
		}
		out = append(out, r)
	}
	return out
}
