package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository/repotest"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []model.OutboundEmail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg model.OutboundEmail) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "ses-" + uuid.NewString(), nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeNotifier struct {
	alerts []model.OrganizerAlert
	err    error
}

func (n *fakeNotifier) NotifyOrganizer(_ context.Context, a model.OrganizerAlert) error {
	n.alerts = append(n.alerts, a)
	return n.err
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time         { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seedCampaign(store *repotest.Store, status string, recipients ...model.Recipient) *model.Campaign {
	c := &model.Campaign{
		ID:            uuid.NewString(),
		OrganizerID:   uuid.NewString(),
		Title:         "Save Elm Park",
		EmailSubject:  "Protect Elm Park",
		EmailBody:     "Please vote against the rezoning.",
		RecipientList: model.RecipientList(recipients),
		CampaignType:  model.CampaignTypePayPerSend,
		Status:        status,
		MaxRecipients: model.MaxRecipients,
		CreatedAt:     time.Now(),
	}
	store.PutCampaign(c)
	return c
}
