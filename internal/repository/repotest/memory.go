// Package repotest provides in-memory repositories for tests. They honour the
// same constraints as the PostgreSQL schema: one action per campaign,
// advocate and day, unique advocate user ids, and cascading campaign deletes.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
)

// Store holds every table. Use the accessor methods to get typed repositories.
type Store struct {
	mu        sync.Mutex
	advocates map[string]*model.Advocate // by user id
	campaigns map[string]*model.Campaign
	actions   map[string]*model.CampaignAction

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		advocates: map[string]*model.Advocate{},
		campaigns: map[string]*model.Campaign{},
		actions:   map[string]*model.CampaignAction{},
	}
}

func (s *Store) Advocates() *AdvocateRepo { return &AdvocateRepo{s} }
func (s *Store) Campaigns() *CampaignRepo { return &CampaignRepo{s} }
func (s *Store) Actions() *ActionRepo     { return &ActionRepo{s} }

func (s *Store) PutCampaign(c *model.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = clone(c)
}

func (s *Store) PutAdvocate(a *model.Advocate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.advocates[a.UserID] = &cp
}

func (s *Store) PutAction(a *model.CampaignAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.actions[a.ID] = &cp
}

// Campaign returns a copy of the stored campaign.
func (s *Store) Campaign(id string) *model.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.campaigns[id]; ok {
		return clone(c)
	}
	return nil
}

func (s *Store) Advocate(userID string) *model.Advocate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.advocates[userID]; ok {
		cp := *a
		return &cp
	}
	return nil
}

// ActionsFor returns copies of the campaign's actions ordered by creation.
func (s *Store) ActionsFor(campaignID string) []model.CampaignAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CampaignAction
	for _, a := range s.actions {
		if a.CampaignID == campaignID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func clone(c *model.Campaign) *model.Campaign {
	cp := *c
	cp.RecipientList = append(model.RecipientList{}, c.RecipientList...)
	return &cp
}

// ====================== Advocates ======================

type AdvocateRepo struct{ s *Store }

func (r *AdvocateRepo) GetByUserID(_ context.Context, userID string) (*model.Advocate, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.s.Advocate(userID), nil
}

func (r *AdvocateRepo) Create(_ context.Context, a *model.Advocate) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.advocates[a.UserID]; ok {
		*a = *existing
		return nil
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	r.s.advocates[a.UserID] = &cp
	return nil
}

func (r *AdvocateRepo) MarkValidated(_ context.Context, userID string, expiresAt time.Time) (int64, error) {
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advocates[userID]
	if !ok {
		return 0, nil
	}
	a.ValidationFeePaid = true
	a.ValidationExpiresAt = &expiresAt
	return 1, nil
}

// ====================== Campaigns ======================

type CampaignRepo struct{ s *Store }

func (r *CampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	if len(c.RecipientList) > model.MaxRecipients {
		return errors.New("campaigns_recipient_list_size check violated")
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.PutCampaign(c)
	return nil
}

func (r *CampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.s.Campaign(id), nil
}

func (r *CampaignRepo) List(_ context.Context, organizerID string) ([]*model.Campaign, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range r.s.campaigns {
		if organizerID == "" || c.OrganizerID == organizerID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CampaignRepo) Update(_ context.Context, id string, u model.CampaignUpdate) (*model.Campaign, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, nil
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.EmailSubject != nil {
		c.EmailSubject = *u.EmailSubject
	}
	if u.EmailBody != nil {
		c.EmailBody = *u.EmailBody
	}
	if u.RecipientList != nil {
		if len(*u.RecipientList) > model.MaxRecipients {
			return nil, errors.New("campaigns_recipient_list_size check violated")
		}
		c.RecipientList = append(model.RecipientList{}, (*u.RecipientList)...)
	}
	if u.CampaignType != nil {
		c.CampaignType = *u.CampaignType
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		c.ExpiresAt = &t
	} else if u.ClearExpiresAt {
		c.ExpiresAt = nil
	}
	if u.MaxRecipients != nil {
		c.MaxRecipients = *u.MaxRecipients
	}
	if u.ReactivationFeePaid != nil {
		c.ReactivationFeePaid = *u.ReactivationFeePaid
	}
	c.UpdatedAt = time.Now()
	return clone(c), nil
}

func (r *CampaignRepo) Delete(_ context.Context, id string) (int64, error) {
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campaigns[id]; !ok {
		return 0, nil
	}
	delete(r.s.campaigns, id)
	for aid, a := range r.s.actions {
		if a.CampaignID == id {
			delete(r.s.actions, aid)
		}
	}
	return 1, nil
}

func (r *CampaignRepo) UpdateStatus(_ context.Context, id, status string) (int64, error) {
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return 0, nil
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return 1, nil
}

func (r *CampaignRepo) Reactivate(_ context.Context, id string) (int64, error) {
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return 0, nil
	}
	c.Status = model.CampaignStatusActive
	c.ReactivationFeePaid = true
	c.UpdatedAt = time.Now()
	return 1, nil
}

func (r *CampaignRepo) UpdateRecipientList(_ context.Context, id string, list model.RecipientList) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok {
		c.RecipientList = append(model.RecipientList{}, list...)
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *CampaignRepo) ActionStats(_ context.Context, id string) (*model.CampaignStats, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	stats := &model.CampaignStats{CampaignID: id}
	for _, a := range r.s.ActionsFor(id) {
		stats.TotalActions++
		if a.EmailSent {
			stats.EmailsSent++
		} else {
			stats.EmailsFailed++
		}
	}
	return stats, nil
}

// ====================== Actions ======================

type ActionRepo struct{ s *Store }

func (r *ActionRepo) existsLocked(campaignID, advocateID, day string) bool {
	for _, a := range r.s.actions {
		if a.CampaignID == campaignID && a.AdvocateID == advocateID && a.SentOn == day {
			return true
		}
	}
	return false
}

func (r *ActionRepo) ExistsForDay(_ context.Context, campaignID, advocateID, day string) (bool, error) {
	if r.s.Err != nil {
		return false, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.existsLocked(campaignID, advocateID, day), nil
}

func (r *ActionRepo) Reserve(_ context.Context, a *model.CampaignAction) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campaigns[a.CampaignID]; !ok {
		return errors.New("campaign_actions_campaign_id_fkey violated")
	}
	if r.existsLocked(a.CampaignID, a.AdvocateID, a.SentOn) {
		return repository.ErrDuplicateAction
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	r.s.actions[a.ID] = &cp
	return nil
}

func (r *ActionRepo) MarkSent(_ context.Context, id string, sent bool) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.actions[id]; ok {
		a.EmailSent = sent
	}
	return nil
}

func (r *ActionRepo) RecordPaidSend(_ context.Context, campaignID, advocateID string, at time.Time) (bool, error) {
	if r.s.Err != nil {
		return false, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := model.CalendarDay(at)
	if r.existsLocked(campaignID, advocateID, day) {
		return false, nil
	}
	a := &model.CampaignAction{ID: uuid.NewString(), CampaignID: campaignID, AdvocateID: advocateID,
		EmailSent: true, SentAt: &at, SentOn: day, CreatedAt: time.Now()}
	r.s.actions[a.ID] = a
	return true, nil
}

func (r *ActionRepo) LatestByRecipient(_ context.Context, email string) (*model.CampaignAction, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *model.CampaignAction
	for _, a := range r.s.actions {
		if !strings.EqualFold(a.RecipientEmail, email) {
			continue
		}
		if latest == nil || actionTime(a).After(actionTime(latest)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	if c, ok := r.s.campaigns[cp.CampaignID]; ok {
		cp.OrganizerID = c.OrganizerID
	}
	return &cp, nil
}

func actionTime(a *model.CampaignAction) time.Time {
	if a.SentAt != nil {
		return *a.SentAt
	}
	return a.CreatedAt
}

var (
	_ repository.AdvocateRepositoryInterface       = (*AdvocateRepo)(nil)
	_ repository.CampaignRepositoryInterface       = (*CampaignRepo)(nil)
	_ repository.CampaignActionRepositoryInterface = (*ActionRepo)(nil)
)
