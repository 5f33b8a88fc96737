package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository/repotest"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

func bounce(kind, addr string) *model.SESNotification {
	return &model.SESNotification{
		NotificationType: "Bounce",
		Bounce: &model.Bounce{
			BounceType:        kind,
			BouncedRecipients: []model.BouncedRecipient{{EmailAddress: addr}},
		},
	}
}

func seedSentAction(t *testing.T, store *repotest.Store, c *model.Campaign, recipient string, at time.Time) model.CampaignAction {
	t.Helper()
	a := &model.CampaignAction{
		CampaignID:     c.ID,
		AdvocateID:     uuid.NewString(),
		EmailSent:      true,
		SentAt:         &at,
		SentOn:         model.CalendarDay(at),
		RecipientEmail: recipient,
	}
	require.NoError(t, store.Actions().Reserve(context.Background(), a))
	return *a
}

func TestFeedbackService_HardBounceRemovesRecipient(t *testing.T) {
	store := repotest.NewStore()
	notifier := &fakeNotifier{}
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions(), Notifier: notifier}
	ctx := context.Background()

	c := seedCampaign(store, model.CampaignStatusActive,
		model.Recipient{Name: "Rep", Email: "rep@gov.example"},
		model.Recipient{Name: "Other", Email: "other@gov.example"},
	)
	action := seedSentAction(t, store, c, "rep@gov.example", time.Now())

	res, err := svc.Process(ctx, bounce("Permanent", "rep@gov.example"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)

	stored := store.Campaign(c.ID)
	assert.False(t, stored.RecipientList.Contains("rep@gov.example"))
	assert.True(t, stored.RecipientList.Contains("other@gov.example"))
	assert.False(t, store.ActionsFor(c.ID)[0].EmailSent)
	assert.Equal(t, action.ID, store.ActionsFor(c.ID)[0].ID)

	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, c.OrganizerID, notifier.alerts[0].OrganizerID)
	assert.Equal(t, model.FeedbackHardBounce, notifier.alerts[0].Kind)

	// Replaying the notification leaves the same state.
	res, err = svc.Process(ctx, bounce("Permanent", "rep@gov.example"))
	require.NoError(t, err)
	assert.Zero(t, res.Removed)
	assert.Equal(t, stored.RecipientList, store.Campaign(c.ID).RecipientList)
	assert.Len(t, notifier.alerts, 1)
}

func TestFeedbackService_RemovesEveryDuplicateEntry(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}

	c := seedCampaign(store, model.CampaignStatusActive,
		model.Recipient{Email: "rep@gov.example"},
		model.Recipient{Email: "REP@gov.example"},
		model.Recipient{Email: "keep@gov.example"},
	)
	seedSentAction(t, store, c, "rep@gov.example", time.Now())

	_, err := svc.Process(context.Background(), bounce("Permanent", "rep@gov.example"))
	require.NoError(t, err)
	assert.Equal(t, model.RecipientList{{Email: "keep@gov.example"}}, store.Campaign(c.ID).RecipientList)
}

func TestFeedbackService_ComplaintBehavesLikeHardBounce(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions(), Notifier: &fakeNotifier{err: errors.New("sns down")}}

	c := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})
	seedSentAction(t, store, c, "rep@gov.example", time.Now())

	_, err := svc.Process(context.Background(), &model.SESNotification{
		NotificationType: "Complaint",
		Complaint:        &model.Complaint{ComplainedRecipients: []model.ComplainedRecipient{{EmailAddress: "rep@gov.example"}}},
	})
	require.NoError(t, err, "a failed organizer alert does not fail processing")
	assert.Empty(t, store.Campaign(c.ID).RecipientList)
	assert.False(t, store.ActionsFor(c.ID)[0].EmailSent)
}

func TestFeedbackService_SoftBounceIsInformational(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}

	c := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})
	seedSentAction(t, store, c, "rep@gov.example", time.Now())

	res, err := svc.Process(context.Background(), bounce("Transient", "rep@gov.example"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
	assert.True(t, store.Campaign(c.ID).RecipientList.Contains("rep@gov.example"))
	assert.True(t, store.ActionsFor(c.ID)[0].EmailSent)
}

func TestFeedbackService_OnlyLatestCampaignIsAffected(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}

	older := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})
	newer := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})
	seedSentAction(t, store, older, "rep@gov.example", time.Now().Add(-48*time.Hour))
	seedSentAction(t, store, newer, "rep@gov.example", time.Now())

	_, err := svc.Process(context.Background(), bounce("Permanent", "rep@gov.example"))
	require.NoError(t, err)
	assert.True(t, store.Campaign(older.ID).RecipientList.Contains("rep@gov.example"))
	assert.False(t, store.Campaign(newer.ID).RecipientList.Contains("rep@gov.example"))
}

func TestFeedbackService_UnknownAddressIsNoop(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}
	c := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})

	res, err := svc.Process(context.Background(), bounce("Permanent", "stranger@gov.example"))
	require.NoError(t, err)
	assert.Zero(t, res.Matched)
	assert.Len(t, store.Campaign(c.ID).RecipientList, 1)

	res, err = svc.Process(context.Background(), &model.SESNotification{NotificationType: "Delivery"})
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackIgnored, res.Kind)
}

func TestFeedbackService_StoreErrorPropagates(t *testing.T) {
	store := repotest.NewStore()
	store.Err = errors.New("connection reset")
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}

	_, err := svc.Process(context.Background(), bounce("Permanent", "rep@gov.example"))
	assert.ErrorContains(t, err, "connection reset")
}

func TestFeedbackService_HandlePayload(t *testing.T) {
	store := repotest.NewStore()
	svc := &service.FeedbackService{CampaignRepo: store.Campaigns(), ActionRepo: store.Actions()}
	c := seedCampaign(store, model.CampaignStatusActive, model.Recipient{Email: "rep@gov.example"})
	seedSentAction(t, store, c, "rep@gov.example", time.Now())

	inner := `{"notificationType":"Bounce","bounce":{"bounceType":"Permanent","bouncedRecipients":[{"emailAddress":"rep@gov.example"}]}}`
	envelope, err := json.Marshal(map[string]string{"Type": "Notification", "Message": inner})
	require.NoError(t, err)

	res, err := svc.HandlePayload(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Empty(t, store.Campaign(c.ID).RecipientList)

	_, err = svc.HandlePayload(context.Background(), []byte("not json"))
	assert.Error(t, err)
}
