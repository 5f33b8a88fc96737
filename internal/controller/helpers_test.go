package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository/repotest"
)

type stubMailer struct {
	err  error
	sent []model.OutboundEmail
}

func (m *stubMailer) Send(_ context.Context, msg model.OutboundEmail) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "ses-" + uuid.NewString(), nil
}

type stubDirectory struct {
	users map[string]*model.IdentityProfile
}

func (d *stubDirectory) GetUser(_ context.Context, userID string) (*model.IdentityProfile, error) {
	if u, ok := d.users[userID]; ok {
		return u, nil
	}
	return nil, &appErrors.IdentityNotFoundError{UserID: userID}
}

type stubConfirmer struct {
	topicARN, token string
}

func (c *stubConfirmer) ConfirmSubscription(_ context.Context, topicARN, token string) error {
	c.topicARN, c.token = topicARN, token
	return nil
}

// newRequest builds a request carrying the given chi URL params.
func newRequest(method, target string, body any, params map[string]string) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	case []byte:
		buf.Write(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func seedCampaign(store *repotest.Store, status string, recipients ...model.Recipient) *model.Campaign {
	c := &model.Campaign{
		ID:            uuid.NewString(),
		OrganizerID:   uuid.NewString(),
		Title:         "Fund the Library",
		EmailSubject:  "Keep the library open",
		EmailBody:     "Please restore library funding.",
		RecipientList: model.RecipientList(recipients),
		CampaignType:  model.CampaignTypePayPerSend,
		Status:        status,
		MaxRecipients: model.MaxRecipients,
		CreatedAt:     time.Now(),
	}
	store.PutCampaign(c)
	return c
}
