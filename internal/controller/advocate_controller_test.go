package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/togetherunite-backend/internal/controller"
	"github.com/unclebandit/togetherunite-backend/internal/model"
	"github.com/unclebandit/togetherunite-backend/internal/repository/repotest"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

func newAdvocateController(store *repotest.Store) *controller.AdvocateController {
	return &controller.AdvocateController{
		AdvocateService: &service.AdvocateService{
			Directory: &stubDirectory{users: map[string]*model.IdentityProfile{
				"sub-42": {Username: "sub-42", Enabled: true, UserAttributes: []model.IdentityAttribute{
					{Name: "email", Value: "bo@example.org"},
					{Name: "name", Value: "Bo"},
				}},
			}},
			AdvocateRepo: store.Advocates(),
		},
	}
}

func TestAdvocateController_GetUser(t *testing.T) {
	store := repotest.NewStore()
	ctrl := newAdvocateController(store)

	w := httptest.NewRecorder()
	ctrl.Auth(w, newRequest(http.MethodPost, "/auth", map[string]string{"action": "get_user", "user_id": "sub-42"}, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "sub-42", body["user"].(map[string]any)["Username"])
	assert.Equal(t, "bo@example.org", body["advocate"].(map[string]any)["email"])
	require.NotNil(t, store.Advocate("sub-42"))
}

func TestAdvocateController_Errors(t *testing.T) {
	ctrl := newAdvocateController(repotest.NewStore())

	tests := []struct {
		name   string
		body   map[string]string
		status int
		msg    string
	}{
		{"unknown action", map[string]string{"action": "delete_user", "user_id": "sub-42"}, http.StatusBadRequest, "Invalid action"},
		{"no action", map[string]string{"user_id": "sub-42"}, http.StatusBadRequest, "Invalid action"},
		{"unknown user", map[string]string{"action": "get_user", "user_id": "ghost"}, http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctrl.Auth(w, newRequest(http.MethodPost, "/auth", tt.body, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decodeBody(t, w)["error"])
		})
	}
}
