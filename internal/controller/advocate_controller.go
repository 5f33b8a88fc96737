// internal/controller/advocate_controller.go
package controller

import (
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

const actionGetUser = "get_user"

type AdvocateController struct {
	AdvocateService *service.AdvocateService
	Logger          *zap.Logger
}

// Auth handles POST /auth. The only supported action is get_user.
func (c *AdvocateController) Auth(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	var body struct {
		Action string `json:"action"`
		service.ResolveAdvocateInput
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, log, err)
		return
	}
	if body.Action != actionGetUser {
		writeError(w, log, appErrors.NewValidation("Invalid action"))
		return
	}

	res, err := c.AdvocateService.ResolveOrCreate(r.Context(), body.ResolveAdvocateInput)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
