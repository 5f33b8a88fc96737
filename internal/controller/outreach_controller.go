// internal/controller/outreach_controller.go
package controller

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

type OutreachController struct {
	OutreachService *service.OutreachService
	Logger          *zap.Logger
}

func (c *OutreachController) SendEmail(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	var in service.SendOutreachInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, log, err)
		return
	}

	res, err := c.OutreachService.Send(r.Context(), in)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
