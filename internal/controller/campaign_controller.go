// internal/controller/campaign_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/togetherunite-backend/internal/logger"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Logger          *zap.Logger
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	var in service.CreateCampaignInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, log, err)
		return
	}

	campaign, err := c.CampaignService.Create(r.Context(), in)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// ListCampaigns returns every campaign, newest first, optionally filtered
// by ?organizer_id=.
func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.List(r.Context(), r.URL.Query().Get("organizer_id"))
	if err != nil {
		writeError(w, logger.OrNop(c.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign answers 200 with a null body when the campaign does not exist.
func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, logger.OrNop(c.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	log := logger.OrNop(c.Logger)

	body, err := readBody(r)
	if err != nil {
		writeError(w, log, err)
		return
	}
	update, err := service.ParseCampaignUpdate(body)
	if err != nil {
		writeError(w, log, err)
		return
	}

	campaign, err := c.CampaignService.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, logger.OrNop(c.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Campaign deleted successfully"})
}

func (c *CampaignController) CampaignStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.CampaignService.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, logger.OrNop(c.Logger), err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
