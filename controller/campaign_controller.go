package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collab-backend/model"
	"collab-backend/usecase"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, businessID string, in usecase.CreateCampaignInput) (*model.Campaign, error)
	GetCampaign(ctx context.Context, campaignID, businessID string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, businessID string) ([]model.Campaign, error)
	ListCandidates(ctx context.Context, campaignID, businessID string) ([]model.CampaignCandidate, error)
	MatchCampaign(ctx context.Context, campaignID, businessID string) ([]model.CampaignCandidate, error)
	DraftOutreach(ctx context.Context, campaignID, businessID string, influencerIDs []string) ([]model.CampaignCandidate, error)
	SendOutreach(ctx context.Context, campaignID, businessID string, influencerIDs []string) ([]model.CampaignCandidate, error)
	CloseCampaign(ctx context.Context, campaignID, businessID string) (*model.Campaign, error)
}

type CampaignController struct {
	usecase CampaignService
	log     *zap.Logger
}

func NewCampaignController(usecase CampaignService, log *zap.Logger) *CampaignController {
	return &CampaignController{usecase: usecase, log: log}
}

type outreachRequest struct {
	InfluencerIDs []string `json:"influencer_ids"`
}

// decodeOutreach accepts an empty body as "all eligible candidates".
func decodeOutreach(r *http.Request) (outreachRequest, error) {
	var req outreachRequest
	if r.ContentLength == 0 {
		return req, nil
	}
	err := decodeJSON(r, &req)
	return req, err
}

func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateCampaignInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	camp, err := c.usecase.CreateCampaign(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, camp)
}

func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.usecase.ListCampaigns(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
	camp, err := c.usecase.GetCampaign(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, camp)
}

func (c *CampaignController) Candidates(w http.ResponseWriter, r *http.Request) {
	list, err := c.usecase.ListCandidates(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *CampaignController) Match(w http.ResponseWriter, r *http.Request) {
	list, err := c.usecase.MatchCampaign(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *CampaignController) DraftOutreach(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOutreach(r)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	list, err := c.usecase.DraftOutreach(r.Context(), chi.URLParam(r, "id"), userID(r), req.InfluencerIDs)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *CampaignController) SendOutreach(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOutreach(r)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	list, err := c.usecase.SendOutreach(r.Context(), chi.URLParam(r, "id"), userID(r), req.InfluencerIDs)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *CampaignController) Close(w http.ResponseWriter, r *http.Request) {
	camp, err := c.usecase.CloseCampaign(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, camp)
}
