package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collab-backend/model"
	"collab-backend/usecase"
)

type ProfileService interface {
	UpsertInfluencerProfile(ctx context.Context, userID string, in usecase.InfluencerProfileInput) (*model.InfluencerProfile, error)
	GetInfluencerProfile(ctx context.Context, influencerID, viewerID string) (*model.InfluencerProfile, error)
	UpdateAgentSettings(ctx context.Context, userID string, s model.AgentSettings) (*model.InfluencerProfile, error)
	SearchInfluencers(ctx context.Context, f model.SearchFilters, limit int) ([]model.InfluencerProfile, error)
	UpsertBusinessProfile(ctx context.Context, userID string, in usecase.BusinessProfileInput) (*model.BusinessProfile, error)
	GetBusinessProfile(ctx context.Context, userID string) (*model.BusinessProfile, error)
}

type ProfileController struct {
	usecase ProfileService
	log     *zap.Logger
}

func NewProfileController(usecase ProfileService, log *zap.Logger) *ProfileController {
	return &ProfileController{usecase: usecase, log: log}
}

func (c *ProfileController) UpsertInfluencer(w http.ResponseWriter, r *http.Request) {
	var in usecase.InfluencerProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	p, err := c.usecase.UpsertInfluencerProfile(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (c *ProfileController) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	var s model.AgentSettings
	if err := decodeJSON(r, &s); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	p, err := c.usecase.UpdateAgentSettings(r.Context(), userID(r), s)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (c *ProfileController) GetInfluencer(w http.ResponseWriter, r *http.Request) {
	p, err := c.usecase.GetInfluencerProfile(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Search reads filters from the query string: niches, platforms and keywords
// are comma separated.
func (c *ProfileController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.SearchFilters{
		Niches:    splitList(q.Get("niches")),
		Platforms: splitList(q.Get("platforms")),
		Keywords:  splitList(q.Get("keywords")),
		Location:  q.Get("location"),
	}
	var err error
	if f.MinFollowers, err = queryInt(r, "min_followers"); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	if f.MaxRate, err = queryInt(r, "max_rate"); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	list, err := c.usecase.SearchInfluencers(r.Context(), f, limit)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *ProfileController) UpsertBusiness(w http.ResponseWriter, r *http.Request) {
	var in usecase.BusinessProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	p, err := c.usecase.UpsertBusinessProfile(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (c *ProfileController) GetBusiness(w http.ResponseWriter, r *http.Request) {
	p, err := c.usecase.GetBusinessProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
