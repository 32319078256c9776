package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collab-backend/model"
)

// SocialService is implemented by *social.Service.
type SocialService interface {
	ConnectURL(userID string, platform model.Platform) (string, error)
	Complete(ctx context.Context, platform model.Platform, state, code string) (*model.SocialAccount, error)
	Sync(ctx context.Context, userID string) ([]model.SocialAccount, error)
}

type SocialController struct {
	service SocialService
	log     *zap.Logger
}

func NewSocialController(service SocialService, log *zap.Logger) *SocialController {
	return &SocialController{service: service, log: log}
}

// Connect returns the platform consent URL. The client navigates there itself
// since the redirect cannot carry the bearer token.
func (c *SocialController) Connect(w http.ResponseWriter, r *http.Request) {
	url, err := c.service.ConnectURL(userID(r), model.Platform(chi.URLParam(r, "platform")))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (c *SocialController) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "connection denied: " + e})
		return
	}
	acct, err := c.service.Complete(r.Context(), model.Platform(chi.URLParam(r, "platform")), q.Get("state"), q.Get("code"))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (c *SocialController) Sync(w http.ResponseWriter, r *http.Request) {
	accounts, err := c.service.Sync(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(accounts))
}
