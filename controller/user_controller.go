package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collab-backend/model"
	"collab-backend/usecase"
)

type UserService interface {
	RegisterUser(ctx context.Context, name, email string, role model.Role) (*usecase.Session, error)
	LoginURL(provider string, role model.Role) (string, error)
	LoginOAuth(ctx context.Context, provider, state, code string) (*usecase.Session, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ChangeRole(ctx context.Context, userID string, role model.Role) (*usecase.Session, error)
}

type UserController struct {
	usecase UserService
	log     *zap.Logger
}

func NewUserController(usecase UserService, log *zap.Logger) *UserController {
	return &UserController{usecase: usecase, log: log}
}

type registerRequest struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	sess, err := c.usecase.RegisterUser(r.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Login redirects to the provider's consent page.
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	url, err := c.usecase.LoginURL(chi.URLParam(r, "provider"), model.Role(r.URL.Query().Get("role")))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (c *UserController) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "login denied: " + e})
		return
	}
	sess, err := c.usecase.LoginOAuth(r.Context(), chi.URLParam(r, "provider"), q.Get("state"), q.Get("code"))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.usecase.GetUser(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (c *UserController) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	sess, err := c.usecase.ChangeRole(r.Context(), userID(r), req.Role)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
