package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"collab-backend/model"
	"collab-backend/pkg/auth"
)

// TokenIssuer is implemented by *auth.JWTService.
type TokenIssuer interface {
	Generate(user *model.User) (string, error)
}

// Session is what a successful sign-in returns.
type Session struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type UserUsecase struct {
	repo        UserStore
	influencers InfluencerStore
	businesses  BusinessStore
	tokens      TokenIssuer
	providers   map[string]auth.LoginProvider
	states      *auth.StateStore
	log         *zap.Logger
	now         func() time.Time
}

func NewUserUsecase(repo UserStore, influencers InfluencerStore, businesses BusinessStore, tokens TokenIssuer,
	providers map[string]auth.LoginProvider, states *auth.StateStore, log *zap.Logger) *UserUsecase {
	return &UserUsecase{
		repo:        repo,
		influencers: influencers,
		businesses:  businesses,
		tokens:      tokens,
		providers:   providers,
		states:      states,
		log:         log.Named("user"),
		now:         time.Now,
	}
}

// RegisterUser signs in the user with this email, creating the account first
// when there is none.
func (u *UserUsecase) RegisterUser(ctx context.Context, name, email string, role model.Role) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", model.ErrInvalidInput)
	}
	user, err := u.findOrCreate(ctx, strings.TrimSpace(name), email, "", role)
	if err != nil {
		return nil, err
	}
	return u.session(user)
}

func (u *UserUsecase) findOrCreate(ctx context.Context, name, email, avatarURL string, role model.Role) (*model.User, error) {
	// 1. Check if user exists (login)
	existing, err := u.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// 2. Register new user
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be influencer or business", model.ErrInvalidInput)
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user := &model.User{
		ID:        newID(),
		Name:      name,
		Email:     email,
		Role:      role,
		AvatarURL: avatarURL,
		CreatedAt: u.now(),
	}
	if err := u.repo.Insert(ctx, user); err != nil {
		return nil, err
	}
	u.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (u *UserUsecase) session(user *model.User) (*Session, error) {
	token, err := u.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func (u *UserUsecase) provider(name string) (auth.LoginProvider, error) {
	p, ok := u.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", auth.ErrUnknownProvider, name)
	}
	return p, nil
}

// LoginURL starts an OAuth sign-in. role is only used if the account is new.
func (u *UserUsecase) LoginURL(providerName string, role model.Role) (string, error) {
	p, err := u.provider(providerName)
	if err != nil {
		return "", err
	}
	if role != "" && !role.Valid() {
		return "", fmt.Errorf("%w: role must be influencer or business", model.ErrInvalidInput)
	}
	return p.AuthURL(u.states.Issue(string(role))), nil
}

// LoginOAuth finishes an OAuth sign-in started by LoginURL.
func (u *UserUsecase) LoginOAuth(ctx context.Context, providerName, state, code string) (*Session, error) {
	p, err := u.provider(providerName)
	if err != nil {
		return nil, err
	}
	role, ok := u.states.Take(state)
	if !ok {
		return nil, fmt.Errorf("%w: unknown or expired state", model.ErrUnauthorized)
	}
	token, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", model.ErrUnauthorized, err)
	}
	info, err := p.UserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}
	user, err := u.findOrCreate(ctx, info.Name, strings.ToLower(info.Email), info.AvatarURL, model.Role(role))
	if err != nil {
		return nil, err
	}
	return u.session(user)
}

func (u *UserUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	return u.repo.GetByID(ctx, id)
}

// ChangeRole switches the account type of a user who has not set up a profile yet.
func (u *UserUsecase) ChangeRole(ctx context.Context, userID string, role model.Role) (*Session, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be influencer or business", model.ErrInvalidInput)
	}
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return u.session(user)
	}
	var profileErr error
	if user.Role == model.RoleInfluencer {
		_, profileErr = u.influencers.GetByUserID(ctx, userID)
	} else {
		_, profileErr = u.businesses.GetByUserID(ctx, userID)
	}
	switch {
	case profileErr == nil:
		return nil, fmt.Errorf("%w: profile already exists", model.ErrInvalidTransition)
	case !errors.Is(profileErr, model.ErrNotFound):
		return nil, profileErr
	}
	if err := u.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return u.session(user)
}
