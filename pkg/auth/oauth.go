package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"collab-backend/config"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

// UserInfo is the identity returned by an OAuth login provider.
type UserInfo struct {
	ID        string
	Provider  string
	Email     string
	Name      string
	AvatarURL string
}

type LoginProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// GenericProvider implements LoginProvider with configurable endpoints.
type GenericProvider struct {
	name        string
	config      oauth2.Config
	userInfoURL string
	parser      func([]byte) (*UserInfo, error)
}

func NewGenericProvider(name string, cfg config.OAuthProvider, parser func([]byte) (*UserInfo, error)) *GenericProvider {
	return &GenericProvider{
		name: name,
		config: oauth2.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			RedirectURL:  strings.TrimSpace(cfg.RedirectURL),
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  strings.TrimSpace(cfg.AuthURL),
				TokenURL: strings.TrimSpace(cfg.TokenURL),
			},
		},
		userInfoURL: strings.TrimSpace(cfg.UserInfoURL),
		parser:      parser,
	}
}

// NewGoogleProvider fills in Google endpoints where cfg leaves them empty.
func NewGoogleProvider(cfg config.OAuthProvider) *GenericProvider {
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}
	return NewGenericProvider("google", cfg, parseOIDCUser)
}

func (p *GenericProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *GenericProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *GenericProvider) UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	if p.userInfoURL == "" {
		return nil, errors.New("user info url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	info, err := p.parser(data)
	if err != nil {
		return nil, err
	}
	info.Provider = p.name
	return info, nil
}

func parseOIDCUser(data []byte) (*UserInfo, error) {
	var payload struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Email == "" {
		return nil, errors.New("provider returned no email")
	}
	return &UserInfo{ID: payload.Sub, Email: payload.Email, Name: payload.Name, AvatarURL: payload.Picture}, nil
}

// Providers builds login providers from configuration. "google" gets default
// endpoints; other names need explicit endpoints and an OIDC userinfo response.
func Providers(cfgs map[string]config.OAuthProvider) map[string]LoginProvider {
	out := make(map[string]LoginProvider, len(cfgs))
	for name, cfg := range cfgs {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "google" {
			out[name] = NewGoogleProvider(cfg)
			continue
		}
		out[name] = NewGenericProvider(name, cfg, parseOIDCUser)
	}
	return out
}
