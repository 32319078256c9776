// Package social connects influencer accounts on social platforms over OAuth
// and keeps their audience statistics fresh.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"collab-backend/config"
	"collab-backend/model"
)

// Stats is what a platform reports about a connected account.
type Stats struct {
	ExternalID     string
	Handle         string
	Followers      int
	EngagementRate float64
}

type Platform interface {
	Name() model.Platform
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource
	// FetchStats reads the account behind client's credentials.
	FetchStats(ctx context.Context, client *http.Client) (*Stats, error)
}

// oauthPlatform holds the OAuth plumbing shared by every platform.
type oauthPlatform struct {
	config  oauth2.Config
	apiBase string
}

func newOAuthPlatform(cfg config.SocialPlatformConfig, authURL, tokenURL string, scopes []string) oauthPlatform {
	if cfg.AuthURL != "" {
		authURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		tokenURL = cfg.TokenURL
	}
	if len(cfg.Scopes) > 0 {
		scopes = cfg.Scopes
	}
	return oauthPlatform{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		apiBase: strings.TrimSuffix(cfg.APIBaseURL, "/"),
	}
}

func (p oauthPlatform) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p oauthPlatform) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p oauthPlatform) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return p.config.TokenSource(ctx, tok)
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}

// Platforms builds every platform with client credentials configured.
func Platforms(cfg config.SocialConfig) map[model.Platform]Platform {
	out := map[model.Platform]Platform{}
	if cfg.Instagram.ClientID != "" {
		out[model.PlatformInstagram] = NewInstagram(cfg.Instagram)
	}
	if cfg.YouTube.ClientID != "" {
		out[model.PlatformYouTube] = NewYouTube(cfg.YouTube)
	}
	return out
}
