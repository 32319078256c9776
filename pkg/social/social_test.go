package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/auth"
)

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]model.SocialAccount
	tokens   map[string]string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[string]model.SocialAccount{}, tokens: map[string]string{}}
}

func (m *memAccounts) Upsert(_ context.Context, a *model.SocialAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

func (m *memAccounts) ListByUser(_ context.Context, userID string) ([]model.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SocialAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAccounts) UpdateToken(_ context.Context, id, access, _ string, _ *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = access
	return nil
}

func (m *memAccounts) UpdateStats(_ context.Context, id string, followers int, engagement float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.accounts[id]
	a.Followers, a.EngagementRate, a.SyncedAt = followers, engagement, &at
	m.accounts[id] = a
	return nil
}

type memProfiles struct {
	followers  int
	engagement float64
}

func (m *memProfiles) UpdateStats(_ context.Context, _ string, followers int, engagement float64) error {
	m.followers, m.engagement = followers, engagement
	return nil
}

func fakeInstagram(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "ig-token", "token_type": "Bearer"})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ig-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"id": "17841", "username": "miaruns", "followers_count": 1000})
	})
	mux.HandleFunc("/me/media", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]int{
			{"like_count": 40, "comments_count": 10},
			{"like_count": 25, "comments_count": 5},
		}})
	})
	return httptest.NewServer(mux)
}

func TestInstagramFetchStats(t *testing.T) {
	srv := fakeInstagram(t)
	defer srv.Close()

	ig := NewInstagram(config.SocialPlatformConfig{APIBaseURL: srv.URL})
	client := &http.Client{Transport: bearer{"ig-token"}}
	stats, err := ig.FetchStats(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "miaruns", stats.Handle)
	assert.Equal(t, 1000, stats.Followers)
	assert.InDelta(t, 0.04, stats.EngagementRate, 1e-9)
}

type bearer struct{ token string }

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(r)
}

func TestYouTubeFetchStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		w.Write([]byte(`{"items":[{"id":"UC1","snippet":{"title":"Mia Runs","customUrl":"@miaruns"},
			"contentDetails":{"relatedPlaylists":{"uploads":"UU1"}},
			"statistics":{"subscriberCount":"2000","viewCount":"100000","videoCount":"100"}}]}`))
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UU1", r.URL.Query().Get("playlistId"))
		assert.Equal(t, "12", r.URL.Query().Get("maxResults"))
		w.Write([]byte(`{"items":[{"contentDetails":{"videoId":"v1"}},{"contentDetails":{"videoId":"v2"}}]}`))
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
		w.Write([]byte(`{"items":[{"statistics":{"viewCount":"9000","likeCount":"90","commentCount":"10"}},
			{"statistics":{"viewCount":"5000","likeCount":"20"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	yt := NewYouTube(config.SocialPlatformConfig{APIBaseURL: srv.URL})
	stats, err := yt.FetchStats(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "@miaruns", stats.Handle)
	assert.Equal(t, 2000, stats.Followers)
	// (100 + 20) interactions over 2 videos, per 2000 subscribers; views play no part.
	assert.InDelta(t, 0.03, stats.EngagementRate, 1e-9)
}

func TestYouTubeFetchStatsWithoutUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		w.Write([]byte(`{"items":[{"id":"UC2","snippet":{"title":"New Channel"},"statistics":{"subscriberCount":"50"}}]}`))
	}))
	defer srv.Close()

	stats, err := NewYouTube(config.SocialPlatformConfig{APIBaseURL: srv.URL}).FetchStats(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "New Channel", stats.Handle)
	assert.Zero(t, stats.EngagementRate)
}

func TestServiceConnectFlow(t *testing.T) {
	srv := fakeInstagram(t)
	defer srv.Close()

	ig := NewInstagram(config.SocialPlatformConfig{
		OAuthProvider: config.OAuthProvider{ClientID: "cid", TokenURL: srv.URL + "/oauth/token", AuthURL: srv.URL + "/oauth/authorize"},
		APIBaseURL:    srv.URL,
	})
	accounts := newMemAccounts()
	profiles := &memProfiles{}
	svc := NewService(map[model.Platform]Platform{model.PlatformInstagram: ig}, accounts, profiles,
		auth.NewStateStore(16, time.Minute), 16, time.Minute, nil, zap.NewNop())

	raw, err := svc.ConnectURL("inf-1", model.PlatformInstagram)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	acct, err := svc.Complete(context.Background(), model.PlatformInstagram, state, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "inf-1", acct.UserID)
	assert.Equal(t, "ig-token", acct.AccessToken)
	assert.Equal(t, 1000, profiles.followers)

	_, err = svc.Complete(context.Background(), model.PlatformInstagram, state, "code-1")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = svc.ConnectURL("inf-1", model.PlatformYouTube)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestServiceSyncKeepsFailedAccounts(t *testing.T) {
	srv := fakeInstagram(t)
	defer srv.Close()

	ig := NewInstagram(config.SocialPlatformConfig{APIBaseURL: srv.URL})
	accounts := newMemAccounts()
	accounts.accounts["a1"] = model.SocialAccount{ID: "a1", UserID: "inf-1", Platform: model.PlatformInstagram, AccessToken: "ig-token"}
	accounts.accounts["a2"] = model.SocialAccount{ID: "a2", UserID: "inf-1", Platform: model.PlatformYouTube, AccessToken: "yt", Followers: 3000, EngagementRate: 0.1}
	profiles := &memProfiles{}
	svc := NewService(map[model.Platform]Platform{model.PlatformInstagram: ig}, accounts, profiles,
		auth.NewStateStore(16, time.Minute), 16, time.Minute, nil, zap.NewNop())

	synced, err := svc.Sync(context.Background(), "inf-1")
	require.NoError(t, err)
	require.Len(t, synced, 2)
	assert.Equal(t, 4000, profiles.followers)
	// (1000*0.04 + 3000*0.1) / 4000
	assert.InDelta(t, 0.085, profiles.engagement, 1e-9)
}

func TestTotals(t *testing.T) {
	f, e := Totals(nil)
	assert.Equal(t, 0, f)
	assert.Equal(t, 0.0, e)
}
