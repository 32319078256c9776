package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"collab-backend/model"
	"collab-backend/pkg/auth"
	"collab-backend/pkg/metrics"
)

type AccountStore interface {
	Upsert(ctx context.Context, a *model.SocialAccount) error
	ListByUser(ctx context.Context, userID string) ([]model.SocialAccount, error)
	UpdateToken(ctx context.Context, id, access, refresh string, expiry *time.Time) error
	UpdateStats(ctx context.Context, id string, followers int, engagement float64, syncedAt time.Time) error
}

type ProfileStatsStore interface {
	UpdateStats(ctx context.Context, userID string, followers int, engagement float64) error
}

type Service struct {
	platforms map[model.Platform]Platform
	accounts  AccountStore
	profiles  ProfileStatsStore
	states    *auth.StateStore
	cache     *expirable.LRU[string, Stats]
	now       func() time.Time
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewService(platforms map[model.Platform]Platform, accounts AccountStore, profiles ProfileStatsStore,
	states *auth.StateStore, cacheSize int, cacheTTL time.Duration, m *metrics.Metrics, log *zap.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &Service{
		platforms: platforms,
		accounts:  accounts,
		profiles:  profiles,
		states:    states,
		cache:     expirable.NewLRU[string, Stats](cacheSize, nil, cacheTTL),
		now:       time.Now,
		metrics:   m,
		log:       log,
	}
}

func (s *Service) platform(name model.Platform) (Platform, error) {
	p, ok := s.platforms[name]
	if !ok {
		return nil, fmt.Errorf("%w: platform %q not configured", model.ErrInvalidInput, name)
	}
	return p, nil
}

// ConnectURL starts the OAuth flow that links userID's account on platform.
func (s *Service) ConnectURL(userID string, platform model.Platform) (string, error) {
	p, err := s.platform(platform)
	if err != nil {
		return "", err
	}
	return p.AuthURL(s.states.Issue(userID)), nil
}

// Complete finishes the OAuth flow: it stores the account with fresh stats and
// refreshes the owner's profile totals.
func (s *Service) Complete(ctx context.Context, platform model.Platform, state, code string) (*model.SocialAccount, error) {
	p, err := s.platform(platform)
	if err != nil {
		return nil, err
	}
	userID, ok := s.states.Take(state)
	if !ok {
		return nil, fmt.Errorf("%w: unknown or expired oauth state", model.ErrUnauthorized)
	}

	tok, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange %s code: %w", platform, err)
	}
	stats, err := p.FetchStats(ctx, oauth2.NewClient(ctx, p.TokenSource(ctx, tok)))
	s.metrics.SocialSync(string(platform), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s stats: %w", platform, err)
	}

	now := s.now()
	acct := &model.SocialAccount{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Platform:       platform,
		ExternalID:     stats.ExternalID,
		Handle:         stats.Handle,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
		Followers:      stats.Followers,
		EngagementRate: stats.EngagementRate,
		SyncedAt:       &now,
	}
	if !tok.Expiry.IsZero() {
		acct.TokenExpiry = &tok.Expiry
	}
	if err := s.accounts.Upsert(ctx, acct); err != nil {
		return nil, err
	}
	if _, err := s.refreshTotals(ctx, userID); err != nil {
		return nil, err
	}
	s.log.Info("social account connected", zap.String("user_id", userID), zap.String("platform", string(platform)),
		zap.Int("followers", stats.Followers))
	return acct, nil
}

// Sync refreshes every connected account of userID. A failing account keeps its
// previous stats; Sync only fails when storage does.
func (s *Service) Sync(ctx context.Context, userID string) ([]model.SocialAccount, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range accounts {
		acct := &accounts[i]
		g.Go(func() error {
			stats, err := s.fetch(gctx, acct)
			s.metrics.SocialSync(string(acct.Platform), err)
			if err != nil {
				s.log.Warn("social sync failed", zap.String("account_id", acct.ID), zap.String("platform", string(acct.Platform)), zap.Error(err))
				return nil
			}
			now := s.now()
			if err := s.accounts.UpdateStats(gctx, acct.ID, stats.Followers, stats.EngagementRate, now); err != nil {
				return err
			}
			acct.Followers = stats.Followers
			acct.EngagementRate = stats.EngagementRate
			acct.SyncedAt = &now
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.saveTotals(ctx, userID, accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Service) fetch(ctx context.Context, acct *model.SocialAccount) (*Stats, error) {
	if cached, ok := s.cache.Get(acct.ID); ok {
		return &cached, nil
	}
	p, err := s.platform(acct.Platform)
	if err != nil {
		return nil, err
	}
	if acct.AccessToken == "" {
		return nil, errors.New("account has no access token")
	}

	tok := &oauth2.Token{AccessToken: acct.AccessToken, RefreshToken: acct.RefreshToken}
	if acct.TokenExpiry != nil {
		tok.Expiry = *acct.TokenExpiry
	}
	ts := oauth2.ReuseTokenSource(tok, p.TokenSource(ctx, tok))
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.AccessToken != acct.AccessToken {
		var expiry *time.Time
		if !fresh.Expiry.IsZero() {
			expiry = &fresh.Expiry
		}
		refresh := fresh.RefreshToken
		if refresh == "" {
			refresh = acct.RefreshToken
		}
		if err := s.accounts.UpdateToken(ctx, acct.ID, fresh.AccessToken, refresh, expiry); err != nil {
			return nil, err
		}
	}

	stats, err := p.FetchStats(ctx, oauth2.NewClient(ctx, ts))
	if err != nil {
		return nil, err
	}
	s.cache.Add(acct.ID, *stats)
	return stats, nil
}

func (s *Service) refreshTotals(ctx context.Context, userID string) ([]model.SocialAccount, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return accounts, s.saveTotals(ctx, userID, accounts)
}

// saveTotals writes the follower sum and follower-weighted engagement.
func (s *Service) saveTotals(ctx context.Context, userID string, accounts []model.SocialAccount) error {
	followers, engagement := Totals(accounts)
	return s.profiles.UpdateStats(ctx, userID, followers, engagement)
}

func Totals(accounts []model.SocialAccount) (int, float64) {
	followers := 0
	weighted := 0.0
	for _, a := range accounts {
		followers += a.Followers
		weighted += float64(a.Followers) * a.EngagementRate
	}
	if followers == 0 {
		return 0, 0
	}
	return followers, weighted / float64(followers)
}
