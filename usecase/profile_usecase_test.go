package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
)

func setupProfiles() (*store, *ProfileUsecase) {
	s := newStore()
	s.addUser("inf", model.RoleInfluencer)
	s.addUser("biz", model.RoleBusiness)
	cfg := config.AgentConfig{MaxTurns: 6, ReviewRepliesDefault: true}
	return s, NewProfileUsecase(userStore{s}, influencerStore{s}, businessStore{s}, cfg, zap.NewNop())
}

func TestUpsertInfluencerProfile(t *testing.T) {
	s, u := setupProfiles()
	ctx := context.Background()

	p, err := u.UpsertInfluencerProfile(ctx, "inf", InfluencerProfileInput{
		DisplayName: " Mika ",
		Niches:      []string{" Food", "", "TRAVEL"},
		Location:    "Tokyo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mika", p.DisplayName)
	assert.Equal(t, []string{"food", "travel"}, p.Niches)
	assert.True(t, p.Agent.ReviewReplies, "new profiles start from the configured default")

	s.influencers["inf"].Agent.MinRate = 700
	p, err = u.UpsertInfluencerProfile(ctx, "inf", InfluencerProfileInput{DisplayName: "Mika T"})
	require.NoError(t, err)
	assert.Equal(t, "Mika T", p.DisplayName)
	assert.Equal(t, 700, p.Agent.MinRate, "agent settings survive a profile edit")

	_, err = u.UpsertInfluencerProfile(ctx, "biz", InfluencerProfileInput{DisplayName: "x"})
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = u.UpsertInfluencerProfile(ctx, "inf", InfluencerProfileInput{DisplayName: "x", Niches: []string{"a,b"}})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestGetInfluencerProfileHidesAgentFromVisitors(t *testing.T) {
	s, u := setupProfiles()
	ctx := context.Background()
	s.addInfluencer("star", model.AgentSettings{Enabled: true, MinRate: 900, Preferences: "no alcohol"})

	own, err := u.GetInfluencerProfile(ctx, "star", "star")
	require.NoError(t, err)
	assert.Equal(t, 900, own.Agent.MinRate)
	assert.Zero(t, s.influencers["star"].ViewsCount)

	seen, err := u.GetInfluencerProfile(ctx, "star", "biz")
	require.NoError(t, err)
	assert.True(t, seen.Agent.Enabled)
	assert.Zero(t, seen.Agent.MinRate)
	assert.Empty(t, seen.Agent.Preferences)
	assert.Equal(t, 1, seen.ViewsCount)
	assert.Equal(t, 1, s.influencers["star"].ViewsCount)
}

func TestUpdateAgentSettings(t *testing.T) {
	s, u := setupProfiles()
	ctx := context.Background()

	_, err := u.UpdateAgentSettings(ctx, "inf", model.AgentSettings{Enabled: true})
	assert.ErrorIs(t, err, model.ErrNotFound, "profile must exist")

	s.addInfluencer("inf", model.AgentSettings{})
	p, err := u.UpdateAgentSettings(ctx, "inf", model.AgentSettings{Enabled: true, MinRate: 400, Tone: " casual "})
	require.NoError(t, err)
	assert.Equal(t, 6, p.Agent.MaxTurns)
	assert.Equal(t, "casual", p.Agent.Tone)
	assert.Equal(t, 400, p.Agent.MinRate)

	for _, bad := range []model.AgentSettings{{MinRate: -1}, {MaxTurns: 21}, {MaxTurns: -3}} {
		_, err := u.UpdateAgentSettings(ctx, "inf", bad)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}
}

func TestSearchInfluencers(t *testing.T) {
	s, u := setupProfiles()
	a := s.addInfluencer("a", model.AgentSettings{MinRate: 100})
	a.FollowersTotal = 500
	b := s.addInfluencer("b", model.AgentSettings{MinRate: 100})
	b.FollowersTotal = 5000

	got, err := u.SearchInfluencers(context.Background(), model.SearchFilters{MinFollowers: 1000}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].UserID)
	assert.Zero(t, got[0].Agent.MinRate)

	_, err = u.SearchInfluencers(context.Background(), model.SearchFilters{MaxRate: -5}, 10)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpsertBusinessProfile(t *testing.T) {
	_, u := setupProfiles()
	ctx := context.Background()

	p, err := u.UpsertBusinessProfile(ctx, "biz", BusinessProfileInput{CompanyName: " Acme ", Industry: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.CompanyName)

	got, err := u.GetBusinessProfile(ctx, "biz")
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Industry)

	_, err = u.UpsertBusinessProfile(ctx, "inf", BusinessProfileInput{CompanyName: "x"})
	assert.ErrorIs(t, err, model.ErrForbidden)
}
