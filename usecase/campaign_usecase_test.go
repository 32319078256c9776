package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/gpt"
)

type campaignFixture struct {
	s       *store
	planner *fakePlanner
	agent   *fakeAgent
	u       *CampaignUsecase
}

func setupCampaigns(t *testing.T) campaignFixture {
	t.Helper()
	s := newStore()
	s.addUser("biz", model.RoleBusiness)
	s.businesses["biz"] = &model.BusinessProfile{UserID: "biz", CompanyName: "Acme", Industry: "Food"}

	chef := s.addInfluencer("chef", model.AgentSettings{Enabled: true, MinRate: 300})
	chef.Niches, chef.FollowersTotal, chef.EngagementRate, chef.Location = []string{"food", "cooking"}, 20000, 0.05, "Tokyo"
	chef.Bio = "Home cooking and ramen reviews"
	gamer := s.addInfluencer("gamer", model.AgentSettings{Enabled: true, MinRate: 200})
	gamer.Niches, gamer.FollowersTotal, gamer.EngagementRate, gamer.Location = []string{"gaming"}, 90000, 0.02, "Osaka"
	baker := s.addInfluencer("baker", model.AgentSettings{MinRate: 5000})
	baker.Niches, baker.FollowersTotal, baker.Location = []string{"food"}, 40000, "Tokyo"

	planner := &fakePlanner{
		criteria: &gpt.Criteria{IdealProfile: "food creators", Niches: []string{"food"}, Keywords: []string{"ramen"}},
		filters:  &model.SearchFilters{Niches: []string{"food"}},
	}
	agent := &fakeAgent{}
	inquiries := newInquiryUsecase(s, agent)
	cfg := config.MatchingConfig{CandidatePool: 50, RerankLimit: 20, TopK: 10, OutreachConcurrency: 2}
	u := NewCampaignUsecase(userStore{s}, influencerStore{s}, businessStore{s}, campaignStore{s}, inquiries, planner, cfg, zap.NewNop())
	return campaignFixture{s: s, planner: planner, agent: agent, u: u}
}

func (f campaignFixture) create(t *testing.T, budget int) *model.Campaign {
	t.Helper()
	c, err := f.u.CreateCampaign(context.Background(), "biz", CreateCampaignInput{Title: "Ramen week", Brief: "Promote our ramen", Budget: budget})
	require.NoError(t, err)
	return c
}

func TestCreateCampaign(t *testing.T) {
	f := setupCampaigns(t)
	ctx := context.Background()

	c := f.create(t, 1000)
	assert.Equal(t, model.CampaignDraft, c.Status)

	_, err := f.u.CreateCampaign(ctx, "chef", CreateCampaignInput{Title: "x", Brief: "y"})
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.u.CreateCampaign(ctx, "biz", CreateCampaignInput{Title: "", Brief: "y"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.u.GetCampaign(ctx, c.ID, "chef")
	assert.ErrorIs(t, err, model.ErrForbidden)
	list, err := f.u.ListCampaigns(ctx, "biz")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMatchCampaignCapsRateAndRanks(t *testing.T) {
	f := setupCampaigns(t)
	c := f.create(t, 1000)
	f.planner.ranked = []gpt.RankedCandidate{
		{InfluencerID: "gamer", Score: 40, Rationale: "off-topic"},
		{InfluencerID: "chef", Score: 90, Rationale: "ramen specialist"},
	}

	cands, err := f.u.MatchCampaign(context.Background(), c.ID, "biz")
	require.NoError(t, err)

	require.Len(t, f.s.searches, 1)
	assert.Equal(t, 1000, f.s.searches[0].MaxRate, "budget caps the rate filter")

	require.Len(t, cands, 2, "baker's minimum rate is above budget")
	assert.Equal(t, "chef", cands[0].InfluencerID)
	assert.Equal(t, 1, cands[0].Rank)
	assert.Equal(t, 90.0, cands[0].Score)
	assert.Equal(t, "ramen specialist", cands[0].Rationale)
	assert.Equal(t, "gamer", cands[1].InfluencerID)
	assert.Equal(t, model.CandidateSuggested, cands[1].Status)

	stored := f.s.campaigns[c.ID]
	assert.Equal(t, model.CampaignMatched, stored.Status)
	assert.Contains(t, stored.Criteria, "food creators")
	assert.Len(t, f.s.candidates[c.ID], 2)
}

func TestMatchCampaignRelaxesFilters(t *testing.T) {
	f := setupCampaigns(t)
	c := f.create(t, 0)
	f.planner.filters = &model.SearchFilters{MinFollowers: 1_000_000, Location: "Paris"}

	cands, err := f.u.MatchCampaign(context.Background(), c.ID, "biz")
	require.NoError(t, err)
	require.Len(t, f.s.searches, 2)
	assert.Zero(t, f.s.searches[1].MinFollowers)
	assert.Empty(t, f.s.searches[1].Location)
	assert.Len(t, cands, 3)
}

func TestMatchCampaignNoCandidates(t *testing.T) {
	f := setupCampaigns(t)
	c := f.create(t, 10)

	_, err := f.u.MatchCampaign(context.Background(), c.ID, "biz")
	assert.ErrorIs(t, err, model.ErrNoCandidates)
	assert.Equal(t, model.CampaignDraft, f.s.campaigns[c.ID].Status)
}

func TestMatchCampaignRerankFallback(t *testing.T) {
	f := setupCampaigns(t)
	c := f.create(t, 0)
	f.planner.rankErr = errors.New("model overloaded")

	cands, err := f.u.MatchCampaign(context.Background(), c.ID, "biz")
	require.NoError(t, err)
	require.Len(t, cands, 3)
	// Niche and keyword matches outweigh raw reach in the pre-score.
	assert.Equal(t, "chef", cands[0].InfluencerID)
	assert.Equal(t, "baker", cands[1].InfluencerID)
	assert.Equal(t, "gamer", cands[2].InfluencerID)
	assert.Contains(t, cands[0].Rationale, "Matches food")
}

func TestMatchCampaignTopKAndRerankLimit(t *testing.T) {
	f := setupCampaigns(t)
	f.u.cfg.TopK = 1
	f.u.cfg.RerankLimit = 2
	c := f.create(t, 0)

	cands, err := f.u.MatchCampaign(context.Background(), c.ID, "biz")
	require.NoError(t, err)
	assert.Len(t, cands, 1)
	assert.Len(t, f.planner.rankedIn, 2)
}

func TestOutreachFlow(t *testing.T) {
	f := setupCampaigns(t)
	ctx := context.Background()
	c := f.create(t, 1000)
	_, err := f.u.SendOutreach(ctx, c.ID, "biz", nil)
	assert.ErrorIs(t, err, model.ErrInvalidTransition, "campaign not matched yet")

	_, err = f.u.MatchCampaign(ctx, c.ID, "biz")
	require.NoError(t, err)

	drafted, err := f.u.DraftOutreach(ctx, c.ID, "biz", nil)
	require.NoError(t, err)
	require.Len(t, drafted, 2)
	for _, d := range drafted {
		assert.Equal(t, model.CandidateDrafted, d.Status)
		assert.Contains(t, d.OutreachDraft, "Ramen week")
	}
	assert.ElementsMatch(t, []string{"chef", "gamer"}, f.planner.drafted)

	sent, err := f.u.SendOutreach(ctx, c.ID, "biz", []string{"chef"})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].InquiryID)
	assert.Equal(t, model.CandidateContacted, sent[0].Status)
	assert.Equal(t, model.CampaignOutreach, f.s.campaigns[c.ID].Status)

	q := f.s.inquiries[*sent[0].InquiryID]
	require.NotNil(t, q)
	require.NotNil(t, q.CampaignID)
	assert.Equal(t, c.ID, *q.CampaignID)
	assert.Equal(t, "Ramen week", q.Subject)
	require.NotNil(t, q.Budget)
	assert.Equal(t, 1000, *q.Budget)
	assert.Len(t, f.agent.inputs, 1, "chef's agent answers the outreach")

	_, err = f.u.SendOutreach(ctx, c.ID, "biz", []string{"chef"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.u.DraftOutreach(ctx, c.ID, "biz", []string{"chef"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.u.DraftOutreach(ctx, c.ID, "biz", []string{"nobody"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	closed, err := f.u.CloseCampaign(ctx, c.ID, "biz")
	require.NoError(t, err)
	assert.Equal(t, model.CampaignClosed, closed.Status)
	_, err = f.u.MatchCampaign(ctx, c.ID, "biz")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

type flakyCreator struct {
	InquiryCreator
	calls, failAt int
}

func (c *flakyCreator) CreateInquiry(ctx context.Context, businessID string, in CreateInquiryInput) (*InquiryResult, error) {
	c.calls++
	if c.calls == c.failAt {
		return nil, errors.New("db unavailable")
	}
	return c.InquiryCreator.CreateInquiry(ctx, businessID, in)
}

func TestSendOutreachPartialFailureStillMovesCampaign(t *testing.T) {
	f := setupCampaigns(t)
	ctx := context.Background()
	c := f.create(t, 1000)
	_, err := f.u.MatchCampaign(ctx, c.ID, "biz")
	require.NoError(t, err)
	_, err = f.u.DraftOutreach(ctx, c.ID, "biz", nil)
	require.NoError(t, err)

	creator := &flakyCreator{InquiryCreator: newInquiryUsecase(f.s, f.agent), failAt: 2}
	cfg := config.MatchingConfig{CandidatePool: 50, RerankLimit: 20, TopK: 10, OutreachConcurrency: 2}
	u := NewCampaignUsecase(userStore{f.s}, influencerStore{f.s}, businessStore{f.s}, campaignStore{f.s}, creator, f.planner, cfg, zap.NewNop())

	sent, err := u.SendOutreach(ctx, c.ID, "biz", []string{"chef", "gamer"})
	require.Error(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, model.CandidateContacted, sent[0].Status)
	assert.Equal(t, model.CampaignOutreach, f.s.campaigns[c.ID].Status)

	cands, err := u.ListCandidates(ctx, c.ID, "biz")
	require.NoError(t, err)
	statuses := map[model.CandidateStatus]int{}
	for _, cand := range cands {
		statuses[cand.Status]++
	}
	assert.Equal(t, 1, statuses[model.CandidateContacted])
	assert.Equal(t, 1, statuses[model.CandidateDrafted])
}

func TestDraftOutreachFailure(t *testing.T) {
	f := setupCampaigns(t)
	ctx := context.Background()
	c := f.create(t, 0)
	_, err := f.u.MatchCampaign(ctx, c.ID, "biz")
	require.NoError(t, err)
	f.planner.draftErr = errors.New("rate limited")

	_, err = f.u.DraftOutreach(ctx, c.ID, "biz", nil)
	require.Error(t, err)

	cands, err := f.u.ListCandidates(ctx, c.ID, "biz")
	require.NoError(t, err)
	for _, cand := range cands {
		assert.Equal(t, model.CandidateSuggested, cand.Status)
	}
}

func TestPreScore(t *testing.T) {
	p := model.InfluencerProfile{UserID: "a", Niches: []string{"Food", "travel"}, FollowersTotal: 10_000_000, EngagementRate: 0.2, Bio: "Street food and ramen"}

	score, why := preScore(p, []string{"food"}, []string{"ramen", "street"})
	assert.InDelta(t, 100.0, score, 0.001)
	assert.Contains(t, why, "Matches Food")

	none, _ := preScore(model.InfluencerProfile{}, []string{"food"}, nil)
	assert.Zero(t, none)
}
