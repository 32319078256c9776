package usecase

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/gpt"
)

// store is an in-memory stand-in for every dao repository.
type store struct {
	mu          sync.Mutex
	users       map[string]*model.User
	influencers map[string]*model.InfluencerProfile
	businesses  map[string]*model.BusinessProfile
	inquiries   map[string]*model.Inquiry
	messages    []*model.Message
	logs        []*model.NegotiationLog
	campaigns   map[string]*model.Campaign
	candidates  map[string][]model.CampaignCandidate
	searches    []model.SearchFilters
}

func newStore() *store {
	return &store{
		users:       map[string]*model.User{},
		influencers: map[string]*model.InfluencerProfile{},
		businesses:  map[string]*model.BusinessProfile{},
		inquiries:   map[string]*model.Inquiry{},
		campaigns:   map[string]*model.Campaign{},
		candidates:  map[string][]model.CampaignCandidate{},
	}
}

func (s *store) addUser(id string, role model.Role) *model.User {
	u := &model.User{ID: id, Name: id, Email: id + "@example.com", Role: role}
	s.users[id] = u
	return u
}

func (s *store) addInfluencer(id string, agent model.AgentSettings) *model.InfluencerProfile {
	s.addUser(id, model.RoleInfluencer)
	p := &model.InfluencerProfile{UserID: id, DisplayName: strings.ToUpper(id), Agent: agent}
	s.influencers[id] = p
	return p
}

type userStore struct{ *store }

func (s userStore) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s userStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s userStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s userStore) UpdateRole(_ context.Context, id string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Role = role
	return nil
}

type influencerStore struct{ *store }

func (s influencerStore) Upsert(_ context.Context, p *model.InfluencerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.influencers[p.UserID]; ok {
		cur.DisplayName, cur.Bio, cur.Niches, cur.Location = p.DisplayName, p.Bio, p.Niches, p.Location
		return nil
	}
	c := *p
	s.influencers[p.UserID] = &c
	return nil
}

func (s influencerStore) GetByUserID(_ context.Context, id string) (*model.InfluencerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.influencers[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s influencerStore) UpdateAgentSettings(_ context.Context, id string, a model.AgentSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.influencers[id]
	if !ok {
		return model.ErrNotFound
	}
	p.Agent = a
	return nil
}

func (s influencerStore) IncrementViewCount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.influencers[id]; ok {
		p.ViewsCount++
	}
	return nil
}

// Search applies the follower and location filters and orders by followers.
func (s influencerStore) Search(_ context.Context, f model.SearchFilters, limit int) ([]model.InfluencerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, f)
	var out []model.InfluencerProfile
	for _, p := range s.influencers {
		if p.FollowersTotal < f.MinFollowers {
			continue
		}
		if f.Location != "" && !strings.Contains(p.Location, f.Location) {
			continue
		}
		if f.MaxRate > 0 && p.Agent.MinRate > f.MaxRate {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FollowersTotal != out[j].FollowersTotal {
			return out[i].FollowersTotal > out[j].FollowersTotal
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type businessStore struct{ *store }

func (s businessStore) Upsert(_ context.Context, p *model.BusinessProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.businesses[p.UserID] = &c
	return nil
}

func (s businessStore) GetByUserID(_ context.Context, id string) (*model.BusinessProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.businesses[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *p
	return &c, nil
}

type inquiryStore struct{ *store }

func (s inquiryStore) Insert(_ context.Context, q *model.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *q
	s.inquiries[q.ID] = &c
	return nil
}

func (s inquiryStore) GetByID(_ context.Context, id string) (*model.Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.inquiries[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *q
	return &c, nil
}

func (s inquiryStore) list(match func(*model.Inquiry) bool) []model.Inquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Inquiry
	for _, q := range s.inquiries {
		if match(q) {
			out = append(out, *q)
		}
	}
	return out
}

func (s inquiryStore) ListByInfluencer(_ context.Context, id string) ([]model.Inquiry, error) {
	return s.list(func(q *model.Inquiry) bool { return q.InfluencerID == id }), nil
}

func (s inquiryStore) ListByBusiness(_ context.Context, id string) ([]model.Inquiry, error) {
	return s.list(func(q *model.Inquiry) bool { return q.BusinessID == id }), nil
}

func (s inquiryStore) TransitionStatus(_ context.Context, id string, from []model.InquiryStatus, to model.InquiryStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.inquiries[id]
	if !ok || !slices.Contains(from, q.Status) {
		return model.ErrInvalidTransition
	}
	q.Status, q.LastActivityAt = to, at
	return nil
}

func (s inquiryStore) SetRecommendation(_ context.Context, id string, rec model.Recommendation, reason string, rate *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.inquiries[id]
	q.Recommendation, q.RecommendationReason, q.ProposedRate = rec, reason, rate
	return nil
}

func (s inquiryStore) ClearRecommendation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.inquiries[id]
	q.Recommendation, q.RecommendationReason, q.ProposedRate = "", "", nil
	return nil
}

func (s inquiryStore) Touch(_ context.Context, id string, at time.Time, turns int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.inquiries[id]
	q.LastActivityAt = at
	q.AgentTurns += turns
	return nil
}

func (s inquiryStore) CloseIdle(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, q := range s.inquiries {
		if !q.Status.Terminal() && q.LastActivityAt.Before(before) {
			q.Status = model.InquiryClosed
			n++
		}
	}
	return n, nil
}

type messageStore struct{ *store }

func (s messageStore) CreateMessage(_ context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	c.AIReasoning = ""
	s.messages = append(s.messages, &c)
	return nil
}

// GetMessagesByInquiryID joins reasoning from the logs like the SQL query does.
func (s messageStore) GetMessagesByInquiryID(_ context.Context, id string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.messages {
		if m.InquiryID != id {
			continue
		}
		c := *m
		for _, l := range s.logs {
			if l.MessageID == m.ID {
				c.AIReasoning = l.AIReasoning
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (s messageStore) GetMessageByID(_ context.Context, id string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s messageStore) ApproveMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.IsApproved = true
			return nil
		}
	}
	return model.ErrNotFound
}

func (s messageStore) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = slices.DeleteFunc(s.messages, func(m *model.Message) bool { return m.ID == id })
	return nil
}

func (s messageStore) CreateNegotiationLog(_ context.Context, l *model.NegotiationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	s.logs = append(s.logs, &c)
	return nil
}

func (s messageStore) ListNegotiationLogs(_ context.Context, id string) ([]model.NegotiationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.NegotiationLog
	for _, l := range s.logs {
		if l.InquiryID == id {
			out = append(out, *l)
		}
	}
	return out, nil
}

type campaignStore struct{ *store }

func (s campaignStore) Insert(_ context.Context, c *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	s.campaigns[c.ID] = &cc
	return nil
}

func (s campaignStore) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (s campaignStore) ListByBusiness(_ context.Context, id string) ([]model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Campaign
	for _, c := range s.campaigns {
		if c.BusinessID == id {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s campaignStore) SaveCriteria(_ context.Context, id, criteria string, f *model.SearchFilters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.campaigns[id]
	c.Criteria, c.Filters = criteria, f
	return nil
}

func (s campaignStore) TransitionStatus(_ context.Context, id string, from []model.CampaignStatus, to model.CampaignStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok || !slices.Contains(from, c.Status) {
		return model.ErrInvalidTransition
	}
	c.Status = to
	return nil
}

func (s campaignStore) ReplaceCandidates(_ context.Context, id string, cands []model.CampaignCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[id] = slices.Clone(cands)
	return nil
}

func (s campaignStore) ListCandidates(_ context.Context, id string) ([]model.CampaignCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.candidates[id]), nil
}

func (s campaignStore) candidate(campaignID, influencerID string) *model.CampaignCandidate {
	for i := range s.candidates[campaignID] {
		if s.candidates[campaignID][i].InfluencerID == influencerID {
			return &s.candidates[campaignID][i]
		}
	}
	return nil
}

func (s campaignStore) SaveDraft(_ context.Context, campaignID, influencerID, draft string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.candidate(campaignID, influencerID)
	if c == nil || c.Status == model.CandidateContacted {
		return model.ErrInvalidTransition
	}
	c.OutreachDraft, c.Status = draft, model.CandidateDrafted
	return nil
}

func (s campaignStore) MarkContacted(_ context.Context, campaignID, influencerID, inquiryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.candidate(campaignID, influencerID)
	if c == nil || c.Status != model.CandidateDrafted {
		return model.ErrInvalidTransition
	}
	c.InquiryID, c.Status = &inquiryID, model.CandidateContacted
	return nil
}

// fakeAgent replays scripted responses and records what it was asked.
type fakeAgent struct {
	mu        sync.Mutex
	responses []*gpt.NegotiationResponse
	err       error
	inputs    []gpt.NegotiationInput
}

func (a *fakeAgent) Negotiate(_ context.Context, in gpt.NegotiationInput) (*gpt.NegotiationResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs = append(a.inputs, in)
	if a.err != nil {
		return nil, a.err
	}
	if len(a.responses) == 0 {
		return &gpt.NegotiationResponse{Decision: gpt.DecisionContinue, ResponseContent: "Tell me more."}, nil
	}
	r := a.responses[0]
	a.responses = a.responses[1:]
	return r, nil
}

type fakePlanner struct {
	mu       sync.Mutex
	criteria *gpt.Criteria
	filters  *model.SearchFilters
	ranked   []gpt.RankedCandidate
	rankErr  error
	draftErr error
	rankedIn []gpt.CandidateSummary
	drafted  []string
}

func (p *fakePlanner) GenerateCriteria(context.Context, gpt.CampaignBrief) (*gpt.Criteria, error) {
	return p.criteria, nil
}

func (p *fakePlanner) ExtractFilters(context.Context, gpt.CampaignBrief, *gpt.Criteria) (*model.SearchFilters, error) {
	f := *p.filters
	return &f, nil
}

func (p *fakePlanner) RankCandidates(_ context.Context, _ gpt.CampaignBrief, _ *gpt.Criteria, cands []gpt.CandidateSummary) ([]gpt.RankedCandidate, error) {
	p.rankedIn = cands
	return p.ranked, p.rankErr
}

func (p *fakePlanner) DraftOutreach(_ context.Context, in gpt.OutreachInput) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draftErr != nil {
		return "", p.draftErr
	}
	p.drafted = append(p.drafted, in.Influencer.ID)
	return "Hi " + in.Influencer.Name + ", want to work on " + in.Brief.Title + "?", nil
}

var testAgentConfig = config.AgentConfig{MaxTurns: 6, DefaultMinRateRatio: 0.8}

func newInquiryUsecase(s *store, agent NegotiationAgent) *InquiryUsecase {
	return NewInquiryUsecase(userStore{s}, influencerStore{s}, businessStore{s}, inquiryStore{s}, messageStore{s},
		agent, testAgentConfig, nil, zap.NewNop())
}
