package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/gpt"
)

// InquiryCreator opens the inquiry an outreach message starts.
type InquiryCreator interface {
	CreateInquiry(ctx context.Context, businessID string, in CreateInquiryInput) (*InquiryResult, error)
}

type CampaignUsecase struct {
	users       UserStore
	influencers InfluencerStore
	businesses  BusinessStore
	campaigns   CampaignStore
	inquiries   InquiryCreator
	planner     CampaignPlanner
	cfg         config.MatchingConfig
	log         *zap.Logger
	now         func() time.Time
}

func NewCampaignUsecase(users UserStore, influencers InfluencerStore, businesses BusinessStore, campaigns CampaignStore,
	inquiries InquiryCreator, planner CampaignPlanner, cfg config.MatchingConfig, log *zap.Logger) *CampaignUsecase {
	return &CampaignUsecase{
		users:       users,
		influencers: influencers,
		businesses:  businesses,
		campaigns:   campaigns,
		inquiries:   inquiries,
		planner:     planner,
		cfg:         cfg,
		log:         log.Named("campaign"),
		now:         time.Now,
	}
}

type CreateCampaignInput struct {
	Title  string `json:"title"`
	Brief  string `json:"brief"`
	Budget int    `json:"budget"`
}

func (u *CampaignUsecase) CreateCampaign(ctx context.Context, businessID string, in CreateCampaignInput) (*model.Campaign, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Brief = strings.TrimSpace(in.Brief)
	if in.Title == "" || in.Brief == "" {
		return nil, fmt.Errorf("%w: title and brief are required", model.ErrInvalidInput)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", model.ErrInvalidInput)
	}
	user, err := u.users.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleBusiness {
		return nil, fmt.Errorf("%w: only businesses can run campaigns", model.ErrForbidden)
	}

	c := &model.Campaign{
		ID:         newID(),
		BusinessID: businessID,
		Title:      in.Title,
		Brief:      in.Brief,
		Budget:     in.Budget,
		Status:     model.CampaignDraft,
		CreatedAt:  u.now(),
	}
	if err := u.campaigns.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	return c, nil
}

func (u *CampaignUsecase) GetCampaign(ctx context.Context, campaignID, businessID string) (*model.Campaign, error) {
	c, err := u.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.BusinessID != businessID {
		return nil, model.ErrForbidden
	}
	return c, nil
}

func (u *CampaignUsecase) ListCampaigns(ctx context.Context, businessID string) ([]model.Campaign, error) {
	return u.campaigns.ListByBusiness(ctx, businessID)
}

func (u *CampaignUsecase) ListCandidates(ctx context.Context, campaignID, businessID string) ([]model.CampaignCandidate, error) {
	if _, err := u.GetCampaign(ctx, campaignID, businessID); err != nil {
		return nil, err
	}
	return u.campaigns.ListCandidates(ctx, campaignID)
}

func (u *CampaignUsecase) CloseCampaign(ctx context.Context, campaignID, businessID string) (*model.Campaign, error) {
	c, err := u.GetCampaign(ctx, campaignID, businessID)
	if err != nil {
		return nil, err
	}
	from := []model.CampaignStatus{model.CampaignDraft, model.CampaignMatched, model.CampaignOutreach}
	if err := u.campaigns.TransitionStatus(ctx, campaignID, from, model.CampaignClosed); err != nil {
		return nil, err
	}
	c.Status = model.CampaignClosed
	return c, nil
}

func (u *CampaignUsecase) brief(ctx context.Context, c *model.Campaign) gpt.CampaignBrief {
	b := gpt.CampaignBrief{Title: c.Title, Brief: c.Brief, Budget: c.Budget}
	if p, err := u.businesses.GetByUserID(ctx, c.BusinessID); err == nil {
		b.BusinessName, b.Industry = p.CompanyName, p.Industry
	}
	return b
}

// scored is a search hit on its way to becoming a candidate.
type scored struct {
	profile   model.InfluencerProfile
	score     float64
	rationale string
}

// MatchCampaign finds and ranks influencers for the campaign brief, replacing
// any earlier candidate list.
func (u *CampaignUsecase) MatchCampaign(ctx context.Context, campaignID, businessID string) ([]model.CampaignCandidate, error) {
	c, err := u.GetCampaign(ctx, campaignID, businessID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignDraft && c.Status != model.CampaignMatched {
		return nil, fmt.Errorf("%w: campaign is %s", model.ErrInvalidTransition, c.Status)
	}
	brief := u.brief(ctx, c)

	// 1. Criteria and filters
	criteria, err := u.planner.GenerateCriteria(ctx, brief)
	if err != nil {
		return nil, fmt.Errorf("generate criteria: %w", err)
	}
	filters, err := u.planner.ExtractFilters(ctx, brief, criteria)
	if err != nil {
		return nil, fmt.Errorf("extract filters: %w", err)
	}
	if c.Budget > 0 && (filters.MaxRate <= 0 || filters.MaxRate > c.Budget) {
		filters.MaxRate = c.Budget
	}
	if err := u.campaigns.SaveCriteria(ctx, campaignID, criteria.String(), filters); err != nil {
		return nil, err
	}

	// 2. Search, relaxing the narrowest filters when nothing matches
	profiles, err := u.influencers.Search(ctx, *filters, u.cfg.CandidatePool)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		relaxed := *filters
		relaxed.MinFollowers = 0
		relaxed.Location = ""
		u.log.Info("no candidates, relaxing filters", zap.String("campaign_id", campaignID))
		if profiles, err = u.influencers.Search(ctx, relaxed, u.cfg.CandidatePool); err != nil {
			return nil, err
		}
	}
	if len(profiles) == 0 {
		return nil, model.ErrNoCandidates
	}

	// 3. Pre-score, then let the model re-rank the best of them
	niches := append(slices.Clone(criteria.Niches), filters.Niches...)
	keywords := append(slices.Clone(criteria.Keywords), filters.Keywords...)
	list := make([]scored, len(profiles))
	for i, p := range profiles {
		score, why := preScore(p, niches, keywords)
		list[i] = scored{profile: p, score: score, rationale: why}
	}
	sortScored(list)
	u.rerank(ctx, brief, criteria, list)
	sortScored(list)

	if k := u.cfg.TopK; k > 0 && len(list) > k {
		list = list[:k]
	}
	cands := make([]model.CampaignCandidate, len(list))
	for i, s := range list {
		cands[i] = model.CampaignCandidate{
			CampaignID:   campaignID,
			InfluencerID: s.profile.UserID,
			DisplayName:  s.profile.DisplayName,
			Followers:    s.profile.FollowersTotal,
			Score:        math.Round(s.score*10) / 10,
			Rationale:    s.rationale,
			Rank:         i + 1,
			Status:       model.CandidateSuggested,
		}
	}
	if err := u.campaigns.ReplaceCandidates(ctx, campaignID, cands); err != nil {
		return nil, err
	}
	if c.Status == model.CampaignDraft {
		if err := u.campaigns.TransitionStatus(ctx, campaignID, []model.CampaignStatus{model.CampaignDraft}, model.CampaignMatched); err != nil {
			return nil, err
		}
	}
	u.log.Info("campaign matched", zap.String("campaign_id", campaignID), zap.Int("candidates", len(cands)))
	return cands, nil
}

// rerank replaces pre-scores with model scores for the first RerankLimit
// entries. On failure the pre-scores stand.
func (u *CampaignUsecase) rerank(ctx context.Context, brief gpt.CampaignBrief, criteria *gpt.Criteria, list []scored) {
	n := len(list)
	if u.cfg.RerankLimit > 0 && n > u.cfg.RerankLimit {
		n = u.cfg.RerankLimit
	}
	summaries := make([]gpt.CandidateSummary, n)
	for i := range n {
		summaries[i] = summarize(list[i].profile)
	}
	ranked, err := u.planner.RankCandidates(ctx, brief, criteria, summaries)
	if err != nil {
		u.log.Warn("re-rank failed, keeping pre-scores", zap.Error(err))
		return
	}
	byID := make(map[string]gpt.RankedCandidate, len(ranked))
	for _, r := range ranked {
		byID[r.InfluencerID] = r
	}
	for i := range n {
		if r, ok := byID[list[i].profile.UserID]; ok {
			list[i].score = r.Score
			if r.Rationale != "" {
				list[i].rationale = r.Rationale
			}
		}
	}
}

func sortScored(list []scored) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.profile.FollowersTotal != b.profile.FollowersTotal {
			return a.profile.FollowersTotal > b.profile.FollowersTotal
		}
		return a.profile.UserID < b.profile.UserID
	})
}

// preScore rates a profile 0..100: niche overlap up to 50, reach up to 25,
// engagement up to 15 and keyword hits in the bio up to 10.
func preScore(p model.InfluencerProfile, niches, keywords []string) (float64, string) {
	var matched []string
	want := make(map[string]bool, len(niches))
	for _, n := range niches {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	for _, n := range p.Niches {
		if want[strings.ToLower(n)] {
			matched = append(matched, n)
		}
	}
	score := 0.0
	if len(want) > 0 {
		score += 50 * math.Min(1, float64(len(matched))/math.Min(float64(len(want)), 3))
	}
	if p.FollowersTotal > 0 {
		score += 25 * math.Min(1, math.Log10(float64(p.FollowersTotal))/7)
	}
	score += 15 * math.Min(1, p.EngagementRate/0.1)

	bio := strings.ToLower(p.Bio)
	hits := 0
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(bio, k) {
			hits++
		}
	}
	score += 10 * math.Min(1, float64(hits)/2)

	why := fmt.Sprintf("%d followers, %.1f%% engagement", p.FollowersTotal, p.EngagementRate*100)
	if len(matched) > 0 {
		why = "Matches " + strings.Join(matched, ", ") + "; " + why
	}
	return score, why
}

func summarize(p model.InfluencerProfile) gpt.CandidateSummary {
	return gpt.CandidateSummary{
		ID:         p.UserID,
		Name:       p.DisplayName,
		Bio:        p.Bio,
		Niches:     p.Niches,
		Location:   p.Location,
		Followers:  p.FollowersTotal,
		Engagement: p.EngagementRate,
		MinRate:    p.Agent.MinRate,
	}
}

// pick returns the candidates named by ids, or those accepted by keep when ids
// is empty.
func pick(cands []model.CampaignCandidate, ids []string, keep func(model.CampaignCandidate) bool) ([]model.CampaignCandidate, error) {
	if len(ids) == 0 {
		var out []model.CampaignCandidate
		for _, c := range cands {
			if keep(c) {
				out = append(out, c)
			}
		}
		return out, nil
	}
	byID := make(map[string]model.CampaignCandidate, len(cands))
	for _, c := range cands {
		byID[c.InfluencerID] = c
	}
	out := make([]model.CampaignCandidate, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a candidate", model.ErrInvalidInput, id)
		}
		out = append(out, c)
	}
	return out, nil
}

func (u *CampaignUsecase) activeCampaign(ctx context.Context, campaignID, businessID string) (*model.Campaign, error) {
	c, err := u.GetCampaign(ctx, campaignID, businessID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignMatched && c.Status != model.CampaignOutreach {
		return nil, fmt.Errorf("%w: campaign is %s", model.ErrInvalidTransition, c.Status)
	}
	return c, nil
}

// DraftOutreach writes first-contact messages for the chosen candidates, or
// for every suggested one when none are named.
func (u *CampaignUsecase) DraftOutreach(ctx context.Context, campaignID, businessID string, influencerIDs []string) ([]model.CampaignCandidate, error) {
	c, err := u.activeCampaign(ctx, campaignID, businessID)
	if err != nil {
		return nil, err
	}
	all, err := u.campaigns.ListCandidates(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	targets, err := pick(all, influencerIDs, func(c model.CampaignCandidate) bool { return c.Status == model.CandidateSuggested })
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.Status == model.CandidateContacted {
			return nil, fmt.Errorf("%w: %s was already contacted", model.ErrInvalidTransition, t.InfluencerID)
		}
	}

	brief := u.brief(ctx, c)
	g, gctx := errgroup.WithContext(ctx)
	if u.cfg.OutreachConcurrency > 0 {
		g.SetLimit(u.cfg.OutreachConcurrency)
	}
	for i := range targets {
		g.Go(func() error {
			t := &targets[i]
			profile, err := u.influencers.GetByUserID(gctx, t.InfluencerID)
			if err != nil {
				return err
			}
			draft, err := u.planner.DraftOutreach(gctx, gpt.OutreachInput{
				Brief:      brief,
				Influencer: summarize(*profile),
				Rationale:  t.Rationale,
			})
			if err != nil {
				return fmt.Errorf("draft outreach for %s: %w", t.InfluencerID, err)
			}
			if err := u.campaigns.SaveDraft(gctx, campaignID, t.InfluencerID, draft); err != nil {
				return err
			}
			t.OutreachDraft = draft
			t.Status = model.CandidateDrafted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}

// SendOutreach opens an inquiry per drafted candidate so the influencer's
// agent picks up the conversation.
func (u *CampaignUsecase) SendOutreach(ctx context.Context, campaignID, businessID string, influencerIDs []string) ([]model.CampaignCandidate, error) {
	c, err := u.activeCampaign(ctx, campaignID, businessID)
	if err != nil {
		return nil, err
	}
	all, err := u.campaigns.ListCandidates(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	targets, err := pick(all, influencerIDs, func(c model.CampaignCandidate) bool { return c.Status == model.CandidateDrafted })
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no drafted candidates", model.ErrInvalidInput)
	}
	for _, t := range targets {
		if t.Status != model.CandidateDrafted {
			return nil, fmt.Errorf("%w: %s has no pending draft", model.ErrInvalidTransition, t.InfluencerID)
		}
	}

	var budget *int
	if c.Budget > 0 {
		budget = &c.Budget
	}
	sent := make([]model.CampaignCandidate, 0, len(targets))
	sendErr := func() error {
		for _, t := range targets {
			res, err := u.inquiries.CreateInquiry(ctx, businessID, CreateInquiryInput{
				InfluencerID: t.InfluencerID,
				Subject:      c.Title,
				Description:  t.OutreachDraft,
				Budget:       budget,
				CampaignID:   &c.ID,
			})
			if err != nil {
				return fmt.Errorf("open inquiry for %s: %w", t.InfluencerID, err)
			}
			if err := u.campaigns.MarkContacted(ctx, campaignID, t.InfluencerID, res.Inquiry.ID); err != nil {
				return err
			}
			id := res.Inquiry.ID
			t.InquiryID = &id
			t.Status = model.CandidateContacted
			sent = append(sent, t)
		}
		return nil
	}()

	// Once anyone has been contacted the campaign is in outreach, even if a later send failed.
	if len(sent) > 0 && c.Status == model.CampaignMatched {
		err := u.campaigns.TransitionStatus(ctx, campaignID, []model.CampaignStatus{model.CampaignMatched}, model.CampaignOutreach)
		if err != nil && !errors.Is(err, model.ErrInvalidTransition) {
			return sent, errors.Join(sendErr, err)
		}
	}
	if sendErr != nil {
		u.log.Warn("outreach partially sent", zap.String("campaign_id", campaignID), zap.Int("count", len(sent)), zap.Error(sendErr))
		return sent, sendErr
	}
	u.log.Info("outreach sent", zap.String("campaign_id", campaignID), zap.Int("count", len(sent)))
	return sent, nil
}
