package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"collab-backend/model"
)

type CampaignBrief struct {
	Title        string
	Brief        string
	Budget       int
	BusinessName string
	Industry     string
}

type Criteria struct {
	IdealProfile string   `json:"ideal_profile"`
	Niches       []string `json:"niches"`
	Platforms    []string `json:"platforms"`
	Audience     string   `json:"audience"`
	Keywords     []string `json:"keywords"`
}

// String renders the criteria as stored on the campaign.
func (c *Criteria) String() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s\nNiches: %s\nPlatforms: %s\nAudience: %s\nKeywords: %s",
		c.IdealProfile, strings.Join(c.Niches, ", "), strings.Join(c.Platforms, ", "), c.Audience, strings.Join(c.Keywords, ", "))
}

type CandidateSummary struct {
	ID         string   `json:"influencer_id"`
	Name       string   `json:"name"`
	Bio        string   `json:"bio"`
	Niches     []string `json:"niches"`
	Location   string   `json:"location"`
	Followers  int      `json:"followers"`
	Engagement float64  `json:"engagement_rate"`
	MinRate    int      `json:"min_rate"`
}

type RankedCandidate struct {
	InfluencerID string  `json:"influencer_id"`
	Score        float64 `json:"score"`
	Rationale    string  `json:"rationale"`
}

type OutreachInput struct {
	Brief      CampaignBrief
	Influencer CandidateSummary
	Rationale  string
}

func briefText(b CampaignBrief) string {
	budget := "not stated"
	if b.Budget > 0 {
		budget = fmt.Sprintf("$%d", b.Budget)
	}
	return fmt.Sprintf("Brand: %s (%s)\nCampaign: %s\nBrief: %s\nBudget per influencer: %s\n",
		b.BusinessName, b.Industry, b.Title, b.Brief, budget)
}

// GenerateCriteria describes the influencer a campaign should target.
func (c *Client) GenerateCriteria(ctx context.Context, brief CampaignBrief) (*Criteria, error) {
	var out Criteria
	if err := c.completeJSON(ctx, "criteria", criteriaSystemPrompt, briefText(brief), &out); err != nil {
		return nil, err
	}
	out.Niches = lower(out.Niches)
	out.Platforms = lower(out.Platforms)
	return &out, nil
}

// ExtractFilters turns criteria into directory filters.
func (c *Client) ExtractFilters(ctx context.Context, brief CampaignBrief, criteria *Criteria) (*model.SearchFilters, error) {
	var out model.SearchFilters
	prompt := briefText(brief) + "\nCriteria:\n" + criteria.String()
	if err := c.completeJSON(ctx, "filters", filterSystemPrompt, prompt, &out); err != nil {
		return nil, err
	}
	out.Niches = lower(out.Niches)
	out.Platforms = lower(out.Platforms)
	if out.MinFollowers < 0 {
		out.MinFollowers = 0
	}
	if out.MaxRate < 0 {
		out.MaxRate = 0
	}
	return &out, nil
}

// RankCandidates scores candidates 0-100. Rankings for ids that were not
// submitted, and duplicates, are dropped.
func (c *Client) RankCandidates(ctx context.Context, brief CampaignBrief, criteria *Criteria, cands []CandidateSummary) ([]RankedCandidate, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(cands)
	if err != nil {
		return nil, err
	}
	prompt := briefText(brief) + "\nCriteria:\n" + criteria.String() + "\n\nCandidates:\n" + string(raw)

	var out struct {
		Rankings []RankedCandidate `json:"rankings"`
	}
	if err := c.completeJSON(ctx, "rank", rankSystemPrompt, prompt, &out); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(cands))
	for _, cand := range cands {
		known[cand.ID] = true
	}
	seen := make(map[string]bool, len(out.Rankings))
	ranked := make([]RankedCandidate, 0, len(out.Rankings))
	for _, r := range out.Rankings {
		if !known[r.InfluencerID] || seen[r.InfluencerID] {
			continue
		}
		seen[r.InfluencerID] = true
		r.Score = clamp(r.Score, 0, 100)
		ranked = append(ranked, r)
	}
	return ranked, nil
}

// DraftOutreach writes the first message a business sends to a candidate.
func (c *Client) DraftOutreach(ctx context.Context, in OutreachInput) (string, error) {
	prompt := fmt.Sprintf("%s\nInfluencer: %s\nNiches: %s\nFollowers: %d\nBio: %s\nWhy they fit: %s\n",
		briefText(in.Brief), in.Influencer.Name, strings.Join(in.Influencer.Niches, ", "), in.Influencer.Followers,
		in.Influencer.Bio, in.Rationale)

	var out struct {
		Message string `json:"message"`
	}
	if err := c.completeJSON(ctx, "outreach", outreachSystemPrompt, prompt, &out); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(out.Message)
	if msg == "" {
		return "", errors.New("outreach: model returned an empty message")
	}
	return msg, nil
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
