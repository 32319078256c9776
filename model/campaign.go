package model

import "time"

type CampaignStatus string

const (
	CampaignDraft    CampaignStatus = "draft"
	CampaignMatched  CampaignStatus = "matched"
	CampaignOutreach CampaignStatus = "outreach"
	CampaignClosed   CampaignStatus = "closed"
)

type Campaign struct {
	ID         string         `json:"id"`
	BusinessID string         `json:"business_id"`
	Title      string         `json:"title"`
	Brief      string         `json:"brief"`
	Budget     int            `json:"budget"`
	Status     CampaignStatus `json:"status"`
	Criteria   string         `json:"criteria,omitempty"`
	Filters    *SearchFilters `json:"filters,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type CandidateStatus string

const (
	CandidateSuggested CandidateStatus = "suggested"
	CandidateDrafted   CandidateStatus = "drafted"
	CandidateContacted CandidateStatus = "contacted"
)

type CampaignCandidate struct {
	CampaignID    string          `json:"campaign_id"`
	InfluencerID  string          `json:"influencer_id"`
	DisplayName   string          `json:"display_name"`
	Followers     int             `json:"followers"`
	Score         float64         `json:"score"`
	Rationale     string          `json:"rationale"`
	Rank          int             `json:"rank"`
	OutreachDraft string          `json:"outreach_draft,omitempty"`
	InquiryID     *string         `json:"inquiry_id,omitempty"`
	Status        CandidateStatus `json:"status"`
}
