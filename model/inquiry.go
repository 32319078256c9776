package model

import "time"

type InquiryStatus string

const (
	InquiryOpen        InquiryStatus = "open"
	InquiryNegotiating InquiryStatus = "negotiating"
	InquiryNeedsInfo   InquiryStatus = "needs_info"
	InquiryRecommended InquiryStatus = "recommended"
	InquiryAccepted    InquiryStatus = "accepted"
	InquiryDeclined    InquiryStatus = "declined"
	InquiryClosed      InquiryStatus = "closed"
)

// ActiveInquiryStatuses are the statuses from which an inquiry can still move.
var ActiveInquiryStatuses = []InquiryStatus{InquiryOpen, InquiryNegotiating, InquiryNeedsInfo, InquiryRecommended}

func (s InquiryStatus) Terminal() bool {
	return s == InquiryAccepted || s == InquiryDeclined || s == InquiryClosed
}

type Recommendation string

const (
	RecommendApprove   Recommendation = "approve"
	RecommendReject    Recommendation = "reject"
	RecommendNeedsInfo Recommendation = "needs_info"
)

type Inquiry struct {
	ID                   string         `json:"id"`
	BusinessID           string         `json:"business_id"`
	InfluencerID         string         `json:"influencer_id"`
	CampaignID           *string        `json:"campaign_id,omitempty"` // Nullable
	Subject              string         `json:"subject"`
	Description          string         `json:"description"`
	Budget               *int           `json:"budget,omitempty"`
	Deliverables         string         `json:"deliverables"`
	Status               InquiryStatus  `json:"status"`
	Recommendation       Recommendation `json:"recommendation,omitempty"`
	RecommendationReason string         `json:"recommendation_reason,omitempty"`
	ProposedRate         *int           `json:"proposed_rate,omitempty"`
	AgentTurns           int            `json:"agent_turns"`
	LastActivityAt       time.Time      `json:"last_activity_at"`
	CreatedAt            time.Time      `json:"created_at"`
}
