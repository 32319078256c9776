package usecase

import (
	"context"
	"time"

	"collab-backend/model"
	"collab-backend/pkg/gpt"
)

// The stores below are implemented by the dao repositories.

type UserStore interface {
	Insert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
}

type InfluencerStore interface {
	Upsert(ctx context.Context, p *model.InfluencerProfile) error
	GetByUserID(ctx context.Context, userID string) (*model.InfluencerProfile, error)
	UpdateAgentSettings(ctx context.Context, userID string, s model.AgentSettings) error
	IncrementViewCount(ctx context.Context, userID string) error
	Search(ctx context.Context, f model.SearchFilters, limit int) ([]model.InfluencerProfile, error)
}

type BusinessStore interface {
	Upsert(ctx context.Context, p *model.BusinessProfile) error
	GetByUserID(ctx context.Context, userID string) (*model.BusinessProfile, error)
}

type InquiryStore interface {
	Insert(ctx context.Context, q *model.Inquiry) error
	GetByID(ctx context.Context, id string) (*model.Inquiry, error)
	ListByInfluencer(ctx context.Context, influencerID string) ([]model.Inquiry, error)
	ListByBusiness(ctx context.Context, businessID string) ([]model.Inquiry, error)
	TransitionStatus(ctx context.Context, id string, from []model.InquiryStatus, to model.InquiryStatus, at time.Time) error
	SetRecommendation(ctx context.Context, id string, rec model.Recommendation, reason string, rate *int) error
	ClearRecommendation(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, at time.Time, agentTurns int) error
	CloseIdle(ctx context.Context, before time.Time) (int64, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessagesByInquiryID(ctx context.Context, inquiryID string) ([]model.Message, error)
	GetMessageByID(ctx context.Context, id string) (*model.Message, error)
	ApproveMessage(ctx context.Context, messageID string) error
	DeleteMessage(ctx context.Context, id string) error
	CreateNegotiationLog(ctx context.Context, log *model.NegotiationLog) error
	ListNegotiationLogs(ctx context.Context, inquiryID string) ([]model.NegotiationLog, error)
}

type CampaignStore interface {
	Insert(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListByBusiness(ctx context.Context, businessID string) ([]model.Campaign, error)
	SaveCriteria(ctx context.Context, id, criteria string, filters *model.SearchFilters) error
	TransitionStatus(ctx context.Context, id string, from []model.CampaignStatus, to model.CampaignStatus) error
	ReplaceCandidates(ctx context.Context, campaignID string, cands []model.CampaignCandidate) error
	ListCandidates(ctx context.Context, campaignID string) ([]model.CampaignCandidate, error)
	SaveDraft(ctx context.Context, campaignID, influencerID, draft string) error
	MarkContacted(ctx context.Context, campaignID, influencerID, inquiryID string) error
}

// NegotiationAgent is implemented by *gpt.Client.
type NegotiationAgent interface {
	Negotiate(ctx context.Context, in gpt.NegotiationInput) (*gpt.NegotiationResponse, error)
}

// CampaignPlanner is implemented by *gpt.Client.
type CampaignPlanner interface {
	GenerateCriteria(ctx context.Context, brief gpt.CampaignBrief) (*gpt.Criteria, error)
	ExtractFilters(ctx context.Context, brief gpt.CampaignBrief, criteria *gpt.Criteria) (*model.SearchFilters, error)
	RankCandidates(ctx context.Context, brief gpt.CampaignBrief, criteria *gpt.Criteria, cands []gpt.CandidateSummary) ([]gpt.RankedCandidate, error)
	DraftOutreach(ctx context.Context, in gpt.OutreachInput) (string, error)
}
