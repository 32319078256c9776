package model

import "time"

type SenderRole string

const (
	SenderBusiness   SenderRole = "business"
	SenderInfluencer SenderRole = "influencer"
	SenderAgent      SenderRole = "agent"
)

type Message struct {
	ID            string     `json:"id"`
	InquiryID     string     `json:"inquiry_id"`
	SenderID      string     `json:"sender_id"`
	SenderRole    SenderRole `json:"sender_role"`
	Content       string     `json:"content"`
	IsAIResponse  bool       `json:"is_ai_response"`
	IsApproved    bool       `json:"is_approved"`
	SuggestedRate *int       `json:"suggested_rate,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	// Only filled for the influencer, joined from negotiation_logs.
	AIReasoning string `json:"ai_reasoning,omitempty"`
}

type NegotiationLog struct {
	ID             string         `json:"id"`
	InquiryID      string         `json:"inquiry_id"`
	MessageID      string         `json:"message_id,omitempty"` // agent reply this decision produced
	BusinessID     string         `json:"business_id"`
	OfferedRate    int            `json:"offered_rate"`
	AIDecision     string         `json:"ai_decision"` // CONTINUE, RECOMMEND
	Recommendation Recommendation `json:"recommendation,omitempty"`
	CounterRate    int            `json:"counter_rate"`
	AIReasoning    string         `json:"ai_reasoning"`
	LogTime        time.Time      `json:"log_time"`
}
