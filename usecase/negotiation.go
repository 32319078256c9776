package usecase

import (
	"fmt"

	"collab-backend/model"
	"collab-backend/pkg/gpt"
)

// AgentTurn is the agent's reply after guardrails.
type AgentTurn struct {
	Decision       string
	Recommendation model.Recommendation
	OfferedRate    int
	CounterRate    int
	Reasoning      string
	Reply          string
	Status         model.InquiryStatus
}

// SuggestedRate is the rate an approved reply would commit to.
func (t AgentTurn) SuggestedRate() *int {
	switch {
	case t.Recommendation == model.RecommendApprove && t.OfferedRate > 0:
		v := t.OfferedRate
		return &v
	case t.CounterRate > 0:
		v := t.CounterRate
		return &v
	}
	return nil
}

// effectiveMinRate is the configured floor, or a share of the budget when the
// influencer has not set one.
func effectiveMinRate(minRate int, budget *int, ratio float64) int {
	if minRate > 0 {
		return minRate
	}
	if budget != nil && *budget > 0 && ratio > 0 {
		return int(float64(*budget) * ratio)
	}
	return 0
}

// ApplyGuardrails enforces the rules the model must not break. turn is the
// 1-based number of this agent turn.
func ApplyGuardrails(resp *gpt.NegotiationResponse, minRate, turn, maxTurns int, budget *int) AgentTurn {
	t := AgentTurn{
		Decision:       resp.Decision,
		Recommendation: model.Recommendation(resp.Recommendation),
		OfferedRate:    resp.OfferedRate,
		CounterRate:    resp.CounterRate,
		Reasoning:      resp.Reasoning,
		Reply:          resp.ResponseContent,
	}
	if t.Decision != gpt.DecisionContinue && t.Decision != gpt.DecisionRecommend {
		t.Decision = gpt.DecisionContinue
	}

	// With no rate in the message the stated budget is the offer.
	if t.OfferedRate <= 0 && budget != nil {
		t.OfferedRate = *budget
	}
	known := t.OfferedRate

	if t.CounterRate > 0 && t.CounterRate < minRate {
		t.CounterRate = minRate
	}

	if t.Decision == gpt.DecisionRecommend {
		switch t.Recommendation {
		case model.RecommendApprove, model.RecommendReject, model.RecommendNeedsInfo:
		default:
			t.Recommendation = model.RecommendNeedsInfo
		}
		if t.Recommendation == model.RecommendApprove && known < minRate {
			// The model's reply may already accept the offer, so it is replaced.
			t.Decision = gpt.DecisionContinue
			t.CounterRate = max(t.CounterRate, minRate)
			t.Reasoning += " [approval withheld: offer below minimum rate]"
			t.Reply = fmt.Sprintf("Thank you for the offer! For this scope my rate is $%d. Would that work for you?", t.CounterRate)
		}
	}

	if t.Decision == gpt.DecisionContinue {
		t.Recommendation = ""
		if maxTurns > 0 && turn >= maxTurns {
			t.Decision = gpt.DecisionRecommend
			switch {
			case known <= 0:
				t.Recommendation = model.RecommendNeedsInfo
			case known >= minRate:
				t.Recommendation = model.RecommendApprove
			default:
				t.Recommendation = model.RecommendReject
			}
			t.Reasoning += " [turn limit reached]"
		}
	}

	switch {
	case t.Decision == gpt.DecisionContinue:
		t.Status = model.InquiryNegotiating
	case t.Recommendation == model.RecommendNeedsInfo:
		t.Status = model.InquiryNeedsInfo
	default:
		t.Status = model.InquiryRecommended
	}
	return t
}
