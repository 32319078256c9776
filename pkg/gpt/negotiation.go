package gpt

import (
	"context"
	"fmt"
	"strings"
)

const (
	DecisionContinue  = "CONTINUE"
	DecisionRecommend = "RECOMMEND"
)

type MessageHistory struct {
	Sender  string // "Business", "Influencer" or "Agent"
	Content string
}

type NegotiationInput struct {
	InfluencerName string
	Bio            string
	Niches         []string
	FollowersTotal int
	EngagementRate float64
	MinRate        int
	Preferences    string
	Tone           string

	BusinessName string
	Industry     string

	Subject      string
	Description  string
	Deliverables string
	Budget       *int

	History        []MessageHistory
	CurrentMessage string
	Turn           int
	MaxTurns       int

	// Set when the influencer asks for a different reply.
	Instruction       string
	PreviousDraft     string
	PreviousReasoning string
}

type NegotiationResponse struct {
	Intent          string   `json:"intent"`         // OFFER, QUESTION, INFO, SMALLTALK
	Decision        string   `json:"decision"`       // CONTINUE, RECOMMEND
	Recommendation  string   `json:"recommendation"` // approve, reject, needs_info
	OfferedRate     int      `json:"offered_rate"`
	CounterRate     int      `json:"counter_rate"`
	MissingInfo     []string `json:"missing_info"`
	Reasoning       string   `json:"reasoning"`
	ResponseContent string   `json:"response_content"`
}

// Negotiate produces the agent's next chat turn for a business message.
func (c *Client) Negotiate(ctx context.Context, in NegotiationInput) (*NegotiationResponse, error) {
	var resp NegotiationResponse
	if err := c.completeJSON(ctx, "negotiate", negotiationSystemPrompt, buildNegotiationPrompt(in), &resp); err != nil {
		return nil, err
	}
	resp.Decision = strings.ToUpper(strings.TrimSpace(resp.Decision))
	resp.Recommendation = strings.ToLower(strings.TrimSpace(resp.Recommendation))
	resp.Intent = strings.ToUpper(strings.TrimSpace(resp.Intent))
	return &resp, nil
}

func buildNegotiationPrompt(in NegotiationInput) string {
	budget := "not stated"
	if in.Budget != nil {
		budget = fmt.Sprintf("$%d", *in.Budget)
	}
	tone := in.Tone
	if tone == "" {
		tone = "friendly and professional"
	}
	preferences := in.Preferences
	if preferences == "" {
		preferences = "none given"
	}

	historyText := ""
	for _, msg := range in.History {
		historyText += fmt.Sprintf("- %s: %s\n", msg.Sender, msg.Content)
	}
	if historyText == "" {
		historyText = "(no earlier messages)\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `**Influencer You Represent:**
- Name: %s
- Niches: %s
- Audience: %d followers, %.2f%% engagement
- Bio: %s
- Minimum Acceptable Rate: $%d (NEVER agree below this)
- Preferences: %s
- Tone: %s

**Business:**
- Company: %s (%s)

**Inquiry:**
- Subject: %s
- Description: %s
- Deliverables: %s
- Stated Budget: %s

**Conversation History:**
%s
**Current Business Message:**
"%s"

**Turn:** %d of %d. On the last turn you MUST set decision to RECOMMEND.
`, in.InfluencerName, strings.Join(in.Niches, ", "), in.FollowersTotal, in.EngagementRate*100, in.Bio,
		in.MinRate, preferences, tone, in.BusinessName, in.Industry, in.Subject, in.Description, in.Deliverables,
		budget, historyText, in.CurrentMessage, in.Turn, in.MaxTurns)

	if in.Instruction != "" || in.PreviousDraft != "" {
		fmt.Fprintf(&sb, `
**Rewrite Request From The Influencer:**
Your previous draft was rejected.
- Previous draft: "%s"
- Previous reasoning: "%s"
- Instruction: "%s"
Follow the instruction while keeping every rule above.
`, in.PreviousDraft, in.PreviousReasoning, in.Instruction)
	}
	return sb.String()
}
