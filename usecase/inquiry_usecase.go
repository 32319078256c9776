package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"collab-backend/config"
	"collab-backend/model"
	"collab-backend/pkg/gpt"
	"collab-backend/pkg/metrics"
)

type InquiryUsecase struct {
	users       UserStore
	influencers InfluencerStore
	businesses  BusinessStore
	inquiries   InquiryStore
	messages    MessageStore
	agent       NegotiationAgent
	cfg         config.AgentConfig
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewInquiryUsecase(users UserStore, influencers InfluencerStore, businesses BusinessStore, inquiries InquiryStore,
	messages MessageStore, agent NegotiationAgent, cfg config.AgentConfig, m *metrics.Metrics, log *zap.Logger) *InquiryUsecase {
	return &InquiryUsecase{
		users:       users,
		influencers: influencers,
		businesses:  businesses,
		inquiries:   inquiries,
		messages:    messages,
		agent:       agent,
		cfg:         cfg,
		metrics:     m,
		log:         log.Named("inquiry"),
		now:         time.Now,
	}
}

type CreateInquiryInput struct {
	InfluencerID string  `json:"influencer_id"`
	Subject      string  `json:"subject"`
	Description  string  `json:"description"`
	Deliverables string  `json:"deliverables"`
	Budget       *int    `json:"budget,omitempty"`
	CampaignID   *string `json:"-"`
}

// InquiryResult is an inquiry with its opening message and the agent's first reply, if any.
type InquiryResult struct {
	Inquiry *model.Inquiry `json:"inquiry"`
	Message *model.Message `json:"message"`
	Reply   *model.Message `json:"reply,omitempty"`
}

// regeneration carries the draft an influencer asked to replace.
type regeneration struct {
	instruction string
	draft       *model.Message
	reasoning   string
}

func (u *InquiryUsecase) CreateInquiry(ctx context.Context, businessID string, in CreateInquiryInput) (*InquiryResult, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if in.Subject == "" || in.Description == "" {
		return nil, fmt.Errorf("%w: subject and description are required", model.ErrInvalidInput)
	}
	if in.Budget != nil && *in.Budget < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", model.ErrInvalidInput)
	}
	if in.InfluencerID == businessID {
		return nil, fmt.Errorf("%w: cannot send an inquiry to yourself", model.ErrInvalidInput)
	}

	business, err := u.users.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business.Role != model.RoleBusiness {
		return nil, fmt.Errorf("%w: only businesses can send inquiries", model.ErrForbidden)
	}
	profile, err := u.influencers.GetByUserID(ctx, in.InfluencerID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	inquiry := &model.Inquiry{
		ID:             newID(),
		BusinessID:     businessID,
		InfluencerID:   in.InfluencerID,
		CampaignID:     in.CampaignID,
		Subject:        in.Subject,
		Description:    in.Description,
		Budget:         in.Budget,
		Deliverables:   in.Deliverables,
		Status:         model.InquiryOpen,
		LastActivityAt: now,
		CreatedAt:      now,
	}
	if err := u.inquiries.Insert(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("insert inquiry: %w", err)
	}
	u.metrics.InquiryTransition(string(model.InquiryOpen))

	msg := &model.Message{
		ID:         newID(),
		InquiryID:  inquiry.ID,
		SenderID:   businessID,
		SenderRole: model.SenderBusiness,
		Content:    in.Description,
		IsApproved: true,
		CreatedAt:  now,
	}
	if err := u.messages.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store opening message: %w", err)
	}

	res := &InquiryResult{Inquiry: inquiry, Message: msg}
	if profile.Agent.Enabled {
		reply, err := u.runAgent(ctx, inquiry, profile, msg, nil)
		if err != nil {
			u.log.Warn("agent reply failed", zap.String("inquiry_id", inquiry.ID), zap.Error(err))
		}
		res.Reply = businessView(reply)
	}
	return res, nil
}

// businessView hides what the business must not see of an agent reply.
func businessView(reply *model.Message) *model.Message {
	if reply == nil || !reply.IsApproved {
		return nil
	}
	out := *reply
	out.AIReasoning = ""
	return &out
}

// SendMessage stores a participant message. Business messages get an agent
// reply when the influencer has the agent enabled; the reply is returned only
// once it is visible to the business.
func (u *InquiryUsecase) SendMessage(ctx context.Context, inquiryID, senderID, content string) (*model.Message, *model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, fmt.Errorf("%w: message is empty", model.ErrInvalidInput)
	}

	// 1. Load the inquiry and check the sender
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, nil, err
	}
	var role model.SenderRole
	switch senderID {
	case inquiry.BusinessID:
		role = model.SenderBusiness
	case inquiry.InfluencerID:
		role = model.SenderInfluencer
	default:
		return nil, nil, model.ErrForbidden
	}
	if inquiry.Status.Terminal() {
		return nil, nil, model.ErrInquiryClosed
	}

	// 2. Store the message
	now := u.now()
	msg := &model.Message{
		ID:         newID(),
		InquiryID:  inquiryID,
		SenderID:   senderID,
		SenderRole: role,
		Content:    content,
		IsApproved: true,
		CreatedAt:  now,
	}
	if err := u.messages.CreateMessage(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("store message: %w", err)
	}
	if err := u.inquiries.Touch(ctx, inquiryID, now, 0); err != nil {
		return nil, nil, err
	}
	inquiry.LastActivityAt = now

	if role == model.SenderInfluencer {
		return msg, nil, nil
	}

	// 3. A new business message re-opens a recommended inquiry
	if inquiry.Status == model.InquiryRecommended {
		if err := u.reopen(ctx, inquiry, now); err != nil {
			return nil, nil, err
		}
	}

	// 4. Let the agent answer
	profile, err := u.influencers.GetByUserID(ctx, inquiry.InfluencerID)
	if err != nil {
		return nil, nil, err
	}
	if !profile.Agent.Enabled {
		return msg, nil, nil
	}
	reply, err := u.runAgent(ctx, inquiry, profile, msg, nil)
	if err != nil {
		u.log.Warn("agent reply failed", zap.String("inquiry_id", inquiryID), zap.Error(err))
		return msg, nil, nil
	}
	return msg, businessView(reply), nil
}

func (u *InquiryUsecase) reopen(ctx context.Context, inquiry *model.Inquiry, at time.Time) error {
	err := u.inquiries.TransitionStatus(ctx, inquiry.ID, []model.InquiryStatus{model.InquiryRecommended}, model.InquiryNegotiating, at)
	if errors.Is(err, model.ErrInvalidTransition) {
		// Someone else moved it first.
		return nil
	}
	if err != nil {
		return err
	}
	if err := u.inquiries.ClearRecommendation(ctx, inquiry.ID); err != nil {
		return err
	}
	inquiry.Status = model.InquiryNegotiating
	inquiry.Recommendation = ""
	inquiry.RecommendationReason = ""
	inquiry.ProposedRate = nil
	u.metrics.InquiryTransition(string(model.InquiryNegotiating))
	return nil
}

// runAgent asks the agent for the next turn on trigger and applies its outcome
// to the inquiry.
func (u *InquiryUsecase) runAgent(ctx context.Context, inquiry *model.Inquiry, profile *model.InfluencerProfile, trigger *model.Message, regen *regeneration) (*model.Message, error) {
	// 1. Build the conversation so far
	msgs, err := u.messages.GetMessagesByInquiryID(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	var history []gpt.MessageHistory
	for _, m := range msgs {
		if m.ID == trigger.ID || !m.IsApproved {
			continue
		}
		if regen != nil && regen.draft != nil && m.ID == regen.draft.ID {
			continue
		}
		history = append(history, gpt.MessageHistory{Sender: historySender(m.SenderRole), Content: m.Content})
	}

	maxTurns := profile.Agent.MaxTurns
	if maxTurns <= 0 {
		maxTurns = u.cfg.MaxTurns
	}
	minRate := effectiveMinRate(profile.Agent.MinRate, inquiry.Budget, u.cfg.DefaultMinRateRatio)

	// A regenerated draft replaces a turn that was already counted.
	turn, addTurns := inquiry.AgentTurns+1, 1
	if regen != nil && regen.draft != nil && inquiry.AgentTurns > 0 {
		turn, addTurns = inquiry.AgentTurns, 0
	}

	input := gpt.NegotiationInput{
		InfluencerName: profile.DisplayName,
		Bio:            profile.Bio,
		Niches:         profile.Niches,
		FollowersTotal: profile.FollowersTotal,
		EngagementRate: profile.EngagementRate,
		MinRate:        minRate,
		Preferences:    profile.Agent.Preferences,
		Tone:           profile.Agent.Tone,
		Subject:        inquiry.Subject,
		Description:    inquiry.Description,
		Deliverables:   inquiry.Deliverables,
		Budget:         inquiry.Budget,
		History:        history,
		CurrentMessage: trigger.Content,
		Turn:           turn,
		MaxTurns:       maxTurns,
	}
	input.BusinessName, input.Industry = u.businessInfo(ctx, inquiry.BusinessID)
	if regen != nil {
		input.Instruction = regen.instruction
		input.PreviousReasoning = regen.reasoning
		if regen.draft != nil {
			input.PreviousDraft = regen.draft.Content
		}
	}

	// 2. Ask the model and apply the guardrails
	resp, err := u.agent.Negotiate(ctx, input)
	if err != nil {
		return nil, err
	}
	out := ApplyGuardrails(resp, minRate, turn, maxTurns, inquiry.Budget)
	u.metrics.AgentDecision(out.Decision, string(out.Recommendation))

	// 3. Store the reply and the decision log
	now := u.now()
	reply := &model.Message{
		ID:            newID(),
		InquiryID:     inquiry.ID,
		SenderID:      inquiry.InfluencerID,
		SenderRole:    model.SenderAgent,
		Content:       out.Reply,
		IsAIResponse:  true,
		IsApproved:    !profile.Agent.ReviewReplies,
		SuggestedRate: out.SuggestedRate(),
		CreatedAt:     now,
		AIReasoning:   out.Reasoning,
	}
	if err := u.messages.CreateMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("store agent reply: %w", err)
	}
	if regen != nil && regen.draft != nil {
		if err := u.messages.DeleteMessage(ctx, regen.draft.ID); err != nil {
			u.log.Error("delete replaced draft", zap.String("message_id", regen.draft.ID), zap.Error(err))
		}
	}

	decision := out.Decision
	if regen != nil {
		decision += " (RETRY)"
	}
	logEntry := &model.NegotiationLog{
		ID:             newID(),
		InquiryID:      inquiry.ID,
		MessageID:      reply.ID,
		BusinessID:     inquiry.BusinessID,
		OfferedRate:    out.OfferedRate,
		AIDecision:     decision,
		Recommendation: out.Recommendation,
		CounterRate:    out.CounterRate,
		AIReasoning:    out.Reasoning,
		LogTime:        now,
	}
	if err := u.messages.CreateNegotiationLog(ctx, logEntry); err != nil {
		// The reply is already stored; a missing log entry only loses the audit trail.
		u.log.Error("store negotiation log", zap.String("inquiry_id", inquiry.ID), zap.Error(err))
	}

	// 4. Move the inquiry along
	if out.Status != inquiry.Status {
		err := u.inquiries.TransitionStatus(ctx, inquiry.ID, model.ActiveInquiryStatuses, out.Status, now)
		switch {
		case errors.Is(err, model.ErrInvalidTransition):
			u.log.Info("inquiry left active state during agent turn", zap.String("inquiry_id", inquiry.ID))
		case err != nil:
			return reply, err
		default:
			inquiry.Status = out.Status
			u.metrics.InquiryTransition(string(out.Status))
		}
	}
	if out.Decision == gpt.DecisionRecommend {
		rate := out.SuggestedRate()
		if err := u.inquiries.SetRecommendation(ctx, inquiry.ID, out.Recommendation, out.Reasoning, rate); err != nil {
			return reply, err
		}
		inquiry.Recommendation = out.Recommendation
		inquiry.RecommendationReason = out.Reasoning
		inquiry.ProposedRate = rate
	}
	if err := u.inquiries.Touch(ctx, inquiry.ID, now, addTurns); err != nil {
		return reply, err
	}
	inquiry.AgentTurns += addTurns
	inquiry.LastActivityAt = now

	u.log.Debug("agent turn",
		zap.String("inquiry_id", inquiry.ID),
		zap.String("decision", out.Decision),
		zap.String("recommendation", string(out.Recommendation)),
		zap.Int("turn", turn),
	)
	return reply, nil
}

func historySender(r model.SenderRole) string {
	switch r {
	case model.SenderBusiness:
		return "Business"
	case model.SenderAgent:
		return "Agent"
	default:
		return "Influencer"
	}
}

func (u *InquiryUsecase) businessInfo(ctx context.Context, businessID string) (string, string) {
	if p, err := u.businesses.GetByUserID(ctx, businessID); err == nil {
		return p.CompanyName, p.Industry
	}
	if user, err := u.users.GetByID(ctx, businessID); err == nil {
		return user.Name, ""
	}
	return "", ""
}

// GetMessages returns the conversation as the requester may see it. The
// business never sees drafts or the agent's reasoning.
func (u *InquiryUsecase) GetMessages(ctx context.Context, inquiryID, requesterID string) ([]model.Message, error) {
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	msgs, err := u.messages.GetMessagesByInquiryID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	switch requesterID {
	case inquiry.InfluencerID:
		return msgs, nil
	case inquiry.BusinessID:
		visible := make([]model.Message, 0, len(msgs))
		for _, m := range msgs {
			if !m.IsApproved {
				continue
			}
			m.AIReasoning = ""
			visible = append(visible, m)
		}
		return visible, nil
	default:
		return nil, model.ErrForbidden
	}
}

// draftFor loads an unapproved agent draft owned by the influencer.
func (u *InquiryUsecase) draftFor(ctx context.Context, messageID, userID string) (*model.Message, *model.Inquiry, error) {
	msg, err := u.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	inquiry, err := u.inquiries.GetByID(ctx, msg.InquiryID)
	if err != nil {
		return nil, nil, err
	}
	if inquiry.InfluencerID != userID {
		return nil, nil, model.ErrForbidden
	}
	if !msg.IsAIResponse || msg.IsApproved {
		return nil, nil, fmt.Errorf("%w: message is not a pending draft", model.ErrInvalidTransition)
	}
	return msg, inquiry, nil
}

// ApproveMessage releases an agent draft to the business.
func (u *InquiryUsecase) ApproveMessage(ctx context.Context, messageID, userID string) (*model.Message, error) {
	msg, inquiry, err := u.draftFor(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if inquiry.Status.Terminal() {
		return nil, model.ErrInquiryClosed
	}
	if err := u.messages.ApproveMessage(ctx, messageID); err != nil {
		return nil, err
	}
	if err := u.inquiries.Touch(ctx, inquiry.ID, u.now(), 0); err != nil {
		return nil, err
	}
	msg.IsApproved = true
	return msg, nil
}

// RejectMessage discards an agent draft.
func (u *InquiryUsecase) RejectMessage(ctx context.Context, messageID, userID string) error {
	if _, _, err := u.draftFor(ctx, messageID, userID); err != nil {
		return err
	}
	return u.messages.DeleteMessage(ctx, messageID)
}

// RegenerateReply replaces the pending draft with a new agent reply to the
// latest business message, steered by the influencer's instruction.
func (u *InquiryUsecase) RegenerateReply(ctx context.Context, inquiryID, userID, instruction string) (*model.Message, error) {
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.InfluencerID != userID {
		return nil, model.ErrForbidden
	}
	if inquiry.Status.Terminal() {
		return nil, model.ErrInquiryClosed
	}
	profile, err := u.influencers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Agent.Enabled {
		return nil, fmt.Errorf("%w: agent is disabled", model.ErrInvalidInput)
	}

	msgs, err := u.messages.GetMessagesByInquiryID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	var lastBusiness, draft *model.Message
	for i := range msgs {
		m := &msgs[i]
		switch {
		case m.SenderRole == model.SenderBusiness:
			lastBusiness = m
		case m.IsAIResponse && !m.IsApproved:
			draft = m
		}
	}
	if lastBusiness == nil {
		return nil, fmt.Errorf("%w: no business message to answer", model.ErrInvalidInput)
	}

	regen := &regeneration{instruction: strings.TrimSpace(instruction)}
	if draft != nil {
		regen.draft = draft
		regen.reasoning = draft.AIReasoning
	}
	// The old draft is removed only once its replacement is stored.
	return u.runAgent(ctx, inquiry, profile, lastBusiness, regen)
}

// Decide records the influencer's final answer on the inquiry.
func (u *InquiryUsecase) Decide(ctx context.Context, inquiryID, influencerID string, accept bool) (*model.Inquiry, error) {
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.InfluencerID != influencerID {
		return nil, model.ErrForbidden
	}
	to := model.InquiryDeclined
	if accept {
		to = model.InquiryAccepted
	}
	now := u.now()
	if err := u.inquiries.TransitionStatus(ctx, inquiryID, model.ActiveInquiryStatuses, to, now); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			return nil, model.ErrInquiryClosed
		}
		return nil, err
	}
	u.metrics.InquiryTransition(string(to))
	inquiry.Status = to
	inquiry.LastActivityAt = now
	return inquiry, nil
}

func (u *InquiryUsecase) ListInquiries(ctx context.Context, userID string) ([]model.Inquiry, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleBusiness {
		return u.inquiries.ListByBusiness(ctx, userID)
	}
	return u.inquiries.ListByInfluencer(ctx, userID)
}

func (u *InquiryUsecase) GetInquiry(ctx context.Context, inquiryID, userID string) (*model.Inquiry, error) {
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if userID != inquiry.BusinessID && userID != inquiry.InfluencerID {
		return nil, model.ErrForbidden
	}
	return inquiry, nil
}

func (u *InquiryUsecase) ListNegotiationLogs(ctx context.Context, inquiryID, userID string) ([]model.NegotiationLog, error) {
	inquiry, err := u.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.InfluencerID != userID {
		return nil, model.ErrForbidden
	}
	return u.messages.ListNegotiationLogs(ctx, inquiryID)
}
