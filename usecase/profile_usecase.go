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
)

const (
	maxAgentTurns = 20
	maxSearchSize = 100
)

type ProfileUsecase struct {
	users       UserStore
	influencers InfluencerStore
	businesses  BusinessStore
	cfg         config.AgentConfig
	log         *zap.Logger
	now         func() time.Time
}

func NewProfileUsecase(users UserStore, influencers InfluencerStore, businesses BusinessStore, cfg config.AgentConfig, log *zap.Logger) *ProfileUsecase {
	return &ProfileUsecase{
		users:       users,
		influencers: influencers,
		businesses:  businesses,
		cfg:         cfg,
		log:         log.Named("profile"),
		now:         time.Now,
	}
}

func (u *ProfileUsecase) requireRole(ctx context.Context, userID string, role model.Role) error {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: %s account required", model.ErrForbidden, role)
	}
	return nil
}

type InfluencerProfileInput struct {
	DisplayName string   `json:"display_name"`
	Bio         string   `json:"bio"`
	Niches      []string `json:"niches"`
	Location    string   `json:"location"`
}

// UpsertInfluencerProfile saves the public part of the profile. Agent settings
// of a new profile start from the configured defaults.
func (u *ProfileUsecase) UpsertInfluencerProfile(ctx context.Context, userID string, in InfluencerProfileInput) (*model.InfluencerProfile, error) {
	if err := u.requireRole(ctx, userID, model.RoleInfluencer); err != nil {
		return nil, err
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", model.ErrInvalidInput)
	}
	var niches []string
	for _, n := range in.Niches {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if strings.Contains(n, ",") {
			return nil, fmt.Errorf("%w: niche %q contains a comma", model.ErrInvalidInput, n)
		}
		niches = append(niches, n)
	}

	p := &model.InfluencerProfile{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Bio:         strings.TrimSpace(in.Bio),
		Niches:      niches,
		Location:    strings.TrimSpace(in.Location),
		Agent: model.AgentSettings{
			ReviewReplies: u.cfg.ReviewRepliesDefault,
		},
		UpdatedAt: u.now(),
	}
	if err := u.influencers.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return u.influencers.GetByUserID(ctx, userID)
}

// GetInfluencerProfile returns a profile. Visitors do not see agent settings,
// and each visit counts as a view.
func (u *ProfileUsecase) GetInfluencerProfile(ctx context.Context, influencerID, viewerID string) (*model.InfluencerProfile, error) {
	p, err := u.influencers.GetByUserID(ctx, influencerID)
	if err != nil {
		return nil, err
	}
	if viewerID == influencerID {
		return p, nil
	}
	if err := u.influencers.IncrementViewCount(ctx, influencerID); err != nil {
		u.log.Warn("increment view count", zap.String("influencer_id", influencerID), zap.Error(err))
	} else {
		p.ViewsCount++
	}
	return publicProfile(p), nil
}

func publicProfile(p *model.InfluencerProfile) *model.InfluencerProfile {
	out := *p
	out.Agent = model.AgentSettings{Enabled: p.Agent.Enabled}
	return &out
}

// UpdateAgentSettings stores the agent configuration. MaxTurns 0 selects the
// configured default.
func (u *ProfileUsecase) UpdateAgentSettings(ctx context.Context, userID string, s model.AgentSettings) (*model.InfluencerProfile, error) {
	if s.MinRate < 0 {
		return nil, fmt.Errorf("%w: min rate must not be negative", model.ErrInvalidInput)
	}
	if s.MaxTurns == 0 {
		s.MaxTurns = u.cfg.MaxTurns
	}
	if s.MaxTurns < 1 || s.MaxTurns > maxAgentTurns {
		return nil, fmt.Errorf("%w: max turns must be between 1 and %d", model.ErrInvalidInput, maxAgentTurns)
	}
	s.Preferences = strings.TrimSpace(s.Preferences)
	s.Tone = strings.TrimSpace(s.Tone)

	if err := u.influencers.UpdateAgentSettings(ctx, userID, s); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: create a profile first", model.ErrNotFound)
		}
		return nil, err
	}
	return u.influencers.GetByUserID(ctx, userID)
}

func (u *ProfileUsecase) SearchInfluencers(ctx context.Context, f model.SearchFilters, limit int) ([]model.InfluencerProfile, error) {
	if limit <= 0 || limit > maxSearchSize {
		limit = maxSearchSize
	}
	if f.MinFollowers < 0 || f.MaxRate < 0 {
		return nil, fmt.Errorf("%w: negative filter", model.ErrInvalidInput)
	}
	profiles, err := u.influencers.Search(ctx, f, limit)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i] = *publicProfile(&profiles[i])
	}
	return profiles, nil
}

type BusinessProfileInput struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
}

func (u *ProfileUsecase) UpsertBusinessProfile(ctx context.Context, userID string, in BusinessProfileInput) (*model.BusinessProfile, error) {
	if err := u.requireRole(ctx, userID, model.RoleBusiness); err != nil {
		return nil, err
	}
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.CompanyName == "" {
		return nil, fmt.Errorf("%w: company name is required", model.ErrInvalidInput)
	}
	p := &model.BusinessProfile{
		UserID:      userID,
		CompanyName: in.CompanyName,
		Website:     strings.TrimSpace(in.Website),
		Industry:    strings.TrimSpace(in.Industry),
		UpdatedAt:   u.now(),
	}
	if err := u.businesses.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *ProfileUsecase) GetBusinessProfile(ctx context.Context, userID string) (*model.BusinessProfile, error) {
	return u.businesses.GetByUserID(ctx, userID)
}
