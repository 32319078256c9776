package model

import "time"

// AgentSettings configure the negotiation agent acting for an influencer.
type AgentSettings struct {
	Enabled       bool   `json:"enabled"`
	MinRate       int    `json:"min_rate"`
	Preferences   string `json:"preferences"`
	Tone          string `json:"tone"`
	ReviewReplies bool   `json:"review_replies"` // hold agent replies as drafts until approved
	MaxTurns      int    `json:"max_turns"`
}

type InfluencerProfile struct {
	UserID         string        `json:"user_id"`
	DisplayName    string        `json:"display_name"`
	Bio            string        `json:"bio"`
	Niches         []string      `json:"niches"`
	Location       string        `json:"location"`
	FollowersTotal int           `json:"followers_total"`
	EngagementRate float64       `json:"engagement_rate"`
	ViewsCount     int           `json:"views_count"`
	Agent          AgentSettings `json:"agent"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type BusinessProfile struct {
	UserID      string    `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website"`
	Industry    string    `json:"industry"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

type SocialAccount struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Platform       Platform   `json:"platform"`
	ExternalID     string     `json:"external_id"`
	Handle         string     `json:"handle"`
	AccessToken    string     `json:"-"`
	RefreshToken   string     `json:"-"`
	TokenExpiry    *time.Time `json:"-"`
	Followers      int        `json:"followers"`
	EngagementRate float64    `json:"engagement_rate"`
	SyncedAt       *time.Time `json:"synced_at,omitempty"`
}

// SearchFilters narrow the influencer directory. Zero values mean "no filter".
type SearchFilters struct {
	Niches       []string `json:"niches"`
	Platforms    []string `json:"platforms"`
	MinFollowers int      `json:"min_followers"`
	MaxRate      int      `json:"max_rate"`
	Location     string   `json:"location"`
	Keywords     []string `json:"keywords"`
}
