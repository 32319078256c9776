package model

import "time"

type Role string

const (
	RoleInfluencer Role = "influencer"
	RoleBusiness   Role = "business"
)

func (r Role) Valid() bool {
	return r == RoleInfluencer || r == RoleBusiness
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
