package dao

import (
	"context"
	"database/sql"
	"time"

	"collab-backend/model"
)

type SocialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

// Upsert stores an account keyed by (user_id, platform); reconnecting replaces
// the tokens and stats.
func (r *SocialAccountRepository) Upsert(ctx context.Context, a *model.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (id, user_id, platform, external_id, handle, access_token, refresh_token, token_expiry, followers, engagement_rate, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE external_id = VALUES(external_id), handle = VALUES(handle),
			access_token = VALUES(access_token), refresh_token = VALUES(refresh_token), token_expiry = VALUES(token_expiry),
			followers = VALUES(followers), engagement_rate = VALUES(engagement_rate), synced_at = VALUES(synced_at)
	`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.Platform, a.ExternalID, a.Handle, a.AccessToken,
		a.RefreshToken, nullTime(a.TokenExpiry), a.Followers, a.EngagementRate, nullTime(a.SyncedAt))
	return err
}

func (r *SocialAccountRepository) ListByUser(ctx context.Context, userID string) ([]model.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, external_id, handle, access_token, refresh_token, token_expiry, followers, engagement_rate, synced_at
		FROM social_accounts WHERE user_id = ? ORDER BY platform
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SocialAccount
	for rows.Next() {
		var a model.SocialAccount
		var access, refresh sql.NullString
		var expiry, synced sql.NullTime
		if err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.ExternalID, &a.Handle, &access, &refresh, &expiry,
			&a.Followers, &a.EngagementRate, &synced); err != nil {
			return nil, err
		}
		a.AccessToken = access.String
		a.RefreshToken = refresh.String
		a.TokenExpiry = timePtr(expiry)
		a.SyncedAt = timePtr(synced)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SocialAccountRepository) UpdateToken(ctx context.Context, id, access, refresh string, expiry *time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET access_token = ?, refresh_token = ?, token_expiry = ? WHERE id = ?`,
		access, refresh, nullTime(expiry), id)
	return err
}

func (r *SocialAccountRepository) UpdateStats(ctx context.Context, id string, followers int, engagement float64, syncedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET followers = ?, engagement_rate = ?, synced_at = ? WHERE id = ?`,
		followers, engagement, syncedAt, id)
	return err
}
