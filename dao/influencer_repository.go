package dao

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"collab-backend/model"
)

type InfluencerRepository struct {
	db *sql.DB
}

func NewInfluencerRepository(db *sql.DB) *InfluencerRepository {
	return &InfluencerRepository{db: db}
}

const influencerColumns = `p.user_id, p.display_name, p.bio, p.niches, p.location, p.followers_total, p.engagement_rate,
	p.views_count, p.agent_enabled, p.min_rate, p.preferences, p.tone, p.review_replies, p.max_turns, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfluencer(row rowScanner) (*model.InfluencerProfile, error) {
	var p model.InfluencerProfile
	var bio, niches, preferences sql.NullString
	if err := row.Scan(&p.UserID, &p.DisplayName, &bio, &niches, &p.Location, &p.FollowersTotal, &p.EngagementRate,
		&p.ViewsCount, &p.Agent.Enabled, &p.Agent.MinRate, &preferences, &p.Agent.Tone, &p.Agent.ReviewReplies,
		&p.Agent.MaxTurns, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Bio = bio.String
	p.Niches = splitNiches(niches.String)
	p.Agent.Preferences = preferences.String
	return &p, nil
}

// Upsert writes the public profile fields. Agent settings and stats are left
// untouched on update.
func (r *InfluencerRepository) Upsert(ctx context.Context, p *model.InfluencerProfile) error {
	query := `
		INSERT INTO influencer_profiles (user_id, display_name, bio, niches, location, agent_enabled, min_rate, preferences, tone, review_replies, max_turns, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE display_name = VALUES(display_name), bio = VALUES(bio), niches = VALUES(niches),
			location = VALUES(location), updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.DisplayName, p.Bio, joinNiches(p.Niches), p.Location,
		p.Agent.Enabled, p.Agent.MinRate, p.Agent.Preferences, p.Agent.Tone, p.Agent.ReviewReplies, p.Agent.MaxTurns, p.UpdatedAt)
	return err
}

func (r *InfluencerRepository) GetByUserID(ctx context.Context, userID string) (*model.InfluencerProfile, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencer_profiles p WHERE p.user_id = ?`
	p, err := scanInfluencer(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *InfluencerRepository) UpdateAgentSettings(ctx context.Context, userID string, s model.AgentSettings) error {
	query := `
		UPDATE influencer_profiles
		SET agent_enabled = ?, min_rate = ?, preferences = ?, tone = ?, review_replies = ?, max_turns = ?
		WHERE user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query, s.Enabled, s.MinRate, s.Preferences, s.Tone, s.ReviewReplies, s.MaxTurns, userID)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrNotFound)
}

func (r *InfluencerRepository) IncrementViewCount(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE influencer_profiles SET views_count = views_count + 1 WHERE user_id = ?`, userID)
	return err
}

func (r *InfluencerRepository) UpdateStats(ctx context.Context, userID string, followers int, engagement float64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE influencer_profiles SET followers_total = ?, engagement_rate = ? WHERE user_id = ?`,
		followers, engagement, userID)
	return err
}

// Search returns profiles matching every non-empty filter, most followed first.
func (r *InfluencerRepository) Search(ctx context.Context, f model.SearchFilters, limit int) ([]model.InfluencerProfile, error) {
	query, args := buildSearchQuery(f, limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InfluencerProfile
	for rows.Next() {
		p, err := scanInfluencer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func buildSearchQuery(f model.SearchFilters, limit int) (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString(`SELECT ` + influencerColumns + ` FROM influencer_profiles p WHERE 1 = 1`)

	var niches []string
	for _, n := range f.Niches {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			niches = append(niches, n)
		}
	}
	if len(niches) > 0 {
		conds := make([]string, len(niches))
		for i, n := range niches {
			conds[i] = `CONCAT(',', p.niches, ',') LIKE ?`
			args = append(args, "%,"+escapeLike(n)+",%")
		}
		sb.WriteString(` AND (` + strings.Join(conds, " OR ") + `)`)
	}
	if len(f.Platforms) > 0 {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM social_accounts s WHERE s.user_id = p.user_id AND s.platform IN (` + placeholders(len(f.Platforms)) + `))`)
		for _, pl := range f.Platforms {
			args = append(args, strings.ToLower(pl))
		}
	}
	if f.MinFollowers > 0 {
		sb.WriteString(` AND p.followers_total >= ?`)
		args = append(args, f.MinFollowers)
	}
	if f.MaxRate > 0 {
		sb.WriteString(` AND p.min_rate <= ?`)
		args = append(args, f.MaxRate)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		sb.WriteString(` AND p.location LIKE ?`)
		args = append(args, "%"+escapeLike(loc)+"%")
	}
	sb.WriteString(` ORDER BY p.followers_total DESC, p.user_id ASC`)
	if limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}
	return sb.String(), args
}
