package dao

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"collab-backend/model"
)

type InquiryRepository struct {
	db *sql.DB
}

func NewInquiryRepository(db *sql.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

const inquiryColumns = `id, business_id, influencer_id, campaign_id, subject, description, budget, deliverables, status,
	recommendation, recommendation_reason, proposed_rate, agent_turns, last_activity_at, created_at`

func scanInquiry(row rowScanner) (*model.Inquiry, error) {
	var q model.Inquiry
	var campaignID, deliverables, recommendation, reason sql.NullString
	var budget, proposed sql.NullInt64
	if err := row.Scan(&q.ID, &q.BusinessID, &q.InfluencerID, &campaignID, &q.Subject, &q.Description, &budget,
		&deliverables, &q.Status, &recommendation, &reason, &proposed, &q.AgentTurns, &q.LastActivityAt, &q.CreatedAt); err != nil {
		return nil, err
	}
	q.CampaignID = stringPtr(campaignID)
	q.Budget = intPtr(budget)
	q.Deliverables = deliverables.String
	q.Recommendation = model.Recommendation(recommendation.String)
	q.RecommendationReason = reason.String
	q.ProposedRate = intPtr(proposed)
	return &q, nil
}

func (r *InquiryRepository) Insert(ctx context.Context, q *model.Inquiry) error {
	query := `
		INSERT INTO inquiries (id, business_id, influencer_id, campaign_id, subject, description, budget, deliverables, status, agent_turns, last_activity_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, q.ID, q.BusinessID, q.InfluencerID, nullString(q.CampaignID), q.Subject,
		q.Description, nullInt(q.Budget), q.Deliverables, q.Status, q.AgentTurns, q.LastActivityAt, q.CreatedAt)
	return err
}

func (r *InquiryRepository) GetByID(ctx context.Context, id string) (*model.Inquiry, error) {
	q, err := scanInquiry(r.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *InquiryRepository) ListByInfluencer(ctx context.Context, influencerID string) ([]model.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE influencer_id = ? ORDER BY last_activity_at DESC`, influencerID)
}

func (r *InquiryRepository) ListByBusiness(ctx context.Context, businessID string) ([]model.Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE business_id = ? ORDER BY last_activity_at DESC`, businessID)
}

func (r *InquiryRepository) list(ctx context.Context, query string, args ...any) ([]model.Inquiry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// TransitionStatus moves the inquiry to `to` only if its current status is one
// of `from`. It returns model.ErrInvalidTransition when no row matched.
func (r *InquiryRepository) TransitionStatus(ctx context.Context, id string, from []model.InquiryStatus, to model.InquiryStatus, at time.Time) error {
	args := []any{to, at, id}
	for _, s := range from {
		args = append(args, s)
	}
	query := `UPDATE inquiries SET status = ?, last_activity_at = ? WHERE id = ? AND status IN (` + placeholders(len(from)) + `)`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrInvalidTransition)
}

func (r *InquiryRepository) SetRecommendation(ctx context.Context, id string, rec model.Recommendation, reason string, rate *int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE inquiries SET recommendation = ?, recommendation_reason = ?, proposed_rate = ? WHERE id = ?`,
		rec, reason, nullInt(rate), id)
	return err
}

func (r *InquiryRepository) ClearRecommendation(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE inquiries SET recommendation = NULL, recommendation_reason = NULL, proposed_rate = NULL WHERE id = ?`, id)
	return err
}

// Touch records activity; agentTurns is added to the running turn count.
func (r *InquiryRepository) Touch(ctx context.Context, id string, at time.Time, agentTurns int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE inquiries SET last_activity_at = ?, agent_turns = agent_turns + ? WHERE id = ?`,
		at, agentTurns, id)
	return err
}

// CloseIdle closes every active inquiry with no activity since before.
func (r *InquiryRepository) CloseIdle(ctx context.Context, before time.Time) (int64, error) {
	args := []any{model.InquiryClosed}
	for _, s := range model.ActiveInquiryStatuses {
		args = append(args, s)
	}
	args = append(args, before)
	query := `UPDATE inquiries SET status = ? WHERE status IN (` + placeholders(len(model.ActiveInquiryStatuses)) + `) AND last_activity_at < ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
