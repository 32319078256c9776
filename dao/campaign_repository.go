package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"collab-backend/model"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, business_id, title, brief, budget, status, criteria, filters, created_at`

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var criteria, filters sql.NullString
	if err := row.Scan(&c.ID, &c.BusinessID, &c.Title, &c.Brief, &c.Budget, &c.Status, &criteria, &filters, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Criteria = criteria.String
	if filters.Valid && filters.String != "" {
		var f model.SearchFilters
		if err := json.Unmarshal([]byte(filters.String), &f); err != nil {
			return nil, fmt.Errorf("decode campaign filters: %w", err)
		}
		c.Filters = &f
	}
	return &c, nil
}

func (r *CampaignRepository) Insert(ctx context.Context, c *model.Campaign) error {
	query := `INSERT INTO campaigns (id, business_id, title, brief, budget, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.BusinessID, c.Title, c.Brief, c.Budget, c.Status, c.CreatedAt)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListByBusiness(ctx context.Context, businessID string) ([]model.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE business_id = ? ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CampaignRepository) SaveCriteria(ctx context.Context, id, criteria string, filters *model.SearchFilters) error {
	raw, err := json.Marshal(filters)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE campaigns SET criteria = ?, filters = ? WHERE id = ?`, criteria, string(raw), id)
	return err
}

// TransitionStatus is the campaign counterpart of InquiryRepository.TransitionStatus.
func (r *CampaignRepository) TransitionStatus(ctx context.Context, id string, from []model.CampaignStatus, to model.CampaignStatus) error {
	args := []any{to, id}
	for _, s := range from {
		args = append(args, s)
	}
	query := `UPDATE campaigns SET status = ? WHERE id = ? AND status IN (` + placeholders(len(from)) + `)`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrInvalidTransition)
}

// ReplaceCandidates swaps the ranked candidate list of a campaign atomically.
func (r *CampaignRepository) ReplaceCandidates(ctx context.Context, campaignID string, cands []model.CampaignCandidate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_candidates WHERE campaign_id = ?`, campaignID); err != nil {
		return err
	}
	query := `INSERT INTO campaign_candidates (campaign_id, influencer_id, score, rationale, rank_no, status) VALUES (?, ?, ?, ?, ?, ?)`
	for _, c := range cands {
		if _, err := tx.ExecContext(ctx, query, campaignID, c.InfluencerID, c.Score, c.Rationale, c.Rank, c.Status); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *CampaignRepository) ListCandidates(ctx context.Context, campaignID string) ([]model.CampaignCandidate, error) {
	query := `
		SELECT c.campaign_id, c.influencer_id, p.display_name, p.followers_total, c.score, c.rationale, c.rank_no, c.outreach_draft, c.inquiry_id, c.status
		FROM campaign_candidates c
		JOIN influencer_profiles p ON p.user_id = c.influencer_id
		WHERE c.campaign_id = ?
		ORDER BY c.rank_no ASC
	`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CampaignCandidate
	for rows.Next() {
		var c model.CampaignCandidate
		var rationale, draft, inquiryID sql.NullString
		if err := rows.Scan(&c.CampaignID, &c.InfluencerID, &c.DisplayName, &c.Followers, &c.Score, &rationale, &c.Rank,
			&draft, &inquiryID, &c.Status); err != nil {
			return nil, err
		}
		c.Rationale = rationale.String
		c.OutreachDraft = draft.String
		c.InquiryID = stringPtr(inquiryID)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveDraft stores an outreach draft unless the candidate was already contacted.
func (r *CampaignRepository) SaveDraft(ctx context.Context, campaignID, influencerID, draft string) error {
	query := `UPDATE campaign_candidates SET outreach_draft = ?, status = ? WHERE campaign_id = ? AND influencer_id = ? AND status <> ?`
	res, err := r.db.ExecContext(ctx, query, draft, model.CandidateDrafted, campaignID, influencerID, model.CandidateContacted)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrInvalidTransition)
}

func (r *CampaignRepository) MarkContacted(ctx context.Context, campaignID, influencerID, inquiryID string) error {
	query := `UPDATE campaign_candidates SET inquiry_id = ?, status = ? WHERE campaign_id = ? AND influencer_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, inquiryID, model.CandidateContacted, campaignID, influencerID, model.CandidateDrafted)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrInvalidTransition)
}
