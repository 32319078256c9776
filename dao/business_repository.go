package dao

import (
	"context"
	"database/sql"
	"errors"

	"collab-backend/model"
)

type BusinessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Upsert(ctx context.Context, p *model.BusinessProfile) error {
	query := `
		INSERT INTO business_profiles (user_id, company_name, website, industry, updated_at) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE company_name = VALUES(company_name), website = VALUES(website),
			industry = VALUES(industry), updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.CompanyName, p.Website, p.Industry, p.UpdatedAt)
	return err
}

func (r *BusinessRepository) GetByUserID(ctx context.Context, userID string) (*model.BusinessProfile, error) {
	query := `SELECT user_id, company_name, website, industry, updated_at FROM business_profiles WHERE user_id = ?`
	var p model.BusinessProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.CompanyName, &p.Website, &p.Industry, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
