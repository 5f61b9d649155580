package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

const campaignColumns = `id, club_id, name, target_amount::text, start_date, end_date, created_at,
	total_raised_cents, total_expenses_cents, total_profit_cents, progress_percent,
	summary_stale, summary_refreshed_at`

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, club_id, name, target_amount, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.ClubID, c.Name, domain.CentsToDecimalString(c.TargetCents),
		c.StartDate, c.EndDate, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrCampaignNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CampaignRepository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE club_id = $1 ORDER BY created_at, id`, clubID)
	if err != nil {
		return nil, fmt.Errorf("ListByClub: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByClub: scan: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByClub: rows: %w", err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) UpdateDerived(ctx context.Context, id uuid.UUID, s domain.CampaignSummary) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET
			total_raised_cents = $2, total_expenses_cents = $3, total_profit_cents = $4,
			progress_percent = $5, summary_stale = FALSE, summary_refreshed_at = $6
		 WHERE id = $1`,
		id, s.TotalRaisedCents, s.TotalExpensesCents, s.TotalProfitCents,
		s.ProgressPercent, s.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateDerived: %w", err)
	}
	return requireRowAffected(res, "UpdateDerived")
}

func (r *CampaignRepository) MarkSummaryStale(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET summary_stale = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("MarkSummaryStale: %w", err)
	}
	return nil
}

func scanCampaign(s scanner) (*domain.Campaign, error) {
	var (
		c           domain.Campaign
		target      string
		refreshedAt sql.NullTime
	)
	err := s.Scan(
		&c.ID, &c.ClubID, &c.Name, &target, &c.StartDate, &c.EndDate, &c.CreatedAt,
		&c.Summary.TotalRaisedCents, &c.Summary.TotalExpensesCents, &c.Summary.TotalProfitCents,
		&c.Summary.ProgressPercent, &c.Summary.Stale, &refreshedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TargetCents, err = domain.ParseAmountCents(target)
	if err != nil {
		return nil, err
	}
	if refreshedAt.Valid {
		c.Summary.RefreshedAt = refreshedAt.Time
	}
	return &c, nil
}
