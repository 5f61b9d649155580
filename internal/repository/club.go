package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

const clubColumns = `id, name, created_at,
	total_income_cents, total_expenses_cents, net_profit_cents,
	allocated_cents, available_cents,
	approved_expense_cents, pending_expense_cents,
	summary_stale, summary_refreshed_at`

type ClubRepository struct {
	db *sql.DB
}

func NewClubRepository(db *sql.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) Create(ctx context.Context, c *domain.Club) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clubs (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Club, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id)

	var (
		c           domain.Club
		refreshedAt sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.CreatedAt,
		&c.Summary.TotalIncomeCents, &c.Summary.TotalExpensesCents, &c.Summary.NetProfitCents,
		&c.Summary.AllocatedCents, &c.Summary.AvailableCents,
		&c.Summary.ApprovedExpenseCents, &c.Summary.PendingExpenseCents,
		&c.Summary.Stale, &refreshedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrClubNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	if refreshedAt.Valid {
		c.Summary.RefreshedAt = refreshedAt.Time
	}
	return &c, nil
}

// UpdateDerived overwrites the club's derived financials and clears the
// stale flag.
func (r *ClubRepository) UpdateDerived(ctx context.Context, id uuid.UUID, s domain.ClubSummary) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clubs SET
			total_income_cents = $2, total_expenses_cents = $3, net_profit_cents = $4,
			allocated_cents = $5, available_cents = $6,
			approved_expense_cents = $7, pending_expense_cents = $8,
			summary_stale = FALSE, summary_refreshed_at = $9
		 WHERE id = $1`,
		id, s.TotalIncomeCents, s.TotalExpensesCents, s.NetProfitCents,
		s.AllocatedCents, s.AvailableCents,
		s.ApprovedExpenseCents, s.PendingExpenseCents,
		s.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateDerived: %w", err)
	}
	return requireRowAffected(res, "UpdateDerived")
}

func (r *ClubRepository) MarkSummaryStale(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clubs SET summary_stale = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("MarkSummaryStale: %w", err)
	}
	return nil
}
