package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

const eventColumns = `id, club_id, campaign_id, name, goal_amount::text, event_date, created_at,
	actual_cents, total_expenses_cents, net_profit_cents,
	summary_stale, summary_refreshed_at`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, club_id, campaign_id, name, goal_amount, event_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ClubID, e.CampaignID, e.Name, domain.CentsToDecimalString(e.GoalCents),
		e.Date, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

func (r *EventRepository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.Event, error) {
	return r.list(ctx, "ListByClub",
		`SELECT `+eventColumns+` FROM events WHERE club_id = $1 ORDER BY created_at, id`, clubID)
}

func (r *EventRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Event, error) {
	return r.list(ctx, "ListByCampaign",
		`SELECT `+eventColumns+` FROM events WHERE campaign_id = $1 ORDER BY created_at, id`, campaignID)
}

func (r *EventRepository) UpdateDerived(ctx context.Context, id uuid.UUID, s domain.EventSummary) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET
			actual_cents = $2, total_expenses_cents = $3, net_profit_cents = $4,
			summary_stale = FALSE, summary_refreshed_at = $5
		 WHERE id = $1`,
		id, s.ActualCents, s.TotalExpensesCents, s.NetProfitCents, s.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateDerived: %w", err)
	}
	return requireRowAffected(res, "UpdateDerived")
}

func (r *EventRepository) MarkSummaryStale(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET summary_stale = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("MarkSummaryStale: %w", err)
	}
	return nil
}

func (r *EventRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return events, nil
}

func scanEvent(s scanner) (*domain.Event, error) {
	var (
		e           domain.Event
		goal        string
		refreshedAt sql.NullTime
	)
	err := s.Scan(
		&e.ID, &e.ClubID, &e.CampaignID, &e.Name, &goal, &e.Date, &e.CreatedAt,
		&e.Summary.ActualCents, &e.Summary.TotalExpensesCents, &e.Summary.NetProfitCents,
		&e.Summary.Stale, &refreshedAt,
	)
	if err != nil {
		return nil, err
	}
	e.GoalCents, err = domain.ParseAmountCents(goal)
	if err != nil {
		return nil, err
	}
	if refreshedAt.Valid {
		e.Summary.RefreshedAt = refreshedAt.Time
	}
	return &e, nil
}
