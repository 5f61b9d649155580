package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

// Amounts live in NUMERIC columns and are scanned as strings, then coerced
// exactly once through domain.ParseAmountCents. A non-numeric value fails the
// read instead of silently contributing zero to a rollup.
const entryColumns = `id, club_id, campaign_id, event_id, kind, amount::text,
	entry_date, label, description, payment_method, reference, status,
	created_at, updated_at`

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (
			id, club_id, campaign_id, event_id, kind, amount,
			entry_date, label, description, payment_method, reference, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.ClubID, e.CampaignID, e.EventID, e.Kind,
		domain.CentsToDecimalString(e.AmountCents),
		e.Date, e.Label, e.Description, e.PaymentMethod, e.Reference, statusValue(e.Status),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields. Scope columns (club_id, campaign_id,
// event_id) are deliberately absent: an entry's level is immutable.
func (r *EntryRepository) Update(ctx context.Context, e *domain.LedgerEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ledger_entries
		 SET amount = $2, entry_date = $3, label = $4, description = $5,
		     payment_method = $6, reference = $7, status = $8, updated_at = $9
		 WHERE id = $1`,
		e.ID, domain.CentsToDecimalString(e.AmountCents),
		e.Date, e.Label, e.Description, e.PaymentMethod, e.Reference,
		statusValue(e.Status), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRowAffected(res, "Update")
}

func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRowAffected(res, "Delete")
}

func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

// ListClubLevel returns entries that belong directly to the club: neither
// campaign nor event set.
func (r *EntryRepository) ListClubLevel(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.list(ctx, "ListClubLevel",
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE club_id = $1 AND campaign_id IS NULL AND event_id IS NULL
		 ORDER BY entry_date DESC, created_at DESC, id`, clubID)
}

// ListForCampaign returns the campaign's own entries, excluding those owned
// by its events.
func (r *EntryRepository) ListForCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.list(ctx, "ListForCampaign",
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE campaign_id = $1 AND event_id IS NULL
		 ORDER BY entry_date DESC, created_at DESC, id`, campaignID)
}

// ListAllocations returns every allocated-funds entry of the club, across all
// levels.
func (r *EntryRepository) ListAllocations(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.list(ctx, "ListAllocations",
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE club_id = $1 AND kind = $2 AND payment_method = $3
		 ORDER BY entry_date DESC, created_at DESC, id`,
		clubID, domain.EntryKindIncome, domain.MethodAllocatedFunds)
}

func (r *EntryRepository) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.list(ctx, "ListForEvent",
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE event_id = $1
		 ORDER BY entry_date DESC, created_at DESC, id`, eventID)
}

func (r *EntryRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return entries, nil
}

func scanEntry(s scanner) (*domain.LedgerEntry, error) {
	var (
		e      domain.LedgerEntry
		amount string
		status sql.NullString
	)
	err := s.Scan(
		&e.ID, &e.ClubID, &e.CampaignID, &e.EventID, &e.Kind, &amount,
		&e.Date, &e.Label, &e.Description, &e.PaymentMethod, &e.Reference, &status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.AmountCents, err = domain.ParseAmountCents(amount)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		st := domain.ExpenseStatus(status.String)
		e.Status = &st
	}
	return &e, nil
}

func statusValue(s *domain.ExpenseStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func requireRowAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
