package domain

import (
	"time"

	"github.com/google/uuid"
)

type Club struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	Summary ClubSummary
}

// ClubSummary holds the club's derived financials. Every field is recomputed
// from ledger entries, never hand-edited. TotalIncomeCents counts external
// money only: allocated-funds entries are the same money resurfacing at a
// campaign or event, so counting them again would double the club's income
// and make AvailableCents invariant under allocation.
type ClubSummary struct {
	TotalIncomeCents     int64
	TotalExpensesCents   int64
	NetProfitCents       int64
	AllocatedCents       int64
	AvailableCents       int64 // TotalIncomeCents - AllocatedCents, never negative when callers respect the guard
	ApprovedExpenseCents int64
	PendingExpenseCents  int64
	Stale                bool
	RefreshedAt          time.Time
}

type Campaign struct {
	ID          uuid.UUID
	ClubID      uuid.UUID
	Name        string
	TargetCents int64
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time

	Summary CampaignSummary
}

// CampaignSummary covers the campaign's own entries plus every entry of its
// events.
type CampaignSummary struct {
	TotalRaisedCents   int64
	TotalExpensesCents int64
	TotalProfitCents   int64
	ProgressPercent    float64
	Stale              bool
	RefreshedAt        time.Time
}

type Event struct {
	ID         uuid.UUID
	ClubID     uuid.UUID
	CampaignID *uuid.UUID
	Name       string
	GoalCents  int64
	Date       *time.Time
	CreatedAt  time.Time

	Summary EventSummary
}

type EventSummary struct {
	ActualCents        int64
	TotalExpensesCents int64
	NetProfitCents     int64
	Stale              bool
	RefreshedAt        time.Time
}
