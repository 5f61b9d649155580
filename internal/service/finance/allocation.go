package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

// AllocationCheck is the guard's report. The check is advisory: CanAllocate
// false never blocks anything here, the caller decides whether to refuse or
// merely warn.
type AllocationCheck struct {
	CanAllocate    bool
	AvailableCents int64
	RequestedCents int64
	Warning        string
	Partial        bool
}

// AllocationInput describes a club-level allocation into one campaign or
// event.
type AllocationInput struct {
	ClubID      uuid.UUID
	CampaignID  *uuid.UUID
	EventID     *uuid.UUID
	Amount      string
	Date        string
	Description string
}

// AvailableForAllocation is the club's external income minus everything
// already allocated downward. Allocated-funds entries live at campaign or
// event level but are club money, so they never count as external income;
// otherwise allocating would raise the club's income and the guard could
// never catch an overrun.
func (s *Service) AvailableForAllocation(ctx context.Context, clubID uuid.UUID) (availableCents int64, partial bool, err error) {
	coll, err := s.resolver.CollectClubWideEntries(ctx, clubID)
	if err != nil {
		return 0, false, fmt.Errorf("AvailableForAllocation: %w", err)
	}

	var income, allocated int64
	for i := range coll.Entries {
		e := &coll.Entries[i]
		if e.Kind != domain.EntryKindIncome {
			continue
		}
		if e.IsAllocation() {
			allocated += e.AmountCents
		} else {
			income += e.AmountCents
		}
	}
	return income - allocated, coll.Partial, nil
}

// CheckAllocation reports whether the club can cover requestedCents. It
// never fails on an overrun; it only reports.
func (s *Service) CheckAllocation(ctx context.Context, clubID uuid.UUID, requestedCents int64) (*AllocationCheck, error) {
	available, partial, err := s.AvailableForAllocation(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("CheckAllocation: %w", err)
	}

	check := &AllocationCheck{
		CanAllocate:    requestedCents <= available,
		AvailableCents: available,
		RequestedCents: requestedCents,
		Partial:        partial,
	}
	if !check.CanAllocate {
		check.Warning = fmt.Sprintf(
			"requested %s exceeds the %s available for allocation",
			domain.CentsToDecimalString(requestedCents),
			domain.CentsToDecimalString(available),
		)
	}
	return check, nil
}

// ListAllocations returns every allocation entry of the club, newest first.
func (s *Service) ListAllocations(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error) {
	if _, err := s.clubs.GetByID(ctx, clubID); err != nil {
		return nil, fmt.Errorf("ListAllocations: %w", err)
	}
	entries, err := s.entries.ListAllocations(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("ListAllocations: %w", err)
	}
	return entries, nil
}

// Allocate issues club funds to a campaign or event as an ordinary income
// entry with the allocated-funds payment method; there is no separate
// storage mechanism. The overrun check runs only to surface a warning:
// callers wanting a hard block call CheckAllocation first and refuse to
// proceed themselves.
func (s *Service) Allocate(ctx context.Context, in AllocationInput) (*domain.LedgerEntry, *MutationReport, error) {
	entry, report, err := s.CreateEntry(ctx, EntryInput{
		Kind:          string(domain.EntryKindIncome),
		ClubID:        in.ClubID,
		CampaignID:    in.CampaignID,
		EventID:       in.EventID,
		Amount:        in.Amount,
		Date:          in.Date,
		Label:         domain.AllocationSource,
		Description:   in.Description,
		PaymentMethod: string(domain.MethodAllocatedFunds),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("Allocate: %w", err)
	}
	return entry, report, nil
}
