// Package finance implements the financial rollup and allocation engine:
// ledger entry CRUD with validation, club-wide collection, allocation
// guarding, and synchronous recalculation of derived summaries.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/config"
	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

type entryStore interface {
	Create(ctx context.Context, e *domain.LedgerEntry) error
	Update(ctx context.Context, e *domain.LedgerEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	ListClubLevel(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error)
	ListAllocations(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error)
	ListForCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.LedgerEntry, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LedgerEntry, error)
}

type campaignStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.Campaign, error)
	UpdateDerived(ctx context.Context, id uuid.UUID, s domain.CampaignSummary) error
	MarkSummaryStale(ctx context.Context, id uuid.UUID) error
}

type eventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.Event, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Event, error)
	UpdateDerived(ctx context.Context, id uuid.UUID, s domain.EventSummary) error
	MarkSummaryStale(ctx context.Context, id uuid.UUID) error
}

type clubStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Club, error)
	UpdateDerived(ctx context.Context, id uuid.UUID, s domain.ClubSummary) error
	MarkSummaryStale(ctx context.Context, id uuid.UUID) error
}

// Service is the engine's entry point. It is stateless between requests:
// every derived figure is recomputed from the record store, never cached.
type Service struct {
	entries   entryStore
	campaigns campaignStore
	events    eventStore
	clubs     clubStore
	resolver  *Resolver
	recalc    *Coordinator
	cfg       *config.Config
}

func NewService(
	entries entryStore,
	campaigns campaignStore,
	events eventStore,
	clubs clubStore,
	cfg *config.Config,
) *Service {
	resolver := NewResolver(entries, campaigns, events, cfg.FetchConcurrency, cfg.FetchTimeout())
	return &Service{
		entries:   entries,
		campaigns: campaigns,
		events:    events,
		clubs:     clubs,
		resolver:  resolver,
		recalc:    NewCoordinator(entries, campaigns, events, clubs, resolver, cfg),
		cfg:       cfg,
	}
}

// EntryInput is a candidate income or expense record. Amount and Date arrive
// as strings from the outside world and are coerced during validation.
type EntryInput struct {
	Kind          string
	ClubID        uuid.UUID
	CampaignID    *uuid.UUID
	EventID       *uuid.UUID
	Amount        string
	Date          string
	Label         string
	Description   string
	PaymentMethod string
	Reference     string
	Status        *string
}

// EntryUpdateInput carries the mutable fields of an entry. Scope fields may
// be omitted (both nil means the level is unchanged); when either is present
// it must match the stored scope, so an attempted level change is rejected
// explicitly.
type EntryUpdateInput struct {
	CampaignID    *uuid.UUID
	EventID       *uuid.UUID
	Amount        string
	Date          string
	Label         string
	Description   string
	PaymentMethod string
	Reference     string
	Status        *string
}

// MutationReport tells the caller what happened around a successful write:
// whether any derived summary is stale after recomputation, and any advisory
// allocation warning.
type MutationReport struct {
	StaleLevels       []domain.Level
	AllocationWarning string
}

func (m *MutationReport) SummaryStale() bool { return len(m.StaleLevels) > 0 }

// CreateEntry validates, guards, persists, and recalculates. Validation
// failures surface before any write; the allocation guard is advisory and
// never blocks; recalculation is synchronous so the next read reflects the
// mutation.
func (s *Service) CreateEntry(ctx context.Context, in EntryInput) (*domain.LedgerEntry, *MutationReport, error) {
	parsed, verr := ValidateEntry(in)
	if verr != nil {
		return nil, nil, verr
	}

	if err := s.verifyScope(ctx, in.ClubID, in.CampaignID, in.EventID); err != nil {
		return nil, nil, fmt.Errorf("CreateEntry: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		ClubID:        in.ClubID,
		CampaignID:    in.CampaignID,
		EventID:       in.EventID,
		Kind:          parsed.kind,
		AmountCents:   parsed.amountCents,
		Date:          parsed.date,
		Label:         in.Label,
		Description:   in.Description,
		PaymentMethod: parsed.method,
		Reference:     in.Reference,
		Status:        parsed.status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	report := &MutationReport{}
	if entry.IsAllocation() {
		check, err := s.CheckAllocation(ctx, entry.ClubID, entry.AmountCents)
		if err != nil {
			return nil, nil, fmt.Errorf("CreateEntry: allocation check: %w", err)
		}
		report.AllocationWarning = check.Warning
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("CreateEntry: %w", err)
	}

	report.StaleLevels = s.recalc.EntryChanged(ctx, entry)
	return entry, report, nil
}

// UpdateEntry mutates an entry in place. The entry's ownership level is
// immutable: passing a different campaign or event is rejected, since moving
// an entry between levels is modeled as delete plus recreate. Requests that
// omit both scope fields leave the level untouched.
func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, in EntryUpdateInput) (*domain.LedgerEntry, *MutationReport, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("UpdateEntry: %w", err)
	}

	if in.CampaignID != nil || in.EventID != nil {
		if scopeChanged(entry.CampaignID, in.CampaignID) || scopeChanged(entry.EventID, in.EventID) {
			return nil, nil, fmt.Errorf("UpdateEntry: %w", domain.ErrScopeImmutable)
		}
	}

	parsed, verr := ValidateEntry(EntryInput{
		Kind:          string(entry.Kind),
		ClubID:        entry.ClubID,
		CampaignID:    entry.CampaignID,
		EventID:       entry.EventID,
		Amount:        in.Amount,
		Date:          in.Date,
		Label:         in.Label,
		Description:   in.Description,
		PaymentMethod: in.PaymentMethod,
		Reference:     in.Reference,
		Status:        in.Status,
	})
	if verr != nil {
		return nil, nil, verr
	}

	entry.AmountCents = parsed.amountCents
	entry.Date = parsed.date
	entry.Label = in.Label
	entry.Description = in.Description
	entry.PaymentMethod = parsed.method
	entry.Reference = in.Reference
	entry.Status = parsed.status
	entry.UpdatedAt = time.Now().UTC()

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("UpdateEntry: %w", err)
	}

	report := &MutationReport{StaleLevels: s.recalc.EntryChanged(ctx, entry)}
	return entry, report, nil
}

// DeleteEntry removes an entry and recalculates its former scope.
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) (*MutationReport, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("DeleteEntry: %w", err)
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("DeleteEntry: %w", err)
	}
	return &MutationReport{StaleLevels: s.recalc.EntryChanged(ctx, entry)}, nil
}

// ListEntries returns the club's flattened ledger, filtered. The Partial
// flag on the collection survives into the result so callers can tell a
// complete ledger from a degraded one.
func (s *Service) ListEntries(ctx context.Context, clubID uuid.UUID, filter EntryFilter) (*Collection, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	coll, err := s.resolver.CollectClubWideEntries(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	coll.Entries = filter.Apply(coll.Entries)
	return coll, nil
}

func (s *Service) GetClub(ctx context.Context, id uuid.UUID) (*domain.Club, error) {
	return s.clubs.GetByID(ctx, id)
}

func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	return s.campaigns.GetByID(ctx, id)
}

func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

// RecalculateEvent recomputes the event, its campaign if it has one, and the
// club. Idempotent: with no intervening mutation a second call produces
// identical summaries.
func (s *Service) RecalculateEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Level, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("RecalculateEvent: %w", err)
	}
	return s.recalc.RecalculateEventTree(ctx, event), nil
}

// RecalculateCampaign recomputes the campaign and the club.
func (s *Service) RecalculateCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Level, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("RecalculateCampaign: %w", err)
	}
	return s.recalc.RecalculateCampaignTree(ctx, campaign), nil
}

// verifyScope checks that the referenced campaign or event exists and
// belongs to the club. Mutual exclusivity is already enforced by validation.
func (s *Service) verifyScope(ctx context.Context, clubID uuid.UUID, campaignID, eventID *uuid.UUID) error {
	if campaignID != nil {
		c, err := s.campaigns.GetByID(ctx, *campaignID)
		if err != nil {
			return err
		}
		if c.ClubID != clubID {
			return domain.ErrScopeMismatch
		}
	}
	if eventID != nil {
		e, err := s.events.GetByID(ctx, *eventID)
		if err != nil {
			return err
		}
		if e.ClubID != clubID {
			return domain.ErrScopeMismatch
		}
	}
	return nil
}

func scopeChanged(current, proposed *uuid.UUID) bool {
	if proposed == nil {
		return current != nil
	}
	return current == nil || *current != *proposed
}
