package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/rollup"
)

// EntryFilter narrows a collected ledger. Every dimension is optional and
// validated independently; zero-value means "match everything".
type EntryFilter struct {
	Kind          *domain.EntryKind
	Level         *domain.Level
	CampaignID    *uuid.UUID
	EventID       *uuid.UUID
	Label         *string
	PaymentMethod *domain.PaymentMethod
	From          *time.Time
	To            *time.Time
}

func (f EntryFilter) Validate() error {
	if f.Kind != nil && !f.Kind.IsValid() {
		return fmt.Errorf("filter kind %q: %w", *f.Kind, domain.ErrInvalidRequest)
	}
	if f.Level != nil {
		switch *f.Level {
		case domain.LevelClub, domain.LevelCampaign, domain.LevelEvent:
		default:
			return fmt.Errorf("filter level %q: %w", *f.Level, domain.ErrInvalidRequest)
		}
	}
	if f.From != nil && f.To != nil && f.From.After(rollup.EndOfDay(*f.To)) {
		return fmt.Errorf("filter date range inverted: %w", domain.ErrInvalidRequest)
	}
	return nil
}

// Apply returns the matching entries without mutating the input.
func (f EntryFilter) Apply(entries []domain.LedgerEntry) []domain.LedgerEntry {
	out := entries
	if f.Kind != nil {
		out = rollup.FilterByKind(out, *f.Kind)
	}
	if f.Level != nil {
		out = rollup.FilterByLevel(out, *f.Level)
	}
	if f.From != nil || f.To != nil {
		out = rollup.FilterByDateRange(out, f.From, f.To)
	}
	if f.CampaignID == nil && f.EventID == nil && f.Label == nil && f.PaymentMethod == nil {
		return out
	}

	var filtered []domain.LedgerEntry
	for i := range out {
		e := &out[i]
		if f.CampaignID != nil && (e.CampaignID == nil || *e.CampaignID != *f.CampaignID) {
			continue
		}
		if f.EventID != nil && (e.EventID == nil || *e.EventID != *f.EventID) {
			continue
		}
		if f.Label != nil && e.Label != *f.Label {
			continue
		}
		if f.PaymentMethod != nil && e.PaymentMethod != *f.PaymentMethod {
			continue
		}
		filtered = append(filtered, *e)
	}
	return filtered
}
