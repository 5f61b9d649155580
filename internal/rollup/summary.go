package rollup

import (
	"time"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

// BuildClubSummary derives a club's financials from every entry in its
// subtree. Income is split into external money and allocated funds so that
// allocation does not inflate the club's own income: an allocated-funds entry
// is club money resurfacing at a campaign or event.
func BuildClubSummary(entries []domain.LedgerEntry, refreshedAt time.Time) domain.ClubSummary {
	var income, allocated int64
	for i := range entries {
		e := &entries[i]
		if e.Kind != domain.EntryKindIncome {
			continue
		}
		if e.IsAllocation() {
			allocated += e.AmountCents
		} else {
			income += e.AmountCents
		}
	}
	expenses := Total(FilterByKind(entries, domain.EntryKindExpense))
	approved, pending := SplitExpensesByStatus(entries)

	return domain.ClubSummary{
		TotalIncomeCents:     income,
		TotalExpensesCents:   expenses,
		NetProfitCents:       NetProfit(income, expenses),
		AllocatedCents:       allocated,
		AvailableCents:       income - allocated,
		ApprovedExpenseCents: approved,
		PendingExpenseCents:  pending,
		RefreshedAt:          refreshedAt,
	}
}

// BuildCampaignSummary derives a campaign's financials from its own entries
// plus every entry of its events.
func BuildCampaignSummary(entries []domain.LedgerEntry, targetCents int64, refreshedAt time.Time) domain.CampaignSummary {
	raised := Total(FilterByKind(entries, domain.EntryKindIncome))
	expenses := Total(FilterByKind(entries, domain.EntryKindExpense))
	return domain.CampaignSummary{
		TotalRaisedCents:   raised,
		TotalExpensesCents: expenses,
		TotalProfitCents:   NetProfit(raised, expenses),
		ProgressPercent:    ProgressPercent(raised, targetCents),
		RefreshedAt:        refreshedAt,
	}
}

// BuildEventSummary derives an event's financials from its entries.
func BuildEventSummary(entries []domain.LedgerEntry, refreshedAt time.Time) domain.EventSummary {
	actual := Total(FilterByKind(entries, domain.EntryKindIncome))
	expenses := Total(FilterByKind(entries, domain.EntryKindExpense))
	return domain.EventSummary{
		ActualCents:        actual,
		TotalExpensesCents: expenses,
		NetProfitCents:     NetProfit(actual, expenses),
		RefreshedAt:        refreshedAt,
	}
}
