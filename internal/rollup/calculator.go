// Package rollup aggregates ledger entries into the derived financials of a
// single hierarchy node. Every function is pure: no input slice is mutated
// and identical inputs always produce identical output, which is what makes
// recomputation idempotent.
package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

// Total sums entry amounts in cents.
func Total(entries []domain.LedgerEntry) int64 {
	var sum int64
	for i := range entries {
		sum += entries[i].AmountCents
	}
	return sum
}

// NetProfit is income minus expenses.
func NetProfit(incomeCents, expensesCents int64) int64 {
	return incomeCents - expensesCents
}

// ProgressPercent reports actual over target as a percentage capped at 100.
// A target of zero or less yields 0 rather than dividing by zero; display
// progress never exceeds 100 even when over-funded.
func ProgressPercent(actualCents, targetCents int64) float64 {
	if targetCents <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(actualCents).
		Div(decimal.NewFromInt(targetCents)).
		Mul(decimal.NewFromInt(100))
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}
	if pct.IsNegative() {
		return 0
	}
	f, _ := pct.Round(2).Float64()
	return f
}

// Bucket is one label's total within a breakdown.
type Bucket struct {
	Label      string `json:"label"`
	TotalCents int64  `json:"total_cents"`
}

// BreakdownByLabel sums entries per label (income source or expense
// category). Buckets appear in first-occurrence order for stable display;
// the order carries no other meaning.
func BreakdownByLabel(entries []domain.LedgerEntry) []Bucket {
	index := make(map[string]int, len(entries))
	var buckets []Bucket
	for i := range entries {
		label := entries[i].Label
		j, ok := index[label]
		if !ok {
			j = len(buckets)
			index[label] = j
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[j].TotalCents += entries[i].AmountCents
	}
	return buckets
}

// FilterByKind returns the entries of the given kind.
func FilterByKind(entries []domain.LedgerEntry, kind domain.EntryKind) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for i := range entries {
		if entries[i].Kind == kind {
			out = append(out, entries[i])
		}
	}
	return out
}

// FilterByLevel returns the entries owned at the given hierarchy level:
// club-level means neither foreign key set.
func FilterByLevel(entries []domain.LedgerEntry, level domain.Level) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for i := range entries {
		if entries[i].Level() == level {
			out = append(out, entries[i])
		}
	}
	return out
}

// FilterByDateRange keeps entries with from <= date <= end-of-day(to).
// Either bound may be nil. The to bound is normalized to 23:59:59.999 of its
// calendar day so a same-day filter captures same-day entries; dropping this
// normalization reintroduces an off-by-one-day exclusion.
func FilterByDateRange(entries []domain.LedgerEntry, from, to *time.Time) []domain.LedgerEntry {
	var end time.Time
	if to != nil {
		end = EndOfDay(*to)
	}
	var out []domain.LedgerEntry
	for i := range entries {
		d := entries[i].Date
		if from != nil && d.Before(*from) {
			continue
		}
		if to != nil && d.After(end) {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999*int(time.Millisecond), t.Location())
}

// SplitExpensesByStatus splits expense totals into approved and pending
// cents. Paid counts as approved; a missing status counts as pending.
func SplitExpensesByStatus(entries []domain.LedgerEntry) (approvedCents, pendingCents int64) {
	for i := range entries {
		e := &entries[i]
		if e.Kind != domain.EntryKindExpense {
			continue
		}
		if e.Status != nil && (*e.Status == domain.ExpenseStatusApproved || *e.Status == domain.ExpenseStatusPaid) {
			approvedCents += e.AmountCents
		} else {
			pendingCents += e.AmountCents
		}
	}
	return approvedCents, pendingCents
}
