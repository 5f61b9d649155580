package finance

import (
	"errors"
	"strings"
	"time"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// parsedEntry holds the coerced fields of a candidate entry after validation.
type parsedEntry struct {
	kind        domain.EntryKind
	amountCents int64
	date        time.Time
	method      domain.PaymentMethod
	status      *domain.ExpenseStatus
}

// ValidateEntry checks every rule and returns all violations together, so a
// caller can show the user every problem at once instead of one per attempt.
// It has no side effects.
//
// Rules, in order: label and description non-empty after trimming; amount
// numeric and greater than zero; date present and parseable; campaign and
// event not both set; payment method within the kind's vocabulary (and an
// allocation must target a campaign or event); expense status within its
// enum, income carries none.
func ValidateEntry(in EntryInput) (*parsedEntry, *domain.ValidationError) {
	verr := &domain.ValidationError{}
	parsed := &parsedEntry{kind: domain.EntryKind(in.Kind)}

	labelField := "category"
	if parsed.kind == domain.EntryKindIncome {
		labelField = "source"
	}

	if !parsed.kind.IsValid() {
		verr.Add("kind", "must be income or expense")
	}

	if strings.TrimSpace(in.Label) == "" {
		verr.Add(labelField, labelField+" is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		verr.Add("description", "description is required")
	}

	cents, err := domain.ParseAmountCents(in.Amount)
	switch {
	case errors.Is(err, domain.ErrNegativeAmount):
		verr.Add("amount", "amount must be greater than zero")
	case err != nil:
		verr.Add("amount", "amount must be a number")
	case cents <= 0:
		verr.Add("amount", "amount must be greater than zero")
	default:
		parsed.amountCents = cents
	}

	if strings.TrimSpace(in.Date) == "" {
		verr.Add("date", "date is required")
	} else if d, err := time.Parse(dateLayout, in.Date); err != nil {
		verr.Add("date", "date must be a valid date (YYYY-MM-DD)")
	} else {
		parsed.date = d
	}

	if in.CampaignID != nil && in.EventID != nil {
		verr.Add("event_id", "cannot be assigned to both event and campaign")
	}

	parsed.method = domain.PaymentMethod(in.PaymentMethod)
	if in.PaymentMethod == "" {
		verr.Add("payment_method", "payment method is required")
	} else if parsed.kind.IsValid() && !domain.ValidMethod(parsed.kind, parsed.method) {
		verr.Add("payment_method", "unknown payment method for "+string(parsed.kind))
	} else if parsed.method == domain.MethodAllocatedFunds && in.CampaignID == nil && in.EventID == nil {
		verr.Add("payment_method", "allocated funds must target a campaign or event")
	}

	if parsed.kind == domain.EntryKindExpense {
		if in.Status != nil {
			st := domain.ExpenseStatus(*in.Status)
			if !st.IsValid() {
				verr.Add("status", "status must be pending, approved, or paid")
			} else {
				parsed.status = &st
			}
		}
	} else if in.Status != nil {
		verr.Add("status", "income entries have no status")
	}

	if verr.HasViolations() {
		return nil, verr
	}
	return parsed, nil
}
