package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryKindIncome  EntryKind = "income"
	EntryKindExpense EntryKind = "expense"
)

func (k EntryKind) IsValid() bool {
	return k == EntryKindIncome || k == EntryKindExpense
}

// Level is the ownership level of a ledger entry, derived from its foreign
// keys and never stored.
type Level string

const (
	LevelClub     Level = "club"
	LevelCampaign Level = "campaign"
	LevelEvent    Level = "event"
)

type PaymentMethod string

const (
	MethodCash           PaymentMethod = "cash"
	MethodCheck          PaymentMethod = "check"
	MethodCard           PaymentMethod = "card"
	MethodOnline         PaymentMethod = "online"
	MethodTransfer       PaymentMethod = "transfer"
	MethodAllocatedFunds PaymentMethod = "allocated_funds"
)

// AllocationSource is the label carried by every income entry the allocation
// guard creates.
const AllocationSource = "Allocated Funds"

var incomeMethods = map[PaymentMethod]bool{
	MethodCash:           true,
	MethodCheck:          true,
	MethodCard:           true,
	MethodOnline:         true,
	MethodAllocatedFunds: true,
}

var expenseMethods = map[PaymentMethod]bool{
	MethodCash:     true,
	MethodCheck:    true,
	MethodCard:     true,
	MethodTransfer: true,
}

// ValidMethod reports whether m belongs to the payment-method vocabulary of
// the given entry kind. The two vocabularies overlap but are distinct:
// allocated_funds is income-only, transfer is expense-only.
func ValidMethod(kind EntryKind, m PaymentMethod) bool {
	if kind == EntryKindIncome {
		return incomeMethods[m]
	}
	return expenseMethods[m]
}

type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusPaid     ExpenseStatus = "paid"
)

func (s ExpenseStatus) IsValid() bool {
	return s == ExpenseStatusPending || s == ExpenseStatusApproved || s == ExpenseStatusPaid
}

// LedgerEntry is a single income or expense record. At most one of CampaignID
// and EventID may be set; with neither set the entry is club-level. The level
// is immutable after creation: moving an entry between levels is modeled as
// delete plus recreate so rollups stay consistent.
type LedgerEntry struct {
	ID            uuid.UUID
	ClubID        uuid.UUID
	CampaignID    *uuid.UUID
	EventID       *uuid.UUID
	Kind          EntryKind
	AmountCents   int64
	Date          time.Time
	Label         string // income source or expense category
	Description   string
	PaymentMethod PaymentMethod
	Reference     string         // donor reference or vendor
	Status        *ExpenseStatus // expense only; income is always realized
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Level classifies the entry by which foreign key is populated.
func (e *LedgerEntry) Level() Level {
	switch {
	case e.EventID != nil:
		return LevelEvent
	case e.CampaignID != nil:
		return LevelCampaign
	default:
		return LevelClub
	}
}

// IsAllocation reports whether the entry is allocated club funds rather than
// external money.
func (e *LedgerEntry) IsAllocation() bool {
	return e.Kind == EntryKindIncome && e.PaymentMethod == MethodAllocatedFunds
}
