package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/service/finance"
)

type clubService interface {
	GetClub(ctx context.Context, id uuid.UUID) (*domain.Club, error)
	CheckAllocation(ctx context.Context, clubID uuid.UUID, requestedCents int64) (*finance.AllocationCheck, error)
	Allocate(ctx context.Context, in finance.AllocationInput) (*domain.LedgerEntry, *finance.MutationReport, error)
	ListAllocations(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error)
}

type ClubHandler struct {
	clubs           clubService
	defaultCurrency string
}

func NewClubHandler(clubs clubService, defaultCurrency string) *ClubHandler {
	return &ClubHandler{clubs: clubs, defaultCurrency: defaultCurrency}
}

type clubSummaryDTO struct {
	ClubID                   uuid.UUID `json:"club_id"`
	Name                     string    `json:"name"`
	TotalIncomeCents         int64     `json:"total_income_cents"`
	TotalIncome              string    `json:"total_income"`
	TotalExpensesCents       int64     `json:"total_expenses_cents"`
	TotalExpenses            string    `json:"total_expenses"`
	NetProfitCents           int64     `json:"net_profit_cents"`
	NetProfit                string    `json:"net_profit"`
	AllocatedFundsCents      int64     `json:"allocated_funds_cents"`
	AllocatedFunds           string    `json:"allocated_funds"`
	AvailableCents           int64     `json:"available_for_allocation_cents"`
	AvailableForAllocation   string    `json:"available_for_allocation"`
	ApprovedExpenseCents     int64     `json:"approved_expense_cents"`
	PendingExpenseCents      int64     `json:"pending_expense_cents"`
	Stale                    bool      `json:"stale"`
	RefreshedAt              time.Time `json:"refreshed_at"`
}

// Summary handles GET /api/v1/clubs/{clubID}/summary. Amounts are formatted
// with the caller's ?currency= code, falling back to the configured default;
// the stale flag lets UIs show "recalculating" instead of silently outdated
// totals.
func (h *ClubHandler) Summary(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	club, err := h.clubs.GetClub(r.Context(), clubID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	cur := h.currency(r)
	s := club.Summary
	RespondSuccess(w, http.StatusOK, clubSummaryDTO{
		ClubID:                 club.ID,
		Name:                   club.Name,
		TotalIncomeCents:       s.TotalIncomeCents,
		TotalIncome:            domain.FormatAmount(s.TotalIncomeCents, cur),
		TotalExpensesCents:     s.TotalExpensesCents,
		TotalExpenses:          domain.FormatAmount(s.TotalExpensesCents, cur),
		NetProfitCents:         s.NetProfitCents,
		NetProfit:              domain.FormatAmount(s.NetProfitCents, cur),
		AllocatedFundsCents:    s.AllocatedCents,
		AllocatedFunds:         domain.FormatAmount(s.AllocatedCents, cur),
		AvailableCents:         s.AvailableCents,
		AvailableForAllocation: domain.FormatAmount(s.AvailableCents, cur),
		ApprovedExpenseCents:   s.ApprovedExpenseCents,
		PendingExpenseCents:    s.PendingExpenseCents,
		Stale:                  s.Stale,
		RefreshedAt:            s.RefreshedAt,
	})
}

type allocationCheckDTO struct {
	CanAllocate    bool   `json:"can_allocate"`
	AvailableCents int64  `json:"available_cents"`
	Available      string `json:"available"`
	RequestedCents int64  `json:"requested_cents"`
	Requested      string `json:"requested"`
	Warning        string `json:"warning,omitempty"`
	Partial        bool   `json:"partial"`
}

// CheckAllocation handles GET /api/v1/clubs/{clubID}/allocations/check.
func (h *ClubHandler) CheckAllocation(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	requested, err := domain.ParseAmountCents(r.URL.Query().Get("amount"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	check, err := h.clubs.CheckAllocation(r.Context(), clubID, requested)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	cur := h.currency(r)
	RespondSuccess(w, http.StatusOK, allocationCheckDTO{
		CanAllocate:    check.CanAllocate,
		AvailableCents: check.AvailableCents,
		Available:      domain.FormatAmount(check.AvailableCents, cur),
		RequestedCents: check.RequestedCents,
		Requested:      domain.FormatAmount(check.RequestedCents, cur),
		Warning:        check.Warning,
		Partial:        check.Partial,
	})
}

type allocationRequest struct {
	CampaignID  *string `json:"campaign_id"`
	EventID     *string `json:"event_id"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// Allocate handles POST /api/v1/clubs/{clubID}/allocations. An overrun does
// not block the request; the response carries the guard's warning and it is
// the caller's decision to check first and refuse. Idempotent retries are
// not provided; each call creates a new allocation entry.
func (h *ClubHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	campaignID, eventID, badID := parseScopeIDs(req.CampaignID, req.EventID)
	if badID != "" {
		RespondAppError(w, ErrInvalidRequest, badID)
		return
	}

	entry, report, err := h.clubs.Allocate(r.Context(), finance.AllocationInput{
		ClubID:      clubID,
		CampaignID:  campaignID,
		EventID:     eventID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toMutationDTO(entry, report))
}

// ListAllocations handles GET /api/v1/clubs/{clubID}/allocations.
func (h *ClubHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	entries, err := h.clubs.ListAllocations(r.Context(), clubID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]*entryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toEntryDTO(&entries[i]))
	}
	RespondSuccess(w, http.StatusOK, map[string]any{"allocations": dtos})
}

func (h *ClubHandler) currency(r *http.Request) string {
	if c := r.URL.Query().Get("currency"); c != "" {
		return c
	}
	return h.defaultCurrency
}
