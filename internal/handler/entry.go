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

type entryService interface {
	CreateEntry(ctx context.Context, in finance.EntryInput) (*domain.LedgerEntry, *finance.MutationReport, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, in finance.EntryUpdateInput) (*domain.LedgerEntry, *finance.MutationReport, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) (*finance.MutationReport, error)
	ListEntries(ctx context.Context, clubID uuid.UUID, filter finance.EntryFilter) (*finance.Collection, error)
}

type EntryHandler struct {
	entries entryService
}

func NewEntryHandler(entries entryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

type entryRequest struct {
	Kind          string  `json:"kind"`
	CampaignID    *string `json:"campaign_id"`
	EventID       *string `json:"event_id"`
	Amount        string  `json:"amount"`
	Date          string  `json:"date"`
	Label         string  `json:"label"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference"`
	Status        *string `json:"status"`
}

type entryDTO struct {
	ID            uuid.UUID  `json:"id"`
	ClubID        uuid.UUID  `json:"club_id"`
	CampaignID    *uuid.UUID `json:"campaign_id"`
	EventID       *uuid.UUID `json:"event_id"`
	Level         string     `json:"level"`
	Kind          string     `json:"kind"`
	AmountCents   int64      `json:"amount_cents"`
	Amount        string     `json:"amount"`
	Date          string     `json:"date"`
	Label         string     `json:"label"`
	Description   string     `json:"description"`
	PaymentMethod string     `json:"payment_method"`
	Reference     string     `json:"reference,omitempty"`
	Status        *string    `json:"status,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type mutationDTO struct {
	Entry             *entryDTO `json:"entry,omitempty"`
	SummaryStale      bool      `json:"summary_stale"`
	StaleLevels       []string  `json:"stale_levels,omitempty"`
	AllocationWarning string    `json:"allocation_warning,omitempty"`
}

func toEntryDTO(e *domain.LedgerEntry) *entryDTO {
	dto := &entryDTO{
		ID:            e.ID,
		ClubID:        e.ClubID,
		CampaignID:    e.CampaignID,
		EventID:       e.EventID,
		Level:         string(e.Level()),
		Kind:          string(e.Kind),
		AmountCents:   e.AmountCents,
		Amount:        domain.CentsToDecimalString(e.AmountCents),
		Date:          e.Date.Format("2006-01-02"),
		Label:         e.Label,
		Description:   e.Description,
		PaymentMethod: string(e.PaymentMethod),
		Reference:     e.Reference,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.Status != nil {
		s := string(*e.Status)
		dto.Status = &s
	}
	return dto
}

func toMutationDTO(e *domain.LedgerEntry, report *finance.MutationReport) mutationDTO {
	dto := mutationDTO{
		SummaryStale:      report.SummaryStale(),
		AllocationWarning: report.AllocationWarning,
	}
	if e != nil {
		dto.Entry = toEntryDTO(e)
	}
	for _, lvl := range report.StaleLevels {
		dto.StaleLevels = append(dto.StaleLevels, string(lvl))
	}
	return dto
}

// Create handles POST /api/v1/clubs/{clubID}/entries.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	in, badID := req.toInput(clubID)
	if badID != "" {
		RespondAppError(w, ErrInvalidRequest, badID)
		return
	}

	entry, report, err := h.entries.CreateEntry(r.Context(), in)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toMutationDTO(entry, report))
}

// Update handles PATCH /api/v1/entries/{entryID}.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(r.PathValue("entryID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid entry id")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	campaignID, eventID, badID := parseScopeIDs(req.CampaignID, req.EventID)
	if badID != "" {
		RespondAppError(w, ErrInvalidRequest, badID)
		return
	}

	entry, report, err := h.entries.UpdateEntry(r.Context(), entryID, finance.EntryUpdateInput{
		CampaignID:    campaignID,
		EventID:       eventID,
		Amount:        req.Amount,
		Date:          req.Date,
		Label:         req.Label,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Status:        req.Status,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMutationDTO(entry, report))
}

// Delete handles DELETE /api/v1/entries/{entryID}.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(r.PathValue("entryID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid entry id")
		return
	}

	report, err := h.entries.DeleteEntry(r.Context(), entryID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMutationDTO(nil, report))
}

// List handles GET /api/v1/clubs/{clubID}/entries with optional filter
// dimensions as query parameters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	filter, badParam := filterFromQuery(r)
	if badParam != "" {
		RespondAppError(w, ErrInvalidRequest, badParam)
		return
	}

	coll, err := h.entries.ListEntries(r.Context(), clubID, filter)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]*entryDTO, 0, len(coll.Entries))
	for i := range coll.Entries {
		dtos = append(dtos, toEntryDTO(&coll.Entries[i]))
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"entries": dtos,
		"partial": coll.Partial,
	})
}

func (req *entryRequest) toInput(clubID uuid.UUID) (finance.EntryInput, string) {
	campaignID, eventID, badID := parseScopeIDs(req.CampaignID, req.EventID)
	if badID != "" {
		return finance.EntryInput{}, badID
	}
	return finance.EntryInput{
		Kind:          req.Kind,
		ClubID:        clubID,
		CampaignID:    campaignID,
		EventID:       eventID,
		Amount:        req.Amount,
		Date:          req.Date,
		Label:         req.Label,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Status:        req.Status,
	}, ""
}

func parseScopeIDs(campaign, event *string) (campaignID, eventID *uuid.UUID, bad string) {
	if campaign != nil {
		id, err := uuid.Parse(*campaign)
		if err != nil {
			return nil, nil, "invalid campaign_id"
		}
		campaignID = &id
	}
	if event != nil {
		id, err := uuid.Parse(*event)
		if err != nil {
			return nil, nil, "invalid event_id"
		}
		eventID = &id
	}
	return campaignID, eventID, ""
}

func filterFromQuery(r *http.Request) (finance.EntryFilter, string) {
	var filter finance.EntryFilter
	q := r.URL.Query()

	if v := q.Get("kind"); v != "" {
		kind := domain.EntryKind(v)
		filter.Kind = &kind
	}
	if v := q.Get("level"); v != "" {
		level := domain.Level(v)
		filter.Level = &level
	}
	if v := q.Get("campaign_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, "invalid campaign_id"
		}
		filter.CampaignID = &id
	}
	if v := q.Get("event_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, "invalid event_id"
		}
		filter.EventID = &id
	}
	if v := q.Get("label"); v != "" {
		filter.Label = &v
	}
	if v := q.Get("payment_method"); v != "" {
		m := domain.PaymentMethod(v)
		filter.PaymentMethod = &m
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, "invalid from date"
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, "invalid to date"
		}
		filter.To = &t
	}
	return filter, ""
}
