package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

type eventService interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	RecalculateEvent(ctx context.Context, id uuid.UUID) ([]domain.Level, error)
}

type EventHandler struct {
	events          eventService
	defaultCurrency string
}

func NewEventHandler(events eventService, defaultCurrency string) *EventHandler {
	return &EventHandler{events: events, defaultCurrency: defaultCurrency}
}

type eventSummaryDTO struct {
	EventID            uuid.UUID  `json:"event_id"`
	ClubID             uuid.UUID  `json:"club_id"`
	CampaignID         *uuid.UUID `json:"campaign_id"`
	Name               string     `json:"name"`
	GoalCents          int64      `json:"goal_cents"`
	Goal               string     `json:"goal"`
	ActualCents        int64      `json:"actual_cents"`
	Actual             string     `json:"actual"`
	TotalExpensesCents int64      `json:"total_expenses_cents"`
	TotalExpenses      string     `json:"total_expenses"`
	NetProfitCents     int64      `json:"net_profit_cents"`
	NetProfit          string     `json:"net_profit"`
	Stale              bool       `json:"stale"`
	RefreshedAt        time.Time  `json:"refreshed_at"`
}

// Summary handles GET /api/v1/events/{eventID}/summary.
func (h *EventHandler) Summary(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("eventID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid event id")
		return
	}

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	cur := r.URL.Query().Get("currency")
	if cur == "" {
		cur = h.defaultCurrency
	}
	s := event.Summary
	RespondSuccess(w, http.StatusOK, eventSummaryDTO{
		EventID:            event.ID,
		ClubID:             event.ClubID,
		CampaignID:         event.CampaignID,
		Name:               event.Name,
		GoalCents:          event.GoalCents,
		Goal:               domain.FormatAmount(event.GoalCents, cur),
		ActualCents:        s.ActualCents,
		Actual:             domain.FormatAmount(s.ActualCents, cur),
		TotalExpensesCents: s.TotalExpensesCents,
		TotalExpenses:      domain.FormatAmount(s.TotalExpensesCents, cur),
		NetProfitCents:     s.NetProfitCents,
		NetProfit:          domain.FormatAmount(s.NetProfitCents, cur),
		Stale:              s.Stale,
		RefreshedAt:        s.RefreshedAt,
	})
}

// Recalculate handles POST /api/v1/events/{eventID}/recalculate.
func (h *EventHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("eventID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid event id")
		return
	}

	staleLevels, err := h.events.RecalculateEvent(r.Context(), eventID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, recalculateDTO(staleLevels))
}
