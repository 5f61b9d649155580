package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

type campaignService interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	RecalculateCampaign(ctx context.Context, id uuid.UUID) ([]domain.Level, error)
}

type CampaignHandler struct {
	campaigns       campaignService
	defaultCurrency string
}

func NewCampaignHandler(campaigns campaignService, defaultCurrency string) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, defaultCurrency: defaultCurrency}
}

type campaignSummaryDTO struct {
	CampaignID         uuid.UUID `json:"campaign_id"`
	ClubID             uuid.UUID `json:"club_id"`
	Name               string    `json:"name"`
	TargetCents        int64     `json:"target_cents"`
	Target             string    `json:"target"`
	TotalRaisedCents   int64     `json:"total_raised_cents"`
	TotalRaised        string    `json:"total_raised"`
	TotalExpensesCents int64     `json:"total_expenses_cents"`
	TotalExpenses      string    `json:"total_expenses"`
	TotalProfitCents   int64     `json:"total_profit_cents"`
	TotalProfit        string    `json:"total_profit"`
	ProgressPercent    float64   `json:"progress_percentage"`
	Stale              bool      `json:"stale"`
	RefreshedAt        time.Time `json:"refreshed_at"`
}

// Summary handles GET /api/v1/campaigns/{campaignID}/summary.
func (h *CampaignHandler) Summary(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(r.PathValue("campaignID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid campaign id")
		return
	}

	campaign, err := h.campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	cur := r.URL.Query().Get("currency")
	if cur == "" {
		cur = h.defaultCurrency
	}
	s := campaign.Summary
	RespondSuccess(w, http.StatusOK, campaignSummaryDTO{
		CampaignID:         campaign.ID,
		ClubID:             campaign.ClubID,
		Name:               campaign.Name,
		TargetCents:        campaign.TargetCents,
		Target:             domain.FormatAmount(campaign.TargetCents, cur),
		TotalRaisedCents:   s.TotalRaisedCents,
		TotalRaised:        domain.FormatAmount(s.TotalRaisedCents, cur),
		TotalExpensesCents: s.TotalExpensesCents,
		TotalExpenses:      domain.FormatAmount(s.TotalExpensesCents, cur),
		TotalProfitCents:   s.TotalProfitCents,
		TotalProfit:        domain.FormatAmount(s.TotalProfitCents, cur),
		ProgressPercent:    s.ProgressPercent,
		Stale:              s.Stale,
		RefreshedAt:        s.RefreshedAt,
	})
}

// Recalculate handles POST /api/v1/campaigns/{campaignID}/recalculate.
// Calling it twice with no intervening mutation yields identical summaries.
func (h *CampaignHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(r.PathValue("campaignID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid campaign id")
		return
	}

	staleLevels, err := h.campaigns.RecalculateCampaign(r.Context(), campaignID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, recalculateDTO(staleLevels))
}

func recalculateDTO(staleLevels []domain.Level) map[string]any {
	levels := make([]string, 0, len(staleLevels))
	for _, lvl := range staleLevels {
		levels = append(levels, string(lvl))
	}
	return map[string]any{
		"summary_stale": len(levels) > 0,
		"stale_levels":  levels,
	}
}
