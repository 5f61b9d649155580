package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/export"
	"github.com/clubfunds/clubfunds-backend/internal/logging"
	"github.com/clubfunds/clubfunds-backend/internal/service/finance"
)

type exportService interface {
	ListEntries(ctx context.Context, clubID uuid.UUID, filter finance.EntryFilter) (*finance.Collection, error)
}

type ExportHandler struct {
	entries exportService
}

func NewExportHandler(entries exportService) *ExportHandler {
	return &ExportHandler{entries: entries}
}

// Entries handles GET /api/v1/clubs/{clubID}/entries/export?kind=income|expense
// plus the usual filter parameters, and streams CSV.
func (h *ExportHandler) Entries(w http.ResponseWriter, r *http.Request) {
	clubID, err := uuid.Parse(r.PathValue("clubID"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, "invalid club id")
		return
	}

	kind := domain.EntryKind(r.URL.Query().Get("kind"))
	if !kind.IsValid() {
		RespondAppError(w, ErrInvalidRequest, "kind must be income or expense")
		return
	}

	filter, badParam := filterFromQuery(r)
	if badParam != "" {
		RespondAppError(w, ErrInvalidRequest, badParam)
		return
	}
	filter.Kind = &kind

	coll, err := h.entries.ListEntries(r.Context(), clubID, filter)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s-%s.csv"`, clubID, kind))
	if coll.Partial {
		w.Header().Set("X-Partial-Result", "true")
	}

	if err := export.WriteEntries(w, kind, coll.Entries); err != nil {
		// Headers are already out; log rather than switching to JSON mid-stream.
		logging.FromContext(r.Context()).Error("csv export failed", "club_id", clubID, "error", err)
	}
}
