package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

func TestCreateEntry_RejectedBeforeAnyWrite(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	svc := newTestService(w)

	_, _, err := svc.CreateEntry(context.Background(), EntryInput{
		Kind:          "income",
		ClubID:        club.ID,
		Amount:        "oops",
		Date:          "2024-01-01",
		Label:         "",
		Description:   "x",
		PaymentMethod: "cash",
	})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasViolations())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.entries)
}

func TestCreateEntry_ScopeMismatch(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	other := w.addClub()
	foreign := w.addCampaign(other.ID, 0)
	svc := newTestService(w)

	_, _, err := svc.CreateEntry(context.Background(), EntryInput{
		Kind:          "income",
		ClubID:        club.ID,
		CampaignID:    &foreign.ID,
		Amount:        "10.00",
		Date:          "2024-01-01",
		Label:         "Donation",
		Description:   "wrong club",
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrScopeMismatch)

	missing := uuid.New()
	_, _, err = svc.CreateEntry(context.Background(), EntryInput{
		Kind:          "income",
		ClubID:        club.ID,
		EventID:       &missing,
		Amount:        "10.00",
		Date:          "2024-01-01",
		Label:         "Donation",
		Description:   "no such event",
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestUpdateEntry_ScopeImmutable(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	campaign := w.addCampaign(club.ID, 0)
	event := w.addEvent(club.ID, nil, 0)
	svc := newTestService(w)

	entry := w.addEntry(incomeAt(club.ID, &campaign.ID, nil, 100_00, "2024-01-01"))

	update := EntryUpdateInput{
		Amount:        "100.00",
		Date:          "2024-01-01",
		Label:         "Donation",
		Description:   "moved",
		PaymentMethod: "cash",
	}

	// Swapping the campaign or adding an event counts as a level change.
	other := w.addCampaign(club.ID, 0)
	swapped := update
	swapped.CampaignID = &other.ID
	_, _, err := svc.UpdateEntry(context.Background(), entry.ID, swapped)
	assert.ErrorIs(t, err, domain.ErrScopeImmutable)

	withEvent := update
	withEvent.CampaignID = &campaign.ID
	withEvent.EventID = &event.ID
	_, _, err = svc.UpdateEntry(context.Background(), entry.ID, withEvent)
	assert.ErrorIs(t, err, domain.ErrScopeImmutable)

	same := update
	same.CampaignID = &campaign.ID
	same.Amount = "125.50"
	updated, report, err := svc.UpdateEntry(context.Background(), entry.ID, same)
	require.NoError(t, err)
	assert.Equal(t, int64(125_50), updated.AmountCents)
	assert.False(t, report.SummaryStale())
}

func TestUpdateEntry_OmittedScopeLeftUnchanged(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	campaign := w.addCampaign(club.ID, 0)
	svc := newTestService(w)

	entry := w.addEntry(incomeAt(club.ID, &campaign.ID, nil, 100_00, "2024-01-01"))

	// A request carrying neither scope field edits the entry where it lives.
	updated, _, err := svc.UpdateEntry(context.Background(), entry.ID, EntryUpdateInput{
		Amount:        "175.00",
		Date:          "2024-01-05",
		Label:         "Donation",
		Description:   "amount corrected",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(175_00), updated.AmountCents)
	require.NotNil(t, updated.CampaignID)
	assert.Equal(t, campaign.ID, *updated.CampaignID)
	assert.Nil(t, updated.EventID)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)

	_, _, err := svc.UpdateEntry(context.Background(), uuid.New(), EntryUpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	w := newWorld()
	svc := newTestService(w)

	_, err := svc.DeleteEntry(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEntries_Filters(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	campaign := w.addCampaign(club.ID, 0)
	svc := newTestService(w)

	w.addEntry(incomeAt(club.ID, nil, nil, 100_00, "2024-01-01"))
	w.addEntry(incomeAt(club.ID, &campaign.ID, nil, 200_00, "2024-02-01"))
	expense := domain.LedgerEntry{
		Kind:          domain.EntryKindExpense,
		ClubID:        club.ID,
		AmountCents:   50_00,
		Date:          mustDate("2024-02-15"),
		Label:         "Supplies",
		Description:   "poster board",
		PaymentMethod: domain.MethodCard,
	}
	w.addEntry(expense)

	kind := domain.EntryKindIncome
	coll, err := svc.ListEntries(context.Background(), club.ID, EntryFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Len(t, coll.Entries, 2)

	level := domain.LevelCampaign
	coll, err = svc.ListEntries(context.Background(), club.ID, EntryFilter{Level: &level})
	require.NoError(t, err)
	require.Len(t, coll.Entries, 1)
	assert.Equal(t, int64(200_00), coll.Entries[0].AmountCents)

	from := mustDate("2024-02-01")
	to := mustDate("2024-02-28")
	coll, err = svc.ListEntries(context.Background(), club.ID, EntryFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, coll.Entries, 2)
}

func TestListEntries_InvalidFilter(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	svc := newTestService(w)

	bad := domain.EntryKind("transfer")
	_, err := svc.ListEntries(context.Background(), club.ID, EntryFilter{Kind: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	from := mustDate("2024-03-01")
	to := mustDate("2024-01-01")
	_, err = svc.ListEntries(context.Background(), club.ID, EntryFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestListEntries_PartialSurfaced(t *testing.T) {
	w := newWorld()
	club := w.addClub()
	campaign := w.addCampaign(club.ID, 0)
	svc := newTestService(w)

	w.addEntry(incomeAt(club.ID, nil, nil, 100_00, "2024-01-01"))
	w.failListFor(campaign.ID, 1)

	coll, err := svc.ListEntries(context.Background(), club.ID, EntryFilter{})
	require.NoError(t, err)
	assert.True(t, coll.Partial)
	assert.Len(t, coll.Entries, 1)
}
