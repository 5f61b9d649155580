package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/repository"
)

func SeedClub(t *testing.T, db *sql.DB, name string) *domain.Club {
	t.Helper()

	c := &domain.Club{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := repository.NewClubRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("seed club %s: %v", name, err)
	}
	return c
}

func SeedCampaign(t *testing.T, db *sql.DB, clubID uuid.UUID, name string, targetCents int64) *domain.Campaign {
	t.Helper()

	c := &domain.Campaign{
		ID:          uuid.New(),
		ClubID:      clubID,
		Name:        name,
		TargetCents: targetCents,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repository.NewCampaignRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("seed campaign %s: %v", name, err)
	}
	return c
}

func SeedEvent(t *testing.T, db *sql.DB, clubID uuid.UUID, campaignID *uuid.UUID, name string, goalCents int64) *domain.Event {
	t.Helper()

	e := &domain.Event{
		ID:         uuid.New(),
		ClubID:     clubID,
		CampaignID: campaignID,
		Name:       name,
		GoalCents:  goalCents,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repository.NewEventRepository(db).Create(context.Background(), e); err != nil {
		t.Fatalf("seed event %s: %v", name, err)
	}
	return e
}

func SeedEntry(t *testing.T, db *sql.DB, e *domain.LedgerEntry) *domain.LedgerEntry {
	t.Helper()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
		e.UpdatedAt = now
	}
	if err := repository.NewEntryRepository(db).Create(context.Background(), e); err != nil {
		t.Fatalf("seed entry %s: %v", e.ID, err)
	}
	return e
}

func GetClubSummary(t *testing.T, db *sql.DB, clubID uuid.UUID) domain.ClubSummary {
	t.Helper()

	club, err := repository.NewClubRepository(db).GetByID(context.Background(), clubID)
	if err != nil {
		t.Fatalf("get club %s: %v", clubID, err)
	}
	return club.Summary
}
