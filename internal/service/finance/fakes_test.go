package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/config"
	"github.com/clubfunds/clubfunds-backend/internal/domain"
)

var errStoreDown = errors.New("record store unavailable")

// world is shared in-memory state behind the fake stores. Sub-fetch failures
// are injected per scope id with a countdown so transient errors can be
// simulated: each failing call decrements the counter. Scopes in hangs block
// until the caller's context is cancelled; listDelay slows every list call so
// concurrency can be observed through the in-flight high-water mark.
type world struct {
	mu        sync.Mutex
	clubs     map[uuid.UUID]domain.Club
	campaigns map[uuid.UUID]domain.Campaign
	events    map[uuid.UUID]domain.Event
	entries   map[uuid.UUID]domain.LedgerEntry

	listFailures map[uuid.UUID]int
	listCalls    map[uuid.UUID]int
	hangs        map[uuid.UUID]bool
	listDelay    time.Duration
	inFlight     int
	maxInFlight  int
}

func newWorld() *world {
	return &world{
		clubs:        make(map[uuid.UUID]domain.Club),
		campaigns:    make(map[uuid.UUID]domain.Campaign),
		events:       make(map[uuid.UUID]domain.Event),
		entries:      make(map[uuid.UUID]domain.LedgerEntry),
		listFailures: make(map[uuid.UUID]int),
		listCalls:    make(map[uuid.UUID]int),
		hangs:        make(map[uuid.UUID]bool),
	}
}

func (w *world) addClub() *domain.Club {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := domain.Club{ID: uuid.New(), Name: "Riverside Boosters", CreatedAt: time.Now().UTC()}
	w.clubs[c.ID] = c
	return &c
}

func (w *world) addCampaign(clubID uuid.UUID, targetCents int64) *domain.Campaign {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := domain.Campaign{ID: uuid.New(), ClubID: clubID, Name: "Annual Drive", TargetCents: targetCents, CreatedAt: time.Now().UTC()}
	w.campaigns[c.ID] = c
	return &c
}

func (w *world) addEvent(clubID uuid.UUID, campaignID *uuid.UUID, goalCents int64) *domain.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := domain.Event{ID: uuid.New(), ClubID: clubID, CampaignID: campaignID, Name: "Bake Sale", GoalCents: goalCents, CreatedAt: time.Now().UTC()}
	w.events[e.ID] = e
	return &e
}

func (w *world) addEntry(e domain.LedgerEntry) domain.LedgerEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	w.entries[e.ID] = e
	return e
}

// failListFor makes the next n entry-list calls for the scope id fail.
func (w *world) failListFor(scopeID uuid.UUID, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listFailures[scopeID] = n
}

// hangListFor makes entry-list calls for the scope id block until the
// caller's context is cancelled.
func (w *world) hangListFor(scopeID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hangs[scopeID] = true
}

func (w *world) delayLists(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listDelay = d
}

func (w *world) highWaterInFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxInFlight
}

func (w *world) listEntries(ctx context.Context, scopeID uuid.UUID, match func(*domain.LedgerEntry) bool) ([]domain.LedgerEntry, error) {
	w.mu.Lock()
	w.listCalls[scopeID]++
	w.inFlight++
	if w.inFlight > w.maxInFlight {
		w.maxInFlight = w.inFlight
	}
	fail := w.listFailures[scopeID] > 0
	if fail {
		w.listFailures[scopeID]--
	}
	hang := w.hangs[scopeID]
	delay := w.listDelay
	w.mu.Unlock()
	defer w.exitList()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("listEntries %s: %w", scopeID, errStoreDown)
	}
	var out []domain.LedgerEntry
	for _, e := range w.entries {
		if match(&e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (w *world) exitList() {
	w.mu.Lock()
	w.inFlight--
	w.mu.Unlock()
}

type fakeEntries struct{ w *world }

func (f *fakeEntries) Create(_ context.Context, e *domain.LedgerEntry) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.entries[e.ID] = *e
	return nil
}

func (f *fakeEntries) Update(_ context.Context, e *domain.LedgerEntry) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if _, ok := f.w.entries[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.w.entries[e.ID] = *e
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, id uuid.UUID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if _, ok := f.w.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.w.entries, id)
	return nil
}

func (f *fakeEntries) GetByID(_ context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	e, ok := f.w.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEntries) ListClubLevel(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error) {
	return f.w.listEntries(ctx, clubID, func(e *domain.LedgerEntry) bool {
		return e.ClubID == clubID && e.CampaignID == nil && e.EventID == nil
	})
}

func (f *fakeEntries) ListAllocations(ctx context.Context, clubID uuid.UUID) ([]domain.LedgerEntry, error) {
	return f.w.listEntries(ctx, clubID, func(e *domain.LedgerEntry) bool {
		return e.ClubID == clubID && e.IsAllocation()
	})
}

func (f *fakeEntries) ListForCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.LedgerEntry, error) {
	return f.w.listEntries(ctx, campaignID, func(e *domain.LedgerEntry) bool {
		return e.CampaignID != nil && *e.CampaignID == campaignID && e.EventID == nil
	})
}

func (f *fakeEntries) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.LedgerEntry, error) {
	return f.w.listEntries(ctx, eventID, func(e *domain.LedgerEntry) bool {
		return e.EventID != nil && *e.EventID == eventID
	})
}

type fakeCampaigns struct{ w *world }

func (f *fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &c, nil
}

func (f *fakeCampaigns) ListByClub(_ context.Context, clubID uuid.UUID) ([]domain.Campaign, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []domain.Campaign
	for _, c := range f.w.campaigns {
		if c.ClubID == clubID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampaigns) UpdateDerived(_ context.Context, id uuid.UUID, s domain.CampaignSummary) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.campaigns[id]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	s.Stale = false
	c.Summary = s
	f.w.campaigns[id] = c
	return nil
}

func (f *fakeCampaigns) MarkSummaryStale(_ context.Context, id uuid.UUID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.campaigns[id]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	c.Summary.Stale = true
	f.w.campaigns[id] = c
	return nil
}

type fakeEvents struct{ w *world }

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	e, ok := f.w.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

func (f *fakeEvents) ListByClub(_ context.Context, clubID uuid.UUID) ([]domain.Event, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []domain.Event
	for _, e := range f.w.events {
		if e.ClubID == clubID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]domain.Event, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []domain.Event
	for _, e := range f.w.events {
		if e.CampaignID != nil && *e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) UpdateDerived(_ context.Context, id uuid.UUID, s domain.EventSummary) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	e, ok := f.w.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	s.Stale = false
	e.Summary = s
	f.w.events[id] = e
	return nil
}

func (f *fakeEvents) MarkSummaryStale(_ context.Context, id uuid.UUID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	e, ok := f.w.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Summary.Stale = true
	f.w.events[id] = e
	return nil
}

type fakeClubs struct{ w *world }

func (f *fakeClubs) GetByID(_ context.Context, id uuid.UUID) (*domain.Club, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.clubs[id]
	if !ok {
		return nil, domain.ErrClubNotFound
	}
	return &c, nil
}

func (f *fakeClubs) UpdateDerived(_ context.Context, id uuid.UUID, s domain.ClubSummary) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.clubs[id]
	if !ok {
		return domain.ErrClubNotFound
	}
	s.Stale = false
	c.Summary = s
	f.w.clubs[id] = c
	return nil
}

func (f *fakeClubs) MarkSummaryStale(_ context.Context, id uuid.UUID) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.clubs[id]
	if !ok {
		return domain.ErrClubNotFound
	}
	c.Summary.Stale = true
	f.w.clubs[id] = c
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		DisplayCurrency:   "USD",
		FetchConcurrency:  5,
		FetchTimeoutMS:    1000,
		RecalcMaxAttempts: 3,
		RecalcBackoffMS:   1,
	}
}

func newTestService(w *world) *Service {
	return NewService(&fakeEntries{w}, &fakeCampaigns{w}, &fakeEvents{w}, &fakeClubs{w}, testConfig())
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
