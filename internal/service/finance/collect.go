package finance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/logging"
)

// ScopeKind names the sub-resource a collection fetch targets.
type ScopeKind string

const (
	ScopeClub     ScopeKind = "club"
	ScopeCampaign ScopeKind = "campaign"
	ScopeEvent    ScopeKind = "event"
)

// FailedScope identifies one sub-fetch that did not return entries.
type FailedScope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

// Collection is the result of a club-wide entry fetch. Partial is set when
// one or more sub-scopes failed and contributed zero entries; the totals
// computed from a partial collection are a best-effort floor, not a final
// answer.
type Collection struct {
	Entries []domain.LedgerEntry
	Partial bool
	Failed  []FailedScope
}

// Resolver classifies entries by ownership level and fetches the full entry
// set of a club across its campaigns and events.
type Resolver struct {
	entries     entryStore
	campaigns   campaignStore
	events      eventStore
	concurrency int
	timeout     time.Duration
}

func NewResolver(entries entryStore, campaigns campaignStore, events eventStore, concurrency int, timeout time.Duration) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{
		entries:     entries,
		campaigns:   campaigns,
		events:      events,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// CollectClubWideEntries fetches club-level entries plus one fetch per
// campaign and per event, at most r.concurrency in flight at a time so the
// record store is never hammered with unbounded fan-out. An individual
// sub-fetch that errors or times out is logged and treated as an empty
// scope rather than aborting the collection: one broken campaign must not
// hide the rest of the club's ledger. Only failure to enumerate the
// campaigns or events themselves is a hard error.
func (r *Resolver) CollectClubWideEntries(ctx context.Context, clubID uuid.UUID) (*Collection, error) {
	campaigns, err := r.campaigns.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("CollectClubWideEntries: campaigns: %w", err)
	}
	events, err := r.events.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("CollectClubWideEntries: events: %w", err)
	}

	type task struct {
		scope FailedScope
		fetch func(context.Context) ([]domain.LedgerEntry, error)
	}

	tasks := make([]task, 0, 1+len(campaigns)+len(events))
	tasks = append(tasks, task{
		scope: FailedScope{Kind: ScopeClub, ID: clubID},
		fetch: func(ctx context.Context) ([]domain.LedgerEntry, error) {
			return r.entries.ListClubLevel(ctx, clubID)
		},
	})
	for _, c := range campaigns {
		id := c.ID
		tasks = append(tasks, task{
			scope: FailedScope{Kind: ScopeCampaign, ID: id},
			fetch: func(ctx context.Context) ([]domain.LedgerEntry, error) {
				return r.entries.ListForCampaign(ctx, id)
			},
		})
	}
	for _, e := range events {
		id := e.ID
		tasks = append(tasks, task{
			scope: FailedScope{Kind: ScopeEvent, ID: id},
			fetch: func(ctx context.Context) ([]domain.LedgerEntry, error) {
				return r.entries.ListForEvent(ctx, id)
			},
		})
	}

	log := logging.FromContext(ctx)
	results := make([][]domain.LedgerEntry, len(tasks))
	failures := make([]bool, len(tasks))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, t := range tasks {
		g.Go(func() error {
			fetchCtx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}
			entries, err := t.fetch(fetchCtx)
			if err != nil {
				log.Warn("sub-fetch failed, treating scope as empty",
					"scope", t.scope.Kind, "scope_id", t.scope.ID, "error", err)
				failures[i] = true
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	// Goroutines record failures instead of returning them.
	_ = g.Wait()

	coll := &Collection{}
	seen := make(map[uuid.UUID]bool)
	for i := range tasks {
		if failures[i] {
			coll.Partial = true
			coll.Failed = append(coll.Failed, tasks[i].scope)
			continue
		}
		for _, e := range results[i] {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			coll.Entries = append(coll.Entries, e)
		}
	}

	sortEntries(coll.Entries)
	return coll, nil
}

// sortEntries orders by date descending with deterministic tie-breakers so
// two recomputes over identical state see identical input order.
func sortEntries(entries []domain.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
}
