package finance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/clubfunds/clubfunds-backend/internal/config"
	"github.com/clubfunds/clubfunds-backend/internal/domain"
	"github.com/clubfunds/clubfunds-backend/internal/logging"
	"github.com/clubfunds/clubfunds-backend/internal/rollup"
)

// Coordinator keeps derived summaries consistent after every entry mutation.
// Each affected node is recomputed from scratch from current store state
// rather than patched incrementally, so a recompute can never drift from the
// true sums no matter how many earlier refreshes failed or were skipped.
//
// Recomputation is synchronous from the mutator's perspective. Failures are
// retried with backoff; when retries exhaust, the mutation stands and the
// node's summary row is marked stale instead of the write being reverted.
type Coordinator struct {
	entries   entryStore
	campaigns campaignStore
	events    eventStore
	clubs     clubStore
	resolver  *Resolver

	maxAttempts     int
	initialInterval time.Duration
	now             func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(
	entries entryStore,
	campaigns campaignStore,
	events eventStore,
	clubs clubStore,
	resolver *Resolver,
	cfg *config.Config,
) *Coordinator {
	attempts := cfg.RecalcMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Coordinator{
		entries:         entries,
		campaigns:       campaigns,
		events:          events,
		clubs:           clubs,
		resolver:        resolver,
		maxAttempts:     attempts,
		initialInterval: cfg.RecalcBackoff(),
		now:             func() time.Time { return time.Now().UTC() },
		locks:           make(map[string]*sync.Mutex),
	}
}

// EntryChanged recomputes every level the entry touches: its event if any,
// then that event's campaign or the entry's campaign, then always the club.
// It returns the levels whose refresh exhausted retries and is now stale.
func (c *Coordinator) EntryChanged(ctx context.Context, e *domain.LedgerEntry) []domain.Level {
	var stale []domain.Level

	switch e.Level() {
	case domain.LevelEvent:
		event, err := c.events.GetByID(ctx, *e.EventID)
		if err != nil {
			logging.FromContext(ctx).Error("recalc: event lookup failed", "event_id", *e.EventID, "error", err)
			stale = append(stale, domain.LevelEvent)
		} else {
			stale = append(stale, c.recalculateEventAndCampaign(ctx, event)...)
		}
	case domain.LevelCampaign:
		if err := c.recomputeCampaign(ctx, *e.CampaignID); err != nil {
			stale = append(stale, domain.LevelCampaign)
		}
	}

	if err := c.recomputeClub(ctx, e.ClubID); err != nil {
		stale = append(stale, domain.LevelClub)
	}
	return stale
}

// RecalculateEventTree is the outward-facing recompute trigger for an event:
// event, then its campaign if it has one, then the club. Idempotent.
func (c *Coordinator) RecalculateEventTree(ctx context.Context, event *domain.Event) []domain.Level {
	stale := c.recalculateEventAndCampaign(ctx, event)
	if err := c.recomputeClub(ctx, event.ClubID); err != nil {
		stale = append(stale, domain.LevelClub)
	}
	return stale
}

// RecalculateCampaignTree recomputes a campaign and its club.
func (c *Coordinator) RecalculateCampaignTree(ctx context.Context, campaign *domain.Campaign) []domain.Level {
	var stale []domain.Level
	if err := c.recomputeCampaign(ctx, campaign.ID); err != nil {
		stale = append(stale, domain.LevelCampaign)
	}
	if err := c.recomputeClub(ctx, campaign.ClubID); err != nil {
		stale = append(stale, domain.LevelClub)
	}
	return stale
}

func (c *Coordinator) recalculateEventAndCampaign(ctx context.Context, event *domain.Event) []domain.Level {
	var stale []domain.Level
	if err := c.recomputeEvent(ctx, event.ID); err != nil {
		stale = append(stale, domain.LevelEvent)
	}
	if event.CampaignID != nil {
		if err := c.recomputeCampaign(ctx, *event.CampaignID); err != nil {
			stale = append(stale, domain.LevelCampaign)
		}
	}
	return stale
}

func (c *Coordinator) recomputeEvent(ctx context.Context, id uuid.UUID) error {
	return c.recomputeNode(ctx, domain.LevelEvent, id, func() error {
		entries, err := c.entries.ListForEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("recomputeEvent: %w", err)
		}
		return c.events.UpdateDerived(ctx, id, rollup.BuildEventSummary(entries, c.now()))
	}, func() error {
		return c.events.MarkSummaryStale(ctx, id)
	})
}

// recomputeCampaign aggregates the campaign's own entries plus every entry
// of its events, so an event-level expense rolls into its campaign's totals.
func (c *Coordinator) recomputeCampaign(ctx context.Context, id uuid.UUID) error {
	return c.recomputeNode(ctx, domain.LevelCampaign, id, func() error {
		campaign, err := c.campaigns.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("recomputeCampaign: %w", err)
		}
		entries, err := c.entries.ListForCampaign(ctx, id)
		if err != nil {
			return fmt.Errorf("recomputeCampaign: %w", err)
		}
		events, err := c.events.ListByCampaign(ctx, id)
		if err != nil {
			return fmt.Errorf("recomputeCampaign: %w", err)
		}
		for _, ev := range events {
			evEntries, err := c.entries.ListForEvent(ctx, ev.ID)
			if err != nil {
				return fmt.Errorf("recomputeCampaign: event %s: %w", ev.ID, err)
			}
			entries = append(entries, evEntries...)
		}
		return c.campaigns.UpdateDerived(ctx, id,
			rollup.BuildCampaignSummary(entries, campaign.TargetCents, c.now()))
	}, func() error {
		return c.campaigns.MarkSummaryStale(ctx, id)
	})
}

// recomputeClub aggregates the whole subtree through the resolver. A partial
// collection is treated as a retryable failure; if it is still partial after
// the retry budget the best-effort totals are written and the row is marked
// stale so readers can tell.
func (c *Coordinator) recomputeClub(ctx context.Context, id uuid.UUID) error {
	var lastPartial *domain.ClubSummary
	err := c.recomputeNode(ctx, domain.LevelClub, id, func() error {
		coll, err := c.resolver.CollectClubWideEntries(ctx, id)
		if err != nil {
			return fmt.Errorf("recomputeClub: %w", err)
		}
		summary := rollup.BuildClubSummary(coll.Entries, c.now())
		if coll.Partial {
			lastPartial = &summary
			return fmt.Errorf("recomputeClub: %d scopes failed: %w", len(coll.Failed), domain.ErrSummaryStale)
		}
		lastPartial = nil
		return c.clubs.UpdateDerived(ctx, id, summary)
	}, func() error {
		if lastPartial != nil {
			if err := c.clubs.UpdateDerived(ctx, id, *lastPartial); err != nil {
				return err
			}
		}
		return c.clubs.MarkSummaryStale(ctx, id)
	})
	return err
}

// recomputeNode serializes recomputation per (level, node) and retries with
// exponential backoff. Two concurrent mutators of the same node therefore
// never interleave their fetch-aggregate-persist sequences. On exhausted
// retries markStale runs and the original error is returned.
func (c *Coordinator) recomputeNode(ctx context.Context, level domain.Level, id uuid.UUID, compute func() error, markStale func() error) error {
	lock := c.lockFor(string(level) + "/" + id.String())
	lock.Lock()
	defer lock.Unlock()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval

	err := backoff.Retry(compute,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx))
	if err == nil {
		return nil
	}

	log := logging.FromContext(ctx)
	log.Error("recalculation exhausted retries, marking summary stale",
		"level", level, "node_id", id, "attempts", c.maxAttempts, "error", err)
	if staleErr := markStale(); staleErr != nil {
		log.Error("failed to mark summary stale", "level", level, "node_id", id, "error", staleErr)
	}
	return &domain.StaleSummaryError{Level: level, Err: err}
}

func (c *Coordinator) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}
