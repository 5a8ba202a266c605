// Package proxy polls upstream realtime feeds, reconciles them against the
// static schedule, and serves the combined canonical feed over HTTP.
package proxy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitforge/railproxy/export"
	"github.com/transitforge/railproxy/gtfsrt"
	"github.com/transitforge/railproxy/internal/clock"
	"github.com/transitforge/railproxy/reconcile"
)

// Provider owns the polling loop. Each upstream feed gets its own
// Reconciler because a matcher's window state must not be shared across
// concurrently processed feeds.
type Provider struct {
	client      *gtfsrt.Client
	reconcilers map[string]*reconcile.Reconciler
	feedIDs     []string
	interval    time.Duration
	clock       clock.Clock
	log         *slog.Logger

	mu         sync.RWMutex
	feedBytes  []byte
	feedJSON   []byte
	lastUpdate time.Time
}

func NewProvider(client *gtfsrt.Client, reconcilers map[string]*reconcile.Reconciler, feedIDs []string, interval time.Duration, clk clock.Clock, log *slog.Logger) *Provider {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		client:      client,
		reconcilers: reconcilers,
		feedIDs:     feedIDs,
		interval:    interval,
		clock:       clk,
		log:         log,
	}
}

// Run polls until ctx is canceled. The first poll happens immediately.
func (p *Provider) Run(ctx context.Context) {
	p.poll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches and reconciles every feed concurrently, then publishes one
// combined snapshot.
func (p *Provider) poll(ctx context.Context) {
	type feedResult struct {
		feedID  string
		updates []*rt.TripUpdate
	}

	results := make([]feedResult, len(p.feedIDs))
	var wg sync.WaitGroup
	for i, feedID := range p.feedIDs {
		wg.Add(1)
		go func(i int, feedID string) {
			defer wg.Done()
			msg, err := p.client.Fetch(ctx, feedID)
			if err != nil {
				p.log.Error("feed fetch failed", slog.String("feed", feedID), slog.Any("error", err))
				return
			}
			results[i] = feedResult{feedID: feedID, updates: p.reconcilers[feedID].ProcessFeed(feedID, msg)}
		}(i, feedID)
	}
	wg.Wait()

	var updates []*rt.TripUpdate
	for _, res := range results {
		updates = append(updates, res.updates...)
	}

	now := p.clock.Now()
	msg := export.Build(updates, now)
	raw, err := export.Marshal(msg)
	if err != nil {
		p.log.Error("encoding snapshot failed", slog.Any("error", err))
		return
	}
	asJSON, err := export.MarshalJSON(msg)
	if err != nil {
		p.log.Error("encoding snapshot JSON failed", slog.Any("error", err))
		return
	}

	p.mu.Lock()
	p.feedBytes = raw
	p.feedJSON = asJSON
	p.lastUpdate = now
	p.mu.Unlock()
	p.log.Info("snapshot published", slog.Int("updates", len(updates)))
}

// Snapshot returns the latest published feed in wire format, or nil before
// the first successful poll.
func (p *Provider) Snapshot() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feedBytes
}

// SnapshotJSON returns the latest published feed as JSON.
func (p *Provider) SnapshotJSON() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feedJSON
}

// LastUpdate returns the time of the last successful poll.
func (p *Provider) LastUpdate() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastUpdate
}
