// Package engine implements the trust scoring engines: stateful per-entity
// score maintainers which subscribe to raw observation events, apply weighted
// scoring rules, and republish normalized trust.*.updated events.
//
// Three engines share one core and differ only in their rule tables and
// weight constants: casino, domain, and degen (user).
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/countstore"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/router"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/scorestore"
)

// Adjustment is one signed change a rule wants applied to an entity's
// breakdown: a delta on a target category, plus meter increments.
type Adjustment struct {
	Entity   string
	Category string
	Delta    float64
	Severity int
	Reason   string
	Meters   map[string]float64
}

// RuleFunc converts one raw observation event into zero or more adjustments.
// Malformed payloads return no adjustments; rules never panic on bad data.
type RuleFunc func(ctx context.Context, e *Engine, evt event.Event) []Adjustment

// Config fixes an engine's identity and scoring constants. Weights are
// compile-time constants in the per-engine files and must sum to 1.0, which
// keeps the derived total consistent with its components by construction.
type Config struct {
	Kind            scorestore.Kind
	SourceID        string
	Baseline        float64
	Weights         map[string]float64
	UpdatedType     event.Type
	RollupType      event.Type // zero for engines without a rollup stream
	PrimaryCategory string     // rollup batch adjustments land here
}

type Engine struct {
	logger   *slog.Logger
	router   *router.Router
	store    scorestore.ScoreStore
	counters countstore.CountStore
	cfg      Config
	rules    map[event.Type]RuleFunc

	// serializes read-modify-write cycles on this engine's entities,
	// preserving the one-writer-per-entity invariant under concurrent publish
	mu sync.Mutex
}

func newEngine(logger *slog.Logger, r *router.Router, store scorestore.ScoreStore, counters countstore.CountStore, cfg Config, rules map[event.Type]RuleFunc) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sum := 0.0
	for _, w := range cfg.Weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("%s weights sum to %v, want 1.0", cfg.SourceID, sum)
	}
	e := &Engine{
		logger:   logger.With("engine", cfg.SourceID),
		router:   r,
		store:    store,
		counters: counters,
		cfg:      cfg,
		rules:    rules,
	}
	for t := range rules {
		if _, err := r.Subscribe(t, cfg.SourceID, e.handleEvent); err != nil {
			return nil, err
		}
	}
	if cfg.RollupType != "" {
		if _, err := r.Subscribe(cfg.RollupType, cfg.SourceID, e.handleRollup); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) Kind() scorestore.Kind { return e.cfg.Kind }

func (e *Engine) handleEvent(ctx context.Context, evt event.Event) error {
	rule, ok := e.rules[evt.Type]
	if !ok {
		return nil
	}
	adjs := rule(ctx, e, evt)
	if len(adjs) == 0 {
		eventsSkipped.WithLabelValues(e.cfg.SourceID, string(evt.Type)).Inc()
		return nil
	}
	eventsProcessed.WithLabelValues(e.cfg.SourceID, string(evt.Type)).Inc()
	for _, adj := range adjs {
		prev, next, err := e.apply(ctx, adj, evt.Timestamp)
		if err != nil {
			return fmt.Errorf("applying %s adjustment for %q: %w", evt.Type, adj.Entity, err)
		}
		e.publishUpdated(ctx, adj, prev, next)
	}
	return nil
}

// apply does one locked read-modify-write cycle: resolve or lazily create the
// breakdown, clamp-apply the delta, append history, persist.
func (e *Engine) apply(ctx context.Context, adj Adjustment, observedTS int64) (prev, next int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(ctx, adj, observedTS)
}

// applyLocked is the body of apply; the caller must hold e.mu.
func (e *Engine) applyLocked(ctx context.Context, adj Adjustment, observedTS int64) (prev, next int, err error) {
	if adj.Entity == "" {
		return 0, 0, fmt.Errorf("adjustment without entity")
	}
	if _, ok := e.cfg.Weights[adj.Category]; !ok {
		return 0, 0, fmt.Errorf("unknown category %q", adj.Category)
	}

	b, err := e.store.Get(ctx, e.cfg.Kind, adj.Entity)
	if err != nil {
		return 0, 0, err
	}
	created := b == nil
	if created {
		b = e.newBreakdown(adj.Entity)
	}
	prev = e.score(b)

	b.Scores[adj.Category] = clamp(b.Scores[adj.Category] + adj.Delta)
	if b.Meters == nil {
		// JSON-backed stores drop an empty meter map on round-trip
		b.Meters = make(map[string]float64)
	}
	for k, v := range adj.Meters {
		b.Meters[k] += v
	}
	if observedTS == 0 {
		observedTS = time.Now().UnixMilli()
	}
	b.History = append(b.History, scorestore.HistoryEntry{
		Timestamp: observedTS,
		Category:  adj.Category,
		Delta:     adj.Delta,
		Reason:    adj.Reason,
	})
	b.UpdatedAt = time.Now().UnixMilli()

	if err := e.store.Put(ctx, b); err != nil {
		return 0, 0, err
	}
	if created {
		entitiesCreated.WithLabelValues(e.cfg.SourceID).Inc()
	}
	next = e.score(b)
	scoreGauge.WithLabelValues(e.cfg.SourceID, adj.Entity).Set(float64(next))
	return prev, next, nil
}

func (e *Engine) publishUpdated(ctx context.Context, adj Adjustment, prev, next int) {
	userID := ""
	if e.cfg.Kind == scorestore.KindDegen {
		userID = adj.Entity
	}
	e.router.Publish(ctx, e.cfg.UpdatedType, e.cfg.SourceID, event.ScoreUpdated{
		Entity:        adj.Entity,
		PreviousScore: prev,
		NewScore:      next,
		Delta:         adj.Delta,
		Severity:      adj.Severity,
		Reason:        adj.Reason,
		Source:        e.cfg.SourceID,
	}, userID)
}

// handleRollup applies a flushed window batch as a single adjustment per
// entity, but only for entities this engine has no live state for. Live
// entities already absorbed the raw deltas the batch summarizes; rollups are
// the unit of warm-start recovery, not a second scoring path. Applied batches
// are not republished as updated events for the same reason.
func (e *Engine) handleRollup(ctx context.Context, evt event.Event) error {
	batch, ok := evt.Data.(event.RollupBatch)
	if !ok {
		return nil
	}
	for entity, bucket := range batch.Entries {
		// existence check and apply under one lock hold, so a raw event
		// racing in cannot create the entity in between and get the batch
		// delta stacked on top
		e.mu.Lock()
		existing, err := e.store.Get(ctx, e.cfg.Kind, entity)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		if existing != nil {
			e.mu.Unlock()
			continue
		}
		_, _, err = e.applyLocked(ctx, Adjustment{
			Entity:   entity,
			Category: e.cfg.PrimaryCategory,
			Delta:    bucket.TotalDelta,
			Severity: bucket.LastSeverity,
			Reason:   fmt.Sprintf("rollup window %d-%d (%d events)", batch.WindowStart, batch.WindowEnd, bucket.Events),
		}, batch.WindowEnd)
		e.mu.Unlock()
		if err != nil {
			return err
		}
		rollupRecoveries.WithLabelValues(e.cfg.SourceID).Inc()
	}
	return nil
}

func (e *Engine) newBreakdown(entity string) *scorestore.Breakdown {
	now := time.Now().UnixMilli()
	b := &scorestore.Breakdown{
		Kind:      e.cfg.Kind,
		Entity:    entity,
		Scores:    make(map[string]float64, len(e.cfg.Weights)),
		Meters:    make(map[string]float64),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for cat := range e.cfg.Weights {
		b.Scores[cat] = e.cfg.Baseline
	}
	return b
}

// score derives the weighted total. Never stored; always recomputed.
func (e *Engine) score(b *scorestore.Breakdown) int {
	sum := 0.0
	for cat, w := range e.cfg.Weights {
		sum += w * b.Scores[cat]
	}
	return int(math.Round(sum))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// View is a read-only snapshot of one entity's state, for dashboards, bot
// commands, and tests.
type View struct {
	*scorestore.Breakdown
	Score     int    `json:"score"`
	Level     Level  `json:"level"`
	Nerfs24h  int    `json:"nerfs24h,omitempty"`
	RiskLevel string `json:"riskLevel,omitempty"`
}

// GetBreakdown returns the entity's full breakdown. Unknown entities get a
// freshly-initialized neutral breakdown (not persisted); lazy creation means
// "never observed" is not an error.
func (e *Engine) GetBreakdown(ctx context.Context, entity string) (*View, error) {
	b, err := e.store.Get(ctx, e.cfg.Kind, entity)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = e.newBreakdown(entity)
	}
	v := &View{
		Breakdown: b,
		Score:     e.score(b),
	}
	v.Level = TrustLevel(v.Score)
	if e.cfg.Kind == scorestore.KindCasino {
		nerfs, err := e.counters.GetCount(ctx, counterCasinoNerf, entity, countstore.PeriodDay)
		if err != nil {
			e.logger.Warn("reading nerf counter", "entity", entity, "err", err)
		}
		v.Nerfs24h = nerfs
		v.RiskLevel = casinoRiskLevel(nerfs, v.Score)
	}
	return v, nil
}

// Entities lists every entity this engine has live state for.
func (e *Engine) Entities(ctx context.Context) ([]string, error) {
	return e.store.List(ctx, e.cfg.Kind)
}

// ClearState wipes this engine's entity state. Test isolation only.
func (e *Engine) ClearState(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Clear(ctx, e.cfg.Kind)
}
