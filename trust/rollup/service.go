// Package rollup compresses the high-frequency trust.*.updated stream into
// hourly per-entity windows, persists flushed windows as day-chunked JSON
// snapshots, and raises deduplicated risk alerts when an entity's deltas
// diverge sharply from its own recent baseline.
package rollup

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/router"
)

const (
	sourceID         = "rollup-service"
	recoverySourceID = "rollup-recovery"

	// recent delta series kept per entity for dashboard sparklines; the LRU
	// bounds total memory when the entity population grows unbounded
	sparklineLength   = 20
	sparklineEntities = 1024
)

// DefaultInterval is the production flush cadence.
const DefaultInterval = time.Hour

type Config struct {
	// Interval between automatic flushes; DefaultInterval when zero. Tests
	// call Flush directly instead of waiting.
	Interval time.Duration
}

// Service owns the window buckets, baselines, alerts, and sparklines. All
// state is private to the service; readers get copies.
type Service struct {
	logger    *slog.Logger
	router    *router.Router
	snapshots *SnapshotStore
	alerts    *AlertStore
	interval  time.Duration

	mu          sync.Mutex
	buckets     map[event.Category]map[string]*event.WindowBucket
	baselines   map[string]*BaselineStat
	windowStart time.Time

	sparklines *lru.Cache[string, []float64]
}

func NewService(logger *slog.Logger, r *router.Router, snapshots *SnapshotStore, cfg Config) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sparks, err := lru.New[string, []float64](sparklineEntities)
	if err != nil {
		return nil, err
	}
	s := &Service{
		logger:    logger.With("component", sourceID),
		router:    r,
		snapshots: snapshots,
		alerts:    NewAlertStore(),
		interval:  interval,
		buckets: map[event.Category]map[string]*event.WindowBucket{
			event.CategoryDomain: {},
			event.CategoryCasino: {},
		},
		baselines:   make(map[string]*BaselineStat),
		windowStart: time.Now(),
		sparklines:  sparks,
	}
	if _, err := r.Subscribe(event.TypeDomainUpdated, sourceID, s.updatedHandler(event.CategoryDomain)); err != nil {
		return nil, err
	}
	if _, err := r.Subscribe(event.TypeCasinoUpdated, sourceID, s.updatedHandler(event.CategoryCasino)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) updatedHandler(cat event.Category) router.Handler {
	return func(ctx context.Context, evt event.Event) error {
		p, ok := evt.Data.(event.ScoreUpdated)
		if !ok || p.Entity == "" {
			return nil
		}
		s.accumulate(cat, p)
		return nil
	}
}

func (s *Service) accumulate(cat event.Category, p event.ScoreUpdated) {
	s.mu.Lock()
	b, ok := s.buckets[cat][p.Entity]
	if !ok {
		b = &event.WindowBucket{}
		s.buckets[cat][p.Entity] = b
	}
	b.TotalDelta += p.Delta
	b.Events++
	b.LastSeverity = p.Severity
	b.LastScore = float64(p.NewScore)
	totalDelta := b.TotalDelta

	s.recordSparkline(p.Entity, p.Delta)

	// baselines track delta magnitudes per entity across categories
	bs, ok := s.baselines[p.Entity]
	if !ok {
		bs = newBaselineStat()
		s.baselines[p.Entity] = bs
	}
	baseline, anomalous := bs.Observe(math.Abs(p.Delta))
	s.mu.Unlock()

	eventsAggregated.WithLabelValues(string(cat)).Inc()

	if anomalous && p.Severity >= anomalySeverityFloor {
		kind := string(cat) + "-anomaly"
		if s.alerts.Add(kind, p.Entity, totalDelta, p.Severity) {
			alertsRaised.WithLabelValues(kind).Inc()
			s.logger.Warn("risk alert raised",
				"kind", kind, "entity", p.Entity, "delta", p.Delta,
				"baseline", baseline, "severity", p.Severity)
		}
	}
}

func (s *Service) recordSparkline(entity string, delta float64) {
	series, _ := s.sparklines.Get(entity)
	series = append(series, delta)
	if len(series) > sparklineLength {
		series = series[len(series)-sparklineLength:]
	}
	s.sparklines.Add(entity, series)
}

// Flush publishes one RollupBatch per non-empty category, persists the
// batches to the day snapshot, resets all buckets, and re-arms frozen
// baselines. Safe to call manually; the returned batches are what was
// published. A snapshot write failure is logged and swallowed: only that
// cycle's durability degrades, the published batches are already out.
func (s *Service) Flush(ctx context.Context) []event.RollupBatch {
	s.mu.Lock()
	now := time.Now()
	var batches []event.RollupBatch
	for _, cat := range []event.Category{event.CategoryDomain, event.CategoryCasino} {
		m := s.buckets[cat]
		if len(m) == 0 {
			continue
		}
		entries := make(map[string]event.WindowBucket, len(m))
		for entity, b := range m {
			entries[entity] = *b
		}
		batches = append(batches, event.RollupBatch{
			Category:    cat,
			WindowStart: s.windowStart.UnixMilli(),
			WindowEnd:   now.UnixMilli(),
			Entries:     entries,
		})
		s.buckets[cat] = make(map[string]*event.WindowBucket)
	}
	s.windowStart = now
	for _, bs := range s.baselines {
		bs.Unfreeze()
	}
	s.mu.Unlock()

	for _, batch := range batches {
		s.router.Publish(ctx, event.RollupType(batch.Category), sourceID, batch, "")
		flushedBatches.WithLabelValues(string(batch.Category)).Inc()
	}
	if len(batches) > 0 && s.snapshots != nil {
		if err := s.snapshots.Append(batches...); err != nil {
			snapshotErrors.Inc()
			s.logger.Error("persisting rollup snapshot", "err", err)
		}
	}
	return batches
}

// WarmStart republishes the most recent persisted batch per category so the
// scoring engines can re-seed entities they have no live state for. Rollups
// are the unit of recovery; raw events are never replayed.
func (s *Service) WarmStart(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	batches, err := s.snapshots.LoadRecent()
	if err != nil {
		return err
	}
	latest := make(map[event.Category]event.RollupBatch)
	for _, b := range batches {
		latest[b.Category] = b
	}
	for _, cat := range []event.Category{event.CategoryDomain, event.CategoryCasino} {
		b, ok := latest[cat]
		if !ok {
			continue
		}
		s.router.Publish(ctx, event.RollupType(cat), recoverySourceID, b, "")
		s.logger.Info("warm-started from rollup snapshot",
			"category", cat, "entities", len(b.Entries), "windowEnd", b.WindowEnd)
	}
	return nil
}

// Run flushes on a wall-clock ticker until ctx is cancelled, then performs a
// final flush so a clean shutdown loses at most nothing.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Flush(ctx)
		case <-ctx.Done():
			s.Flush(context.Background())
			return nil
		}
	}
}

// Alerts returns a snapshot of stored risk alerts.
func (s *Service) Alerts() []RiskAlert {
	return s.alerts.List()
}

// AddRiskAlert inserts an alert through the dedup gate; exposed for
// collaborators outside the anomaly path (e.g. manual flags from bots).
func (s *Service) AddRiskAlert(kind, entity string, totalDelta float64, severity int) bool {
	return s.alerts.Add(kind, entity, totalDelta, severity)
}

// Sparkline returns a copy of the entity's recent delta series, oldest first.
func (s *Service) Sparkline(entity string) []float64 {
	series, ok := s.sparklines.Get(entity)
	if !ok {
		return nil
	}
	return append([]float64{}, series...)
}

// PruneSnapshots removes day files older than keepDays. Deployment hook, not
// called on the hot path.
func (s *Service) PruneSnapshots(keepDays int) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}
	return s.snapshots.PruneOld(keepDays, time.Now())
}
