package similarity

import (
	"cmp"
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mfenderov/songsim/internal/events"
	"github.com/mfenderov/songsim/internal/metrics"
	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/pkg/models"
)

const taskLabel = "Finding song similarities"

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers limits how many outer documents are compared in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithScorer replaces the document scorer (Score by default).
func WithScorer(s Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithProgress sets where pass progress is reported.
func WithProgress(m progress.Manager) Option {
	return func(e *Engine) {
		if m != nil {
			e.progress = m
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger (slog.Default() by default).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// PairScore is a scored pair of documents.
type PairScore struct {
	A, B  *models.Document
	Score float64
}

// cycle collects statistics from Start until the engine settles.
type cycle struct {
	started  time.Time
	passes   int
	computed int
	skipped  int
}

// Engine compares every pair of documents in its working set.
//
// Scores are cached for the lifetime of the engine and never recomputed.
// Documents added while a pass is running are picked up by an automatic
// follow-up pass once the current one finishes.
type Engine struct {
	logger   *slog.Logger
	workers  int
	scorer   Scorer
	progress progress.Manager
	metrics  *metrics.Metrics
	cache    *Cache

	mu      sync.Mutex
	docs    map[string]*models.Document
	order   []*models.Document
	running bool
	changed bool
	task    progress.Reporter // nil while idle
	cycle   *cycle            // nil while idle
	idle    chan struct{}     // closed when the engine settles
	hooks   []func(events.PassComplete)
}

// New creates an idle engine with an empty working set.
func New(opts ...Option) *Engine {
	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		logger:   slog.Default(),
		workers:  runtime.GOMAXPROCS(0),
		scorer:   Score,
		progress: progress.Nop{},
		cache:    NewCache(),
		docs:     make(map[string]*models.Document),
		idle:     idle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnPassComplete registers a hook called each time the engine settles.
// Hooks run on the engine's goroutine before waiters are released, so they
// must not call Wait.
func (e *Engine) OnPassComplete(hook func(events.PassComplete)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// AddDocuments merges docs into the working set, skipping documents that are
// already present, and returns how many were new. A running pass is not
// affected; it is followed by another pass that includes the new documents.
func (e *Engine) AddDocuments(docs ...*models.Document) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if _, ok := e.docs[doc.ID()]; ok {
			continue
		}
		e.docs[doc.ID()] = doc
		e.order = append(e.order, doc)
		added++
	}

	if added > 0 && e.running {
		e.changed = true
	}
	if e.metrics != nil {
		e.metrics.DocumentsTotal.Set(float64(len(e.order)))
	}
	e.logger.Debug("documents added", "added", added, "total", len(e.order), "running", e.running)
	return added
}

// Start launches a comparison pass in the background and returns at once.
// Calling Start while a pass is running does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

func (e *Engine) startLocked() {
	if e.running {
		return
	}

	snapshot := slices.Clone(e.order)
	e.running = true
	e.changed = false

	if e.task == nil {
		e.task = e.progress.NewTask(taskLabel)
		e.cycle = &cycle{started: time.Now()}
		e.idle = make(chan struct{})
	}
	e.cycle.passes++

	if e.metrics != nil {
		e.metrics.EngineRunning.Set(1)
	}
	e.logger.Debug("comparison pass started", "documents", len(snapshot), "pass", e.cycle.passes)

	go e.pass(snapshot, e.task)
}

// pass compares every unordered pair of the snapshot once. The outer index is
// spread over the worker pool; each worker walks the later documents in order.
func (e *Engine) pass(snapshot []*models.Document, task progress.Reporter) {
	start := time.Now()
	task.SetTotal(len(snapshot))

	var computed, skipped atomic.Int64
	p := pool.New().WithMaxGoroutines(e.workers)
	for i := range snapshot {
		p.Go(func() {
			a := snapshot[i]
			for _, b := range snapshot[i+1:] {
				key := NewPairKey(a.ID(), b.ID())
				if e.cache.Has(key) {
					skipped.Add(1)
					continue
				}
				e.cache.Store(key, e.scorer(a, b))
				computed.Add(1)
			}
			task.Advance(1)
		})
	}
	// A panicking scorer is re-raised here instead of dropping the pair.
	p.Wait()

	e.finish(int(computed.Load()), int(skipped.Load()), time.Since(start), len(snapshot))
}

func (e *Engine) finish(computed, skipped int, elapsed time.Duration, size int) {
	e.mu.Lock()

	e.running = false
	e.cycle.computed += computed
	e.cycle.skipped += skipped
	if e.metrics != nil {
		e.metrics.PassesTotal.Inc()
		e.metrics.PairsComputedTotal.Add(float64(computed))
		e.metrics.PairsSkippedTotal.Add(float64(skipped))
		e.metrics.PassDuration.Observe(elapsed.Seconds())
		e.metrics.CachedPairsTotal.Set(float64(e.cache.Len()))
		e.metrics.EngineRunning.Set(0)
	}
	e.logger.Debug("comparison pass finished",
		"documents", size,
		"computed", computed,
		"skipped", skipped,
		"duration", elapsed,
		"restart", e.changed)

	if e.changed {
		if e.metrics != nil {
			e.metrics.RestartsTotal.Inc()
		}
		e.startLocked()
		e.mu.Unlock()
		return
	}

	task, c, idle := e.task, e.cycle, e.idle
	hooks := slices.Clone(e.hooks)
	e.task, e.cycle = nil, nil
	e.mu.Unlock()

	task.Complete()
	event := events.PassComplete{
		Passes:        c.passes,
		Documents:     size,
		PairsComputed: c.computed,
		PairsSkipped:  c.skipped,
		Duration:      time.Since(c.started),
	}
	e.logger.Info("similarities complete",
		"documents", event.Documents,
		"passes", event.Passes,
		"computed", event.PairsComputed,
		"duration", event.Duration)
	for _, hook := range hooks {
		hook(event)
	}
	close(idle)
}

// Wait blocks until the engine is idle or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a pass is in flight.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Score returns the cached score of two documents in either order.
// ok is false if the pair has not been compared yet.
func (e *Engine) Score(aID, bID string) (score float64, ok bool) {
	if aID == bID {
		return 0, false
	}
	return e.cache.Get(aID, bID)
}

// ScoredPairs returns the number of cached scores.
func (e *Engine) ScoredPairs() int {
	return e.cache.Len()
}

// Documents returns the working set in insertion order.
func (e *Engine) Documents() []*models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.order)
}

// Document looks up a document by ID.
func (e *Engine) Document(id string) (*models.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, ok := e.docs[id]
	return doc, ok
}

// Scores returns every cached score, ordered by the source ids of the pair.
func (e *Engine) Scores() []PairScore {
	all := e.cache.All()

	e.mu.Lock()
	out := make([]PairScore, 0, len(all))
	for key, score := range all {
		a, b := e.docs[key.A], e.docs[key.B]
		if a == nil || b == nil {
			continue
		}
		if b.SourceID() < a.SourceID() {
			a, b = b, a
		}
		out = append(out, PairScore{A: a, B: b, Score: score})
	}
	e.mu.Unlock()

	slices.SortFunc(out, func(x, y PairScore) int {
		return cmp.Or(
			cmp.Compare(x.A.SourceID(), y.A.SourceID()),
			cmp.Compare(x.B.SourceID(), y.B.SourceID()),
			cmp.Compare(x.A.ID(), y.A.ID()),
			cmp.Compare(x.B.ID(), y.B.ID()),
		)
	})
	return out
}
