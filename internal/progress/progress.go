// Package progress defines how long-running work reports its progress.
// Loaders and the similarity engine only talk to these interfaces; how the
// progress is shown is up to the caller.
package progress

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Reporter tracks the progress of one task.
// Implementations must be safe for concurrent use.
type Reporter interface {
	SetTotal(n int)
	Advance(steps int)
	Complete()
}

// Manager creates a Reporter per task.
type Manager interface {
	NewTask(label string) Reporter
}

// Nop discards all progress.
type Nop struct{}

// NewTask returns a Nop reporter.
func (Nop) NewTask(string) Reporter { return Nop{} }

// SetTotal does nothing.
func (Nop) SetTotal(int) {}

// Advance does nothing.
func (Nop) Advance(int) {}

// Complete does nothing.
func (Nop) Complete() {}

// LogManager reports progress through slog, one line every tenth of a task.
type LogManager struct {
	Logger *slog.Logger
}

// NewTask starts logging a task.
func (m LogManager) NewTask(label string) Reporter {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("task started", "task", label)
	return &logTask{logger: logger, label: label}
}

type logTask struct {
	logger *slog.Logger
	label  string

	mu       sync.Mutex
	total    int
	done     int
	lastTick int
}

func (t *logTask) SetTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = n
	t.done = 0
	t.lastTick = 0
}

func (t *logTask) Advance(steps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done += steps
	if t.total <= 0 {
		return
	}
	tick := t.done * 10 / t.total
	if tick > t.lastTick {
		t.lastTick = tick
		t.logger.Info("task progress", "task", t.label, "done", t.done, "total", t.total)
	}
}

func (t *logTask) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger.Info("task complete", "task", t.label, "done", t.done, "total", t.total)
}

// Counter records progress in memory. It is both a Manager and a Reporter;
// every task it creates reports into the same counters.
type Counter struct {
	total     atomic.Int64
	done      atomic.Int64
	tasks     atomic.Int64
	completed atomic.Int64
	resets    atomic.Int64
}

// NewTask counts the task and returns c; all tasks share one set of counts.
func (c *Counter) NewTask(string) Reporter {
	c.tasks.Add(1)
	return c
}

// SetTotal records n and starts counting from zero again.
func (c *Counter) SetTotal(n int) {
	c.resets.Add(1)
	c.total.Store(int64(n))
	c.done.Store(0)
}

// Advance adds steps to the done count.
func (c *Counter) Advance(steps int) {
	c.done.Add(int64(steps))
}

// Complete counts a finished task.
func (c *Counter) Complete() {
	c.completed.Add(1)
}

// Snapshot is a point-in-time copy of a Counter.
type Snapshot struct {
	Total     int
	Done      int
	Tasks     int
	Completed int
	Resets    int
}

// Snapshot returns the current counts.
func (c *Counter) Snapshot() Snapshot {
	return Snapshot{
		Total:     int(c.total.Load()),
		Done:      int(c.done.Load()),
		Tasks:     int(c.tasks.Load()),
		Completed: int(c.completed.Load()),
		Resets:    int(c.resets.Load()),
	}
}

// Fanout forwards every task to all managers.
type Fanout []Manager

// NewTask starts the task on every manager.
func (f Fanout) NewTask(label string) Reporter {
	reporters := make(fanoutTask, len(f))
	for i, m := range f {
		reporters[i] = m.NewTask(label)
	}
	return reporters
}

type fanoutTask []Reporter

func (t fanoutTask) SetTotal(n int) {
	for _, r := range t {
		r.SetTotal(n)
	}
}

func (t fanoutTask) Advance(steps int) {
	for _, r := range t {
		r.Advance(steps)
	}
}

func (t fanoutTask) Complete() {
	for _, r := range t {
		r.Complete()
	}
}
