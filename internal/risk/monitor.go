package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

// Source supplies the full transaction history.
type Source interface {
	All(ctx context.Context) ([]*transaction.Transaction, error)
}

// Observer is notified of every recomputation.
type Observer interface {
	ObserveAggregation(d time.Duration, err error)
}

// Snapshot is the latest derived state. AllTime never has a filter applied,
// it is the profile a certificate is issued from.
type Snapshot struct {
	Filter    *Month
	Profile   Profile
	AllTime   Profile
	Months    []Month
	UpdatedAt time.Time
}

// Monitor keeps a Snapshot current by recomputing it whenever the history or
// the period filter changes. There is no incremental update.
type Monitor struct {
	agg      *Aggregator
	src      Source
	observer Observer

	refreshMu sync.Mutex

	mu     sync.RWMutex
	filter *Month
	snap   Snapshot
}

func NewMonitor(agg *Aggregator, src Source, observer Observer) *Monitor {
	return &Monitor{
		agg:      agg,
		src:      src,
		observer: observer,
		snap: Snapshot{
			Profile: emptyProfile(PeriodAllTime),
			AllTime: emptyProfile(PeriodAllTime),
		},
	}
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snap
}

// Latest returns the current Snapshot, computing it first when no refresh has
// completed yet.
func (m *Monitor) Latest(ctx context.Context) (Snapshot, error) {
	if snap := m.Snapshot(); !snap.UpdatedAt.IsZero() {
		return snap, nil
	}

	if err := m.Refresh(ctx); err != nil {
		return Snapshot{}, err
	}

	return m.Snapshot(), nil
}

// SetFilter changes the period filter and recomputes. A nil filter selects
// the full history.
func (m *Monitor) SetFilter(ctx context.Context, filter *Month) error {
	m.mu.Lock()
	m.filter = filter
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Refresh reloads the history and publishes a new Snapshot. On failure the
// previous Snapshot stays in place.
func (m *Monitor) Refresh(ctx context.Context) (err error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	start := time.Now()

	defer func() {
		if m.observer != nil {
			m.observer.ObserveAggregation(time.Since(start), err)
		}
	}()

	txs, err := m.src.All(ctx)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}

	m.mu.RLock()
	filter := m.filter
	m.mu.RUnlock()

	allTime, err := m.agg.Aggregate(txs, nil)
	if err != nil {
		return fmt.Errorf("aggregating history: %w", err)
	}

	profile := allTime
	if filter != nil {
		if profile, err = m.agg.Aggregate(txs, filter); err != nil {
			return fmt.Errorf("aggregating %s: %w", filter, err)
		}
	}

	m.mu.Lock()
	m.snap = Snapshot{
		Filter:    filter,
		Profile:   profile,
		AllTime:   allTime,
		Months:    m.agg.AvailableMonths(txs),
		UpdatedAt: time.Now(),
	}
	m.mu.Unlock()

	return nil
}

// Run refreshes once, then again after every signal on changes, until ctx is
// done or changes is closed. Refresh failures are logged and do not stop the
// loop.
func (m *Monitor) Run(ctx context.Context, changes <-chan struct{}) {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("failed to compute risk profile", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}

			if err := m.Refresh(ctx); err != nil {
				slog.Error("failed to recompute risk profile", "error", err)
			}
		}
	}
}
