package risk_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
)

type fakeSource struct {
	mu  sync.Mutex
	txs []*transaction.Transaction
	err error
}

func (f *fakeSource) All(context.Context) ([]*transaction.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*transaction.Transaction(nil), f.txs...), f.err
}

func (f *fakeSource) set(txs []*transaction.Transaction, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txs, f.err = txs, err
}

type countingObserver struct {
	mu     sync.Mutex
	calls  int
	failed int
}

func (o *countingObserver) ObserveAggregation(_ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if err != nil {
		o.failed++
	}
}

func TestMonitor_RecomputesOnChange(t *testing.T) {
	src := &fakeSource{txs: []*transaction.Transaction{
		income(1, "1000", inMonth(2026, time.January)),
	}}

	obs := &countingObserver{}
	mon := risk.NewMonitor(risk.NewAggregator(time.UTC), src, obs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		mon.Run(ctx, changes)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return mon.Snapshot().Profile.TotalIncome == 1000
	}, time.Second, 5*time.Millisecond)

	src.set([]*transaction.Transaction{
		income(1, "1000", inMonth(2026, time.January)),
		income(2, "1000", inMonth(2026, time.February)),
	}, nil)
	changes <- struct{}{}

	assert.Eventually(t, func() bool {
		snap := mon.Snapshot()
		return snap.Profile.TotalIncome == 2000 && len(snap.Months) == 2
	}, time.Second, 5*time.Millisecond)

	close(changes)
	<-done

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 2, obs.calls)
}

func TestMonitor_SetFilter(t *testing.T) {
	src := &fakeSource{txs: []*transaction.Transaction{
		income(1, "1000", inMonth(2026, time.January)),
		income(2, "3000", inMonth(2026, time.February)),
	}}

	mon := risk.NewMonitor(risk.NewAggregator(time.UTC), src, nil)

	feb := risk.Month{Year: 2026, Month: time.February}
	require.NoError(t, mon.SetFilter(context.Background(), &feb))

	snap := mon.Snapshot()
	assert.Equal(t, &feb, snap.Filter)
	assert.Equal(t, 3000.0, snap.Profile.TotalIncome)
	assert.Equal(t, 4000.0, snap.AllTime.TotalIncome)
	assert.Equal(t, risk.PeriodAllTime, snap.AllTime.Period)

	require.NoError(t, mon.SetFilter(context.Background(), nil))
	assert.Equal(t, 4000.0, mon.Snapshot().Profile.TotalIncome)
}

func TestMonitor_RefreshErrorKeepsSnapshot(t *testing.T) {
	src := &fakeSource{txs: []*transaction.Transaction{
		income(1, "1000", inMonth(2026, time.January)),
	}}

	obs := &countingObserver{}
	mon := risk.NewMonitor(risk.NewAggregator(time.UTC), src, obs)
	require.NoError(t, mon.Refresh(context.Background()))

	src.set(nil, errors.New("store offline"))
	assert.Error(t, mon.Refresh(context.Background()))
	assert.Equal(t, 1000.0, mon.Snapshot().Profile.TotalIncome)

	src.set([]*transaction.Transaction{income(1, "-5", inMonth(2026, time.January))}, nil)
	err := mon.Refresh(context.Background())
	assert.ErrorIs(t, err, transaction.ErrMalformed)
	assert.Equal(t, 1000.0, mon.Snapshot().Profile.TotalIncome)

	assert.Equal(t, 2, obs.failed)
}

func TestMonitor_Latest(t *testing.T) {
	src := &fakeSource{txs: []*transaction.Transaction{
		income(1, "1000", inMonth(2026, time.January)),
	}}

	obs := &countingObserver{}
	mon := risk.NewMonitor(risk.NewAggregator(time.UTC), src, obs)

	assert.True(t, mon.Snapshot().UpdatedAt.IsZero())
	assert.Zero(t, mon.Snapshot().AllTime.TotalIncome)

	snap, err := mon.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.UpdatedAt.IsZero())
	assert.Equal(t, 1000.0, snap.AllTime.TotalIncome)
	assert.Equal(t, risk.PeriodAllTime, snap.AllTime.Period)

	// Once computed, Latest serves the cached snapshot.
	src.set(nil, errors.New("db down"))

	again, err := mon.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, 1, obs.calls)
}

func TestMonitor_LatestRefreshError(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	mon := risk.NewMonitor(risk.NewAggregator(time.UTC), src, nil)

	_, err := mon.Latest(context.Background())
	assert.ErrorContains(t, err, "db down")
}
