package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
	"github.com/iliyamo/exhibition-stall-reservation/internal/token"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLedger(t *testing.T) (*ledger.Ledger, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	reg, err := registry.New([]model.Stall{
		{ID: 1, Name: "A-1", Size: model.SizeSmall},
	})
	require.NoError(t, err)
	issuer, err := token.NewIssuer("test-secret", clock.Now)
	require.NoError(t, err)
	l := ledger.New(reg, ledger.NewMemoryStore(), issuer, ledger.Config{Now: clock.Now})
	return l, clock
}

func TestNewDefaults(t *testing.T) {
	l, _ := newTestLedger(t)
	s := New(l, 0, nil)
	assert.Equal(t, DefaultInterval, s.interval)
	assert.NotNil(t, s.now)
}

func TestNewPanicsOnNilLedger(t *testing.T) {
	assert.Panics(t, func() { New(nil, time.Second, nil) })
}

// Run must expire an overdue hold without waiting for a full tick and
// stop promptly when the context is cancelled.
func TestRunExpiresOverdueHolds(t *testing.T) {
	l, clock := newTestLedger(t)
	held, err := l.RequestHold(context.Background(), 1, "vendor-a", "")
	require.NoError(t, err)
	clock.Advance(ledger.DefaultHoldTTL + time.Second)

	s := New(l, 50*time.Millisecond, clock.Now)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// the start-up sweep retires the hold; poll briefly for it
	assert.Eventually(t, func() bool {
		reservations := l.ReservationsFor("vendor-a")
		return len(reservations) == 1 && reservations[0].Status == model.StatusExpired
	}, time.Second, 5*time.Millisecond)

	_, err = l.Confirm(context.Background(), held.ID, "vendor-a")
	assert.ErrorIs(t, err, ledger.ErrAlreadyTerminal)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
