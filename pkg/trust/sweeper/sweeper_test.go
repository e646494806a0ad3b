package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/trust"
	"github.com/Abraxas-365/praxis/pkg/trust/challengestore"
	"github.com/Abraxas-365/praxis/pkg/trust/sweeper"
)

func TestSweepOnceReapsOnlyStaleEntries(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := clockx.NewMock(base)
	store := challengestore.NewMemoryStore()

	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})
	store.Put(ctx, trust.Challenge{Identity: "+14155550101", Code: "222222", IssuedAt: base.Add(8 * time.Minute)})

	clock.Advance(11 * time.Minute)

	s := sweeper.New(store, clock, 5*time.Minute, 10*time.Minute)
	s.SweepOnce(ctx)

	if _, err := store.Get(ctx, "+14155550100"); err == nil {
		t.Fatal("stale challenge survived the sweep")
	}
	if _, err := store.Get(ctx, "+14155550101"); err != nil {
		t.Fatal("fresh challenge was reaped")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	store := challengestore.NewMemoryStore()
	clock := clockx.NewMock(time.Now())
	s := sweeper.New(store, clock, time.Millisecond, 10*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
