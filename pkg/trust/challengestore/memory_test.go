package challengestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/praxis/pkg/errx"
	"github.com/Abraxas-365/praxis/pkg/trust"
	"github.com/Abraxas-365/praxis/pkg/trust/challengestore"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestPutReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()

	first := trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base, Attempts: 2}
	if err := store.Put(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := trust.Challenge{Identity: "+14155550100", Code: "222222", IssuedAt: base.Add(time.Minute)}
	if err := store.Put(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "+14155550100")
	if err != nil {
		t.Fatal(err)
	}
	if got.Code != "222222" || got.Attempts != 0 {
		t.Fatalf("put did not fully replace the entry: %+v", got)
	}
}

func TestGetUnknownIdentity(t *testing.T) {
	store := challengestore.NewMemoryStore()
	_, err := store.Get(context.Background(), "+14155550100")
	if !errx.IsCode(err, trust.CodeChallengeNotFound) {
		t.Fatalf("expected CHALLENGE_NOT_FOUND, got %v", err)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()
	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})

	got, _ := store.Get(ctx, "+14155550100")
	got.Attempts = 99

	again, _ := store.Get(ctx, "+14155550100")
	if again.Attempts != 0 {
		t.Fatal("Get must return a copy, not the stored entry")
	}
}

func TestMutatePersistsAndRemoves(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()
	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})

	err := store.Mutate(ctx, "+14155550100", func(ch *trust.Challenge) (bool, error) {
		ch.Attempts++
		return false, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, "+14155550100")
	if got.Attempts != 1 {
		t.Fatalf("expected persisted increment, got %d", got.Attempts)
	}

	err = store.Mutate(ctx, "+14155550100", func(ch *trust.Challenge) (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "+14155550100"); err == nil {
		t.Fatal("entry should be gone after removing mutate")
	}
}

func TestMutateErrorStillPersists(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()
	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})

	wantErr := trust.ErrCodeMismatch()
	err := store.Mutate(ctx, "+14155550100", func(ch *trust.Challenge) (bool, error) {
		ch.Attempts++
		return false, wantErr
	})
	if !errx.IsCode(err, trust.CodeCodeMismatch) {
		t.Fatalf("expected the mutate error back, got %v", err)
	}

	got, _ := store.Get(ctx, "+14155550100")
	if got.Attempts != 1 {
		t.Fatal("a failed attempt must still be recorded")
	}
}

func TestConcurrentMutatesSerialize(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()
	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})

	const workers = 64
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Mutate(ctx, "+14155550100", func(ch *trust.Challenge) (bool, error) {
				ch.Attempts++
				return false, nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "+14155550100")
	if got.Attempts != workers {
		t.Fatalf("lost updates: expected %d attempts, got %d", workers, got.Attempts)
	}
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	store := challengestore.NewMemoryStore()

	store.Put(ctx, trust.Challenge{Identity: "+14155550100", Code: "111111", IssuedAt: base})
	store.Put(ctx, trust.Challenge{Identity: "+14155550101", Code: "222222", IssuedAt: base.Add(20 * time.Minute)})

	reaped, err := store.SweepExpired(ctx, base.Add(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if reaped != 1 {
		t.Fatalf("expected 1 reaped entry, got %d", reaped)
	}

	if _, err := store.Get(ctx, "+14155550100"); err == nil {
		t.Fatal("stale entry survived the sweep")
	}
	if _, err := store.Get(ctx, "+14155550101"); err != nil {
		t.Fatal("fresh entry was reaped")
	}
}
