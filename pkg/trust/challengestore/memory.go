// Package challengestore provides the in-memory challenge store. Entries are
// partitioned across striped locks so concurrent requests for different
// identities never contend, while read-modify-write sequences for one
// identity are serialized.
package challengestore

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Abraxas-365/praxis/pkg/trust"
)

const stripeCount = 32

type stripe struct {
	mu      sync.Mutex
	entries map[string]trust.Challenge
}

// MemoryStore is the default trust.ChallengeStore backend.
type MemoryStore struct {
	stripes [stripeCount]*stripe
}

// NewMemoryStore creates an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.stripes {
		s.stripes[i] = &stripe{entries: make(map[string]trust.Challenge)}
	}
	return s
}

func (s *MemoryStore) stripeFor(identity string) *stripe {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return s.stripes[h.Sum32()%stripeCount]
}

// Put stores a challenge, replacing any existing entry for the identity.
func (s *MemoryStore) Put(_ context.Context, ch trust.Challenge) error {
	st := s.stripeFor(ch.Identity)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries[ch.Identity] = ch
	return nil
}

// Get returns a snapshot of the entry for an identity.
func (s *MemoryStore) Get(_ context.Context, identity string) (*trust.Challenge, error) {
	st := s.stripeFor(identity)
	st.mu.Lock()
	defer st.mu.Unlock()

	ch, ok := st.entries[identity]
	if !ok {
		return nil, trust.ErrChallengeNotFound()
	}
	return &ch, nil
}

// Mutate runs fn under the identity's stripe lock, so no other goroutine can
// observe or modify the entry mid-sequence.
func (s *MemoryStore) Mutate(_ context.Context, identity string, fn trust.MutateFunc) error {
	st := s.stripeFor(identity)
	st.mu.Lock()
	defer st.mu.Unlock()

	ch, ok := st.entries[identity]
	if !ok {
		return trust.ErrChallengeNotFound()
	}

	remove, err := fn(&ch)
	if remove {
		delete(st.entries, identity)
	} else {
		st.entries[identity] = ch
	}
	return err
}

// Delete removes the entry for an identity, if any.
func (s *MemoryStore) Delete(_ context.Context, identity string) error {
	st := s.stripeFor(identity)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, identity)
	return nil
}

// SweepExpired removes entries issued before the cutoff.
func (s *MemoryStore) SweepExpired(_ context.Context, cutoff time.Time) (int, error) {
	reaped := 0
	for _, st := range s.stripes {
		st.mu.Lock()
		for identity, ch := range st.entries {
			if ch.IssuedAt.Before(cutoff) {
				delete(st.entries, identity)
				reaped++
			}
		}
		st.mu.Unlock()
	}
	return reaped, nil
}
