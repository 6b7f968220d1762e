package products

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source lists product groups.
type Source interface {
	ListGroups(ctx context.Context) ([]Group, error)
}

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	Groups      []Group
	Loading     bool
	Err         error
	RefreshedAt time.Time
}

// Store holds the product groups shared by the product, supplier, delivery
// and sales pages. Concurrent refreshes of the same generation share one
// upstream fetch.
type Store struct {
	source Source
	now    func() time.Time

	mu          sync.RWMutex
	groups      []Group
	inflight    int
	err         error
	refreshedAt time.Time
	// generation is bumped by Invalidate; applied is the generation of the
	// fetch whose result is currently held.
	generation uint64
	applied    uint64

	flight singleflight.Group
}

// NewStore constructs a Store over source.
func NewStore(source Source) *Store {
	return &Store{source: source, now: time.Now}
}

// Snapshot returns the current state without fetching.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]Group, len(s.groups))
	copy(groups, s.groups)
	return Snapshot{Groups: groups, Loading: s.inflight > 0, Err: s.err, RefreshedAt: s.refreshedAt}
}

// Invalidate marks every fetch started so far as stale. The next Refresh
// starts its own fetch rather than joining one of them, and a stale fetch
// that finishes late never replaces the result of a newer one.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// Refresh fetches the groups and replaces the stored list. Callers arriving
// while a fetch of the current generation is in flight wait for that fetch
// instead of starting another. A failed fetch keeps the previous groups and
// records the error.
func (s *Store) Refresh(ctx context.Context) ([]Group, error) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	ch := s.flight.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		s.setLoading()
		groups, err := s.source.ListGroups(context.WithoutCancel(ctx))
		s.finish(gen, groups, err)
		return groups, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		groups, _ := res.Val.([]Group)
		return groups, nil
	}
}

// Products refreshes and returns every product flattened.
func (s *Store) Products(ctx context.Context) ([]Item, error) {
	groups, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(groups), nil
}

func (s *Store) setLoading() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) finish(gen uint64, groups []Group, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if gen < s.applied {
		return
	}
	s.applied = gen
	s.err = err
	if err != nil {
		return
	}
	if groups == nil {
		groups = []Group{}
	}
	s.groups = groups
	s.refreshedAt = s.now()
}
