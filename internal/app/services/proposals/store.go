// Package proposals maintains the local proposal read model and runs the
// create / vote / finalize workflows against the governance contract.
package proposals

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/metrics"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Store owns the canonical proposal list. Consumers read whole snapshots and
// hold no private copies; the list is only ever replaced wholesale by a
// successful Refresh, never patched field by field.
type Store struct {
	gov gateway.Governance
	log *logger.Logger

	mu          sync.RWMutex
	list        []proposal.Proposal
	nextGen     uint64
	appliedGen  uint64
	subscribers map[uint64]chan []proposal.Proposal
	nextSubID   uint64
}

// NewStore creates an empty store reading through the governance gateway.
func NewStore(gov gateway.Governance, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("proposal-store")
	}
	return &Store{
		gov:         gov,
		log:         log,
		subscribers: make(map[uint64]chan []proposal.Proposal),
	}
}

// Refresh rebuilds the list from ledger truth: read proposalCount, then each
// proposal by index 1..count. If any index read fails the previous snapshot
// is retained unchanged; partial results are never exposed. When refreshes
// overlap, the one triggered last wins regardless of completion order.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	count, err := s.gov.ProposalCount(ctx)
	if err != nil {
		return fmt.Errorf("read proposal count: %w", err)
	}

	fresh := make([]proposal.Proposal, 0, count)
	for id := uint64(1); id <= count; id++ {
		p, err := s.gov.ProposalAt(ctx, id)
		if err != nil {
			return fmt.Errorf("read proposal %d: %w", id, err)
		}
		fresh = append(fresh, p)
	}

	// Ascending id is a presentation contract, not a ledger guarantee.
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })

	s.mu.Lock()
	if gen < s.appliedGen {
		// A refresh triggered after this one already landed.
		s.mu.Unlock()
		return nil
	}
	s.appliedGen = gen
	s.list = fresh
	subs := make([]chan []proposal.Proposal, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	metrics.RecordRefresh(time.Since(start))
	s.log.WithField("count", len(fresh)).Debug("proposal list refreshed")
	snapshot := append([]proposal.Proposal(nil), fresh...)
	for _, ch := range subs {
		// Keep only the latest snapshot queued per subscriber.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
	return nil
}

// Snapshot returns a copy of the last-completed proposal list.
func (s *Store) Snapshot() []proposal.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]proposal.Proposal(nil), s.list...)
}

// Get returns the proposal with the given id from the current snapshot.
func (s *Store) Get(id uint64) (proposal.Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.list {
		if p.ID == id {
			return p, true
		}
	}
	return proposal.Proposal{}, false
}

// Len returns the size of the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// Subscribe registers for snapshot notifications. Each subscriber sees at
// least the latest snapshot after every applied refresh; intermediate
// snapshots may be skipped. Cancel with the returned function.
func (s *Store) Subscribe() (<-chan []proposal.Proposal, func()) {
	ch := make(chan []proposal.Proposal, 1)
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
	return ch, cancel
}
