package proposal

import "sync"

// PendingKey identifies one in-flight mutating operation. Proposal-scoped
// operations use the proposal id; global operations (create, treasury fund)
// use id 0.
type PendingKey struct {
	ID   uint64
	Kind OperationKind
}

// PendingSet is the cooperative in-memory lock that gates duplicate
// submissions while a write call is in flight. It is advisory only: the
// remote contract stays the final arbiter of conflicting writes.
type PendingSet struct {
	mu  sync.Mutex
	ops map[PendingKey]struct{}
}

// NewPendingSet creates an empty set.
func NewPendingSet() *PendingSet {
	return &PendingSet{ops: make(map[PendingKey]struct{})}
}

// TryAcquire marks the key as in flight. It returns false when the key is
// already held.
func (p *PendingSet) TryAcquire(key PendingKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, held := p.ops[key]; held {
		return false
	}
	p.ops[key] = struct{}{}
	return true
}

// Release clears the key. Safe to call for keys that are not held.
func (p *PendingSet) Release(key PendingKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ops, key)
}

// Held reports whether the key is currently in flight.
func (p *PendingSet) Held(key PendingKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, held := p.ops[key]
	return held
}
