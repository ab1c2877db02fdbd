// Package session holds the per-mount state shared between the UI inputs
// and the status poller.
package session

import (
	"sync"

	"dex-bridge/pkg/types"
)

// Snapshot is a read-only copy of the session fields
type Snapshot struct {
	TokenPair         types.TokenPair
	WalletAddress     types.WalletAddress
	TransactionStatus types.TransactionStatus
}

// State is the mutable session aggregate. Setters are the only mutation
// path; fields are independent and never validated against each other.
//
// Subscribers are notified after every mutation with the resulting
// snapshot, in mutation order. They run synchronously on the mutating
// goroutine and must not block or call back into the State.
type State struct {
	notifyMu sync.Mutex // serializes mutate+notify so observers see mutation order

	mu     sync.RWMutex
	snap   Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

// New creates an empty session
func New() *State {
	return &State{
		subs: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current field values
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetTokenPair replaces the token pair and notifies subscribers
func (s *State) SetTokenPair(v types.TokenPair) {
	s.update(func(snap *Snapshot) { snap.TokenPair = v })
}

// SetWalletAddress replaces the wallet address and notifies subscribers
func (s *State) SetWalletAddress(v types.WalletAddress) {
	s.update(func(snap *Snapshot) { snap.WalletAddress = v })
}

// SetTransactionStatus replaces the transaction status and notifies subscribers
func (s *State) SetTransactionStatus(v types.TransactionStatus) {
	s.update(func(snap *Snapshot) { snap.TransactionStatus = v })
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) update(mutate func(*Snapshot)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	mutate(&s.snap)
	snap := s.snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
