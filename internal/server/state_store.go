package server

import (
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

type pendingState struct {
	shop      string
	expiresAt time.Time
}

// stateStore holds in-flight OAuth state nonces. Each nonce is bound to the
// shop that started the flow and is single-use.
type stateStore struct {
	mu     sync.Mutex
	states map[string]pendingState
	now    func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]pendingState), now: time.Now}
}

func (s *stateStore) Put(state, shop string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.states[state] = pendingState{shop: shop, expiresAt: s.now().Add(stateTTL)}
}

// Claim consumes the nonce, returning the shop it was issued for. A second
// claim of the same nonce fails.
func (s *stateStore) Claim(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	pending, ok := s.states[state]
	if !ok {
		return "", false
	}
	delete(s.states, state)
	return pending.shop, true
}

func (s *stateStore) prune() {
	now := s.now()
	for state, pending := range s.states {
		if now.After(pending.expiresAt) {
			delete(s.states, state)
		}
	}
}
