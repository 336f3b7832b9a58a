package authflowrepo

import (
	"errors"
	"sync"
	"time"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]AuthFlowState
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]AuthFlowState),
	}
}

func (r *InMemoryRepo) Upsert(state string, flow *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flow == nil {
		return errors.New("flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = *flow
	return nil
}

func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flow, exists := r.states[state]
	if !exists {
		return nil, ErrUnknownState
	}
	delete(r.states, state)
	return &flow, nil
}

func (r *InMemoryRepo) DeleteCreatedBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for state, flow := range r.states {
		if flow.CreatedAt.Before(cutoff) {
			delete(r.states, state)
			n++
		}
	}
	return n
}
