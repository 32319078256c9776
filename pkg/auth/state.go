package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// StateStore keeps OAuth state values until the callback consumes them.
type StateStore struct {
	cache *expirable.LRU[string, string]
}

func NewStateStore(size int, ttl time.Duration) *StateStore {
	if size <= 0 {
		size = 1024
	}
	return &StateStore{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Issue returns a fresh state bound to value.
func (s *StateStore) Issue(value string) string {
	state := uuid.NewString()
	s.cache.Add(state, value)
	return state
}

// Take returns the bound value and forgets the state.
func (s *StateStore) Take(state string) (string, bool) {
	v, ok := s.cache.Get(state)
	if ok {
		s.cache.Remove(state)
	}
	return v, ok
}
