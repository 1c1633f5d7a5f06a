// internal/lead/store.go
package lead

import (
	"sync"

	"blueprint-leads/internal/common/metrics"
)

// Store is the bounded, volatile, most-recent-first lead collection. It is
// the only owner of the records it holds; callers get copies. Storage is
// intentionally non-durable: a restart loses everything, and the capacity
// bound exists to cap memory growth in a long-lived process, not as a
// retention policy.
type Store struct {
	mu       sync.Mutex
	capacity int
	leads    []*Lead
}

// NewStore creates a store bounded at capacity records.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		leads:    make([]*Lead, 0, capacity),
	}
}

// Add prepends l and evicts the oldest record when the bound is exceeded.
func (s *Store) Add(l *Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = append([]*Lead{l}, s.leads...)
	if len(s.leads) > s.capacity {
		s.leads = s.leads[:s.capacity]
	}
	metrics.StoredLeads.Set(float64(len(s.leads)))
}

// FlagFollowUp marks the most recent record with a matching contact handle.
// Repeated calls are harmless; an unmatched handle reports false and mutates
// nothing, which callers acknowledge as success anyway.
func (s *Store) FlagFollowUp(contactHandle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.leads {
		if l.ContactHandle == contactHandle {
			l.FollowUpRequested = true
			return true
		}
	}
	return false
}

// ListAll marks every stored record as read and returns a most-recent-first
// snapshot. The admin view is the only reader, so a list is also an ack.
func (s *Store) ListAll() []Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Lead, 0, len(s.leads))
	for _, l := range s.leads {
		l.ReadFlag = true
		out = append(out, *l)
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}
