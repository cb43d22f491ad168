package memory

import (
	"sync"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type Store struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	runs   map[string]farm.Run
	order  []string
	visits map[string][]farm.Visit
}

func NewStore() *Store {
	return &Store{
		runs:   make(map[string]farm.Run),
		visits: make(map[string][]farm.Visit),
	}
}

func cloneRun(r farm.Run) farm.Run {
	if r.Passes != nil {
		p := *r.Passes
		r.Passes = &p
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		r.FinishedAt = &t
	}
	return r
}

type storeSnapshot struct {
	runs      map[string]farm.Run
	order     []string
	visitLens map[string]int
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		runs:      make(map[string]farm.Run, len(s.runs)),
		order:     append([]string(nil), s.order...),
		visitLens: make(map[string]int, len(s.visits)),
	}
	for id, r := range s.runs {
		snap.runs[id] = cloneRun(r)
	}
	for id, v := range s.visits {
		snap.visitLens[id] = len(v)
	}
	return snap
}

// restore drops runs and visits written since snap. Visits are append-only,
// so truncating each run's slice is enough.
func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = snap.runs
	s.order = snap.order
	for id, v := range s.visits {
		n, ok := snap.visitLens[id]
		if !ok {
			delete(s.visits, id)
			continue
		}
		s.visits[id] = v[:n:n]
	}
}
