package memory

import (
	"context"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type VisitRepo struct {
	store *Store
}

func NewVisitRepo(store *Store) VisitRepo {
	return VisitRepo{store: store}
}

func (r VisitRepo) Append(_ context.Context, runID string, visits []farm.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.runs[runID]; !ok {
		return ports.ErrNotFound
	}
	for _, v := range visits {
		v.RunID = runID
		r.store.visits[runID] = append(r.store.visits[runID], v)
	}
	return nil
}

// ListByRun returns visits in sweep order, capped at limit when positive.
func (r VisitRepo) ListByRun(_ context.Context, runID string, limit int) ([]farm.Visit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if _, ok := r.store.runs[runID]; !ok {
		return nil, ports.ErrNotFound
	}
	all := r.store.visits[runID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]farm.Visit, limit)
	copy(out, all[:limit])
	return out, nil
}
