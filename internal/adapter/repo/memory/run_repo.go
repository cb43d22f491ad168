package memory

import (
	"context"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type SweepRunRepo struct {
	store *Store
}

func NewSweepRunRepo(store *Store) SweepRunRepo {
	return SweepRunRepo{store: store}
}

func (r SweepRunRepo) Create(_ context.Context, run farm.Run) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.runs[run.ID]; exists {
		return ports.ErrConflict
	}
	r.store.runs[run.ID] = cloneRun(run)
	r.store.order = append(r.store.order, run.ID)
	return nil
}

func (r SweepRunRepo) Get(_ context.Context, runID string) (farm.Run, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return farm.Run{}, ports.ErrNotFound
	}
	return cloneRun(run), nil
}

// List returns the newest runs first.
func (r SweepRunRepo) List(_ context.Context, limit int) ([]farm.Run, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]farm.Run, 0, len(r.store.order))
	for i := len(r.store.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, cloneRun(r.store.runs[r.store.order[i]]))
	}
	return out, nil
}

func (r SweepRunRepo) SaveProgress(_ context.Context, runID string, progress ports.RunProgress) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.ErrNotFound
	}
	if run.Status.Terminal() {
		return ports.ErrConflict
	}
	applyProgress(&run, progress)
	r.store.runs[runID] = run
	return nil
}

func (r SweepRunRepo) Finish(_ context.Context, runID string, outcome ports.RunOutcome) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	run, ok := r.store.runs[runID]
	if !ok {
		return ports.ErrNotFound
	}
	if run.Status.Terminal() {
		return ports.ErrConflict
	}
	applyProgress(&run, outcome.Progress)
	run.Status = outcome.Status
	run.Error = outcome.Error
	finishedAt := outcome.FinishedAt
	run.FinishedAt = &finishedAt
	r.store.runs[runID] = run
	return nil
}

func applyProgress(run *farm.Run, progress ports.RunProgress) {
	run.WorldSize = progress.WorldSize
	run.PassesCompleted = progress.PassesCompleted
	run.Visits = progress.Visits
}
