package inmemory

import (
	"sync"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type Snapshot struct {
	VisitTotal      uint64            `json:"visit_total"`
	VisitByAction   map[string]uint64 `json:"visit_by_action"`
	CompanionFaults uint64            `json:"companion_faults"`
	RunTotal        uint64            `json:"run_total"`
	RunByStatus     map[string]uint64 `json:"run_by_status"`
}

type Recorder struct {
	mu       sync.Mutex
	visits   map[farm.VisitAction]uint64
	faults   uint64
	byStatus map[farm.RunStatus]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		visits:   map[farm.VisitAction]uint64{},
		byStatus: map[farm.RunStatus]uint64{},
	}
}

func (r *Recorder) RecordVisit(action farm.VisitAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits[action]++
}

func (r *Recorder) RecordCompanionFault() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults++
}

func (r *Recorder) RecordRunFinished(status farm.RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byStatus[status]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		CompanionFaults: r.faults,
		VisitByAction:   make(map[string]uint64, len(r.visits)),
		RunByStatus:     make(map[string]uint64, len(r.byStatus)),
	}
	for k, v := range r.visits {
		out.VisitByAction[string(k)] = v
		out.VisitTotal += v
	}
	for k, v := range r.byStatus {
		out.RunByStatus[string(k)] = v
		out.RunTotal += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
