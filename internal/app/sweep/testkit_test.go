package sweep

import (
	"context"
	"fmt"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type plantCall struct {
	At     farm.Position
	Entity farm.Entity
}

type fakeHost struct {
	pos          farm.Position
	size         int
	sizeErr      error
	dry          map[farm.Position]bool
	grass        map[farm.Position]bool
	ripe         map[farm.Position]bool
	companion    *farm.Companion
	companionErr error
	plantErr     func(at farm.Position, entity farm.Entity) error
	onPlant      func(call plantCall)

	moves   []farm.Direction
	plants  []plantCall
	waters  []farm.Position
	tills   []farm.Position
	harvest []farm.Position
	queries int
}

func newFakeHost(size int) *fakeHost {
	return &fakeHost{
		size:  size,
		dry:   map[farm.Position]bool{},
		grass: map[farm.Position]bool{},
		ripe:  map[farm.Position]bool{},
	}
}

func (h *fakeHost) Position(context.Context) (farm.Position, error) {
	return h.pos, nil
}

func (h *fakeHost) WorldSize(context.Context) (int, error) {
	if h.sizeErr != nil {
		return 0, h.sizeErr
	}
	return h.size, nil
}

func (h *fakeHost) WaterLevel(context.Context) (float64, error) {
	if h.dry[h.pos] {
		return 0.02, nil
	}
	return 0.8, nil
}

func (h *fakeHost) GroundType(context.Context) (farm.Ground, error) {
	if h.grass[h.pos] {
		return farm.GroundGrassland, nil
	}
	return farm.GroundSoil, nil
}

func (h *fakeHost) CanHarvest(context.Context) (bool, error) {
	return h.ripe[h.pos], nil
}

func (h *fakeHost) Move(_ context.Context, dir farm.Direction) error {
	dx, dy := dir.Delta()
	h.pos.X += dx
	h.pos.Y += dy
	h.moves = append(h.moves, dir)
	return nil
}

func (h *fakeHost) UseItem(_ context.Context, item farm.Item) error {
	if item != farm.ItemWater {
		return fmt.Errorf("unexpected item %s", item)
	}
	h.waters = append(h.waters, h.pos)
	delete(h.dry, h.pos)
	return nil
}

func (h *fakeHost) Till(context.Context) error {
	h.tills = append(h.tills, h.pos)
	delete(h.grass, h.pos)
	return nil
}

func (h *fakeHost) Harvest(context.Context) error {
	h.harvest = append(h.harvest, h.pos)
	delete(h.ripe, h.pos)
	return nil
}

func (h *fakeHost) Plant(_ context.Context, entity farm.Entity) error {
	call := plantCall{At: h.pos, Entity: entity}
	if h.plantErr != nil {
		if err := h.plantErr(h.pos, entity); err != nil {
			return err
		}
	}
	h.plants = append(h.plants, call)
	if h.onPlant != nil {
		h.onPlant(call)
	}
	return nil
}

func (h *fakeHost) Companion(context.Context) (farm.Companion, bool, error) {
	h.queries++
	if h.companionErr != nil {
		return farm.Companion{}, false, h.companionErr
	}
	if h.companion == nil {
		return farm.Companion{}, false, nil
	}
	return *h.companion, true, nil
}

type stubMetrics struct {
	visits   map[farm.VisitAction]int
	faults   int
	finished []farm.RunStatus
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{visits: map[farm.VisitAction]int{}}
}

func (m *stubMetrics) RecordVisit(action farm.VisitAction) {
	m.visits[action]++
}

func (m *stubMetrics) RecordCompanionFault() {
	m.faults++
}

func (m *stubMetrics) RecordRunFinished(status farm.RunStatus) {
	m.finished = append(m.finished, status)
}

type stubTxManager struct {
	calls int
}

func (t *stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type stubRunRepo struct {
	progress []ports.RunProgress
	outcome  *ports.RunOutcome
}

func (r *stubRunRepo) Create(context.Context, farm.Run) error { return nil }

func (r *stubRunRepo) Get(context.Context, string) (farm.Run, error) {
	return farm.Run{}, ports.ErrNotFound
}

func (r *stubRunRepo) List(context.Context, int) ([]farm.Run, error) { return nil, nil }

func (r *stubRunRepo) SaveProgress(_ context.Context, _ string, progress ports.RunProgress) error {
	r.progress = append(r.progress, progress)
	return nil
}

func (r *stubRunRepo) Finish(_ context.Context, _ string, outcome ports.RunOutcome) error {
	r.outcome = &outcome
	return nil
}

type stubVisitRepo struct {
	visits []farm.Visit
}

func (r *stubVisitRepo) Append(_ context.Context, _ string, visits []farm.Visit) error {
	r.visits = append(r.visits, visits...)
	return nil
}

func (r *stubVisitRepo) ListByRun(context.Context, string, int) ([]farm.Visit, error) {
	return r.visits, nil
}

func intPtr(v int) *int {
	return &v
}
