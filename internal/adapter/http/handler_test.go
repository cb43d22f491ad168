package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/metrics/inmemory"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/repo/memory"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/world/sim"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/replay"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/runs"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

type fakeRunner struct {
	started   []runs.StartRequest
	startErr  error
	cancelled []string
	cancelErr error
	runs      map[string]farm.Run
	selfTest  runs.SelfTestResponse
}

func (f *fakeRunner) Start(_ context.Context, req runs.StartRequest) (farm.Run, error) {
	if f.startErr != nil {
		return farm.Run{}, f.startErr
	}
	f.started = append(f.started, req)
	return farm.Run{ID: "run-1", Status: farm.RunRunning, Passes: req.Passes}, nil
}

func (f *fakeRunner) Cancel(_ context.Context, runID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, runID)
	return nil
}

func (f *fakeRunner) Get(_ context.Context, runID string) (farm.Run, error) {
	run, ok := f.runs[runID]
	if !ok {
		return farm.Run{}, ports.ErrNotFound
	}
	return run, nil
}

func (f *fakeRunner) List(_ context.Context, _ int) ([]farm.Run, error) {
	out := make([]farm.Run, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRunner) SelfTest(context.Context) (runs.SelfTestResponse, error) {
	return f.selfTest, nil
}

func decodeErrorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body map[string]map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	code, _ := body["error"]["code"].(string)
	return code
}

func TestStartSweep_PassesRequestThrough(t *testing.T) {
	runner := &fakeRunner{}
	h := Handler{Runs: runner}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"companion_interval":3,"debug":true,"passes":2}`))

	h.startSweep(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusAccepted; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	if len(runner.started) != 1 {
		t.Fatalf("expected one start, got %d", len(runner.started))
	}
	req := runner.started[0]
	if req.CompanionInterval == nil || *req.CompanionInterval != 3 || !req.Debug || req.Passes == nil || *req.Passes != 2 {
		t.Fatalf("unexpected start request: %+v", req)
	}
	var run farm.Run
	if err := json.Unmarshal(ctx.Response.Body(), &run); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if run.ID != "run-1" || run.Status != farm.RunRunning {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestStartSweep_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &fakeRunner{}
	h := Handler{Runs: runner}
	ctx := &app.RequestContext{}

	h.startSweep(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusAccepted; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if req := runner.started[0]; req.CompanionInterval != nil || req.Passes != nil {
		t.Fatalf("expected unset fields, got %+v", req)
	}
}

func TestStartSweep_RejectsClientRunID(t *testing.T) {
	runner := &fakeRunner{}
	h := Handler{Runs: runner}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"run_id":"mine"}`))

	h.startSweep(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := decodeErrorCode(t, ctx), "run_id_managed_by_server"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
	if len(runner.started) != 0 {
		t.Fatalf("expected no sweep started")
	}
}

func TestStartSweep_InvalidJSON(t *testing.T) {
	h := Handler{Runs: &fakeRunner{}}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"passes":`))

	h.startSweep(context.Background(), ctx)

	if got, want := decodeErrorCode(t, ctx), "invalid_json"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestStartSweep_ConflictWhileRunning(t *testing.T) {
	h := Handler{Runs: &fakeRunner{startErr: fmt.Errorf("%w: run-0", runs.ErrRunActive)}}
	ctx := &app.RequestContext{}

	h.startSweep(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := decodeErrorCode(t, ctx), "sweep_active"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestGetSweep(t *testing.T) {
	h := Handler{Runs: &fakeRunner{runs: map[string]farm.Run{"run-1": {ID: "run-1", Status: farm.RunCompleted}}}}

	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "run-1"}}
	h.getSweep(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "missing"}}
	h.getSweep(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: " "}}
	h.getSweep(context.Background(), ctx)
	if got, want := decodeErrorCode(t, ctx), "missing_run_id"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestCancelSweep(t *testing.T) {
	runner := &fakeRunner{}
	h := Handler{Runs: runner}
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "run-1"}}

	h.cancelSweep(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusAccepted; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if len(runner.cancelled) != 1 || runner.cancelled[0] != "run-1" {
		t.Fatalf("unexpected cancels: %v", runner.cancelled)
	}

	runner.cancelErr = runs.ErrRunNotActive
	ctx = &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "run-1"}}
	h.cancelSweep(context.Background(), ctx)
	if got, want := decodeErrorCode(t, ctx), "sweep_not_active"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestSweepVisits_ReplaysJournal(t *testing.T) {
	store := memory.NewStore()
	runRepo := memory.NewSweepRunRepo(store)
	visitRepo := memory.NewVisitRepo(store)
	if err := runRepo.Create(context.Background(), farm.Run{ID: "run-1", Status: farm.RunRunning, StartedAt: time.Unix(1, 0)}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := visitRepo.Append(context.Background(), "run-1", []farm.Visit{
		{Seq: 0, Action: farm.VisitDefault, Planted: farm.EntitySunflower},
		{Seq: 1, Cell: farm.Position{X: 1}, Action: farm.VisitDefault, Planted: farm.EntitySunflower, PlantedAt: farm.Position{X: 1}},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := Handler{ReplayUC: replay.UseCase{Runs: runRepo, Visits: visitRepo}}
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "run-1"}}
	ctx.Request.SetRequestURI("/api/sweeps/run-1/visits?limit=1")

	h.sweepVisits(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var resp replay.Response
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Visits) != 1 || len(resp.Plantings) != 1 || resp.Actions[farm.VisitDefault] != 1 {
		t.Fatalf("unexpected replay: %+v", resp)
	}
}

func TestFarmSnapshotAndKPI(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Size = 3
	recorder := inmemory.NewRecorder()
	recorder.RecordVisit(farm.VisitCompanion)
	h := Handler{Farm: sim.NewFarm(cfg), KPI: recorder}

	ctx := &app.RequestContext{}
	h.farmSnapshot(context.Background(), ctx)
	var snap sim.Snapshot
	if err := json.Unmarshal(ctx.Response.Body(), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Size != 3 || len(snap.Tiles) != 9 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	ctx = &app.RequestContext{}
	h.kpi(context.Background(), ctx)
	var kpi inmemory.Snapshot
	if err := json.Unmarshal(ctx.Response.Body(), &kpi); err != nil {
		t.Fatalf("unmarshal kpi: %v", err)
	}
	if kpi.VisitTotal != 1 || kpi.VisitByAction["companion"] != 1 {
		t.Fatalf("unexpected kpi: %+v", kpi)
	}

	ctx = &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestSelfTest(t *testing.T) {
	runner := &fakeRunner{selfTest: runs.SelfTestResponse{Position: farm.Position{X: 0, Y: 3}}}
	h := Handler{Runs: runner}
	ctx := &app.RequestContext{}

	h.selfTest(context.Background(), ctx)

	var resp runs.SelfTestResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Position != (farm.Position{X: 0, Y: 3}) {
		t.Fatalf("unexpected position: %+v", resp.Position)
	}
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{runs.ErrInvalidRequest, consts.StatusBadRequest, "bad_request"},
		{replay.ErrInvalidRequest, consts.StatusBadRequest, "bad_request"},
		{fmt.Errorf("load run: %w", ports.ErrNotFound), consts.StatusNotFound, "not_found"},
		{ports.ErrConflict, consts.StatusConflict, "conflict"},
		{ports.ErrUnavailable, consts.StatusServiceUnavailable, "unavailable"},
		{errors.New("boom"), consts.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		ctx := &app.RequestContext{}
		writeError(ctx, tc.err)
		if got := ctx.Response.StatusCode(); got != tc.status {
			t.Fatalf("%v: status mismatch: got=%d want=%d", tc.err, got, tc.status)
		}
		if got := decodeErrorCode(t, ctx); got != tc.code {
			t.Fatalf("%v: code mismatch: got=%q want=%q", tc.err, got, tc.code)
		}
	}
}
