package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/replay"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/runs"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/sweep"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type sweepRunner interface {
	Start(ctx context.Context, req runs.StartRequest) (farm.Run, error)
	Cancel(ctx context.Context, runID string) error
	Get(ctx context.Context, runID string) (farm.Run, error)
	List(ctx context.Context, limit int) ([]farm.Run, error)
	SelfTest(ctx context.Context) (runs.SelfTestResponse, error)
}

type snapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Runs       sweepRunner
	ReplayUC   replay.UseCase
	Farm       snapshotProvider
	KPI        snapshotProvider
	CORSOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.CORSOrigin))
	s.OPTIONS("/*path", preflight)

	s.POST("/api/sweeps", h.startSweep)
	s.GET("/api/sweeps", h.listSweeps)

	sweeps := s.Group("/api/sweeps")
	sweeps.GET("/:id", h.getSweep)
	sweeps.POST("/:id/cancel", h.cancelSweep)
	sweeps.GET("/:id/visits", h.sweepVisits)

	s.GET("/api/farm", h.farmSnapshot)
	s.POST("/api/farm/self-test", h.selfTest)
	s.GET("/ops/kpi", h.kpi)
}

type startSweepRequest struct {
	CompanionInterval *int `json:"companion_interval,omitempty"`
	Debug             bool `json:"debug"`
	Passes            *int `json:"passes,omitempty"`
}

type listSweepsResponse struct {
	Runs []farm.Run `json:"runs"`
}

func (h Handler) startSweep(c context.Context, ctx *app.RequestContext) {
	var body startSweepRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if hasJSONField(ctx.Request.Body(), "run_id") {
		writeErrorBody(ctx, consts.StatusBadRequest, "run_id_managed_by_server", "run_id is assigned by server")
		return
	}

	run, err := h.Runs.Start(c, runs.StartRequest{
		CompanionInterval: body.CompanionInterval,
		Debug:             body.Debug,
		Passes:            body.Passes,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, run)
}

func (h Handler) listSweeps(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	list, err := h.Runs.List(c, max(limit, 0))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, listSweepsResponse{Runs: list})
}

func (h Handler) getSweep(c context.Context, ctx *app.RequestContext) {
	runID, ok := requireRunID(ctx)
	if !ok {
		return
	}
	run, err := h.Runs.Get(c, runID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, run)
}

func (h Handler) cancelSweep(c context.Context, ctx *app.RequestContext) {
	runID, ok := requireRunID(ctx)
	if !ok {
		return
	}
	if err := h.Runs.Cancel(c, runID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, map[string]string{"run_id": runID, "status": "cancelling"})
}

func (h Handler) sweepVisits(c context.Context, ctx *app.RequestContext) {
	runID, ok := requireRunID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	visitedFrom, _ := strconv.ParseInt(string(ctx.Query("visited_from")), 10, 64)
	visitedTo, _ := strconv.ParseInt(string(ctx.Query("visited_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		RunID:       runID,
		Limit:       limit,
		VisitedFrom: visitedFrom,
		VisitedTo:   visitedTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) farmSnapshot(_ context.Context, ctx *app.RequestContext) {
	if h.Farm == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "farm snapshot not available")
		return
	}
	ctx.JSON(consts.StatusOK, h.Farm.SnapshotAny())
}

func (h Handler) selfTest(c context.Context, ctx *app.RequestContext) {
	resp, err := h.Runs.SelfTest(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func requireRunID(ctx *app.RequestContext) (string, bool) {
	runID := strings.TrimSpace(ctx.Param("id"))
	if runID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_run_id", "missing run id")
		return "", false
	}
	return runID, true
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func hasJSONField(body []byte, key string) bool {
	if len(body) == 0 {
		return false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return false
	}
	_, ok := m[key]
	return ok
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, runs.ErrRunActive):
		writeErrorBody(ctx, consts.StatusConflict, "sweep_active", err.Error())
	case errors.Is(err, runs.ErrRunNotActive):
		writeErrorBody(ctx, consts.StatusConflict, "sweep_not_active", err.Error())
	case errors.Is(err, runs.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, sweep.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrUnavailable):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
