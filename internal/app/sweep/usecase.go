package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"github.com/rs/zerolog"
)

type UseCase struct {
	Host      ports.FarmHost
	Runs      ports.SweepRunRepository
	Visits    ports.VisitRepository
	TxManager ports.TxManager
	Metrics   ports.SweepMetrics
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// RunSweep resets the agent to the origin and sweeps the whole grid in
// serpentine order until req.Passes passes are done, or until ctx is
// cancelled when Passes is nil. A missing or non-positive world size ends the
// run immediately without error.
func (u UseCase) RunSweep(ctx context.Context, req Request) (Response, error) {
	if req.Passes != nil && *req.Passes < 0 {
		return Response{}, ErrInvalidRequest
	}
	if u.Host == nil {
		return Response{}, ErrInvalidRequest
	}

	logger := u.logger().With().Str("run_id", req.RunID).Logger()
	resp := Response{RunID: req.RunID, Status: farm.RunRunning}

	if err := ResetToOrigin(ctx, u.Host); err != nil {
		return u.finish(ctx, resp, fmt.Errorf("reset to origin: %w", err))
	}

	size, err := u.Host.WorldSize(ctx)
	if err != nil || size <= 0 {
		if req.Debug {
			logger.Info().Bool("debug", true).Err(err).Int("size", size).Msg("grid sweep: invalid world size")
		}
		resp.Status = farm.RunSkipped
		return u.finish(ctx, resp, nil)
	}
	resp.WorldSize = size

	policy := Policy{
		Host:      u.Host,
		Metrics:   u.Metrics,
		Logger:    &logger,
		Debug:     req.Debug,
		WorldSize: size,
	}
	for pass := range PassSequence(req.Passes) {
		batch := make([]farm.Visit, 0, size*size)
		for cell := range farm.SerpentineCells(size) {
			if err := ctx.Err(); err != nil {
				return u.finish(ctx, resp, errors.Join(err, u.flush(ctx, req.RunID, batch, resp)))
			}
			if err := MoveTo(ctx, u.Host, cell); err != nil {
				err = fmt.Errorf("move to (%d,%d): %w", cell.X, cell.Y, err)
				return u.finish(ctx, resp, errors.Join(err, u.flush(ctx, req.RunID, batch, resp)))
			}
			visit, err := policy.VisitCell(ctx, cell.X, cell.Y, req.CompanionInterval)
			if err != nil {
				return u.finish(ctx, resp, errors.Join(err, u.flush(ctx, req.RunID, batch, resp)))
			}
			visit.RunID = req.RunID
			visit.Pass = pass
			visit.Seq = resp.Visits
			visit.VisitedAt = u.now()
			batch = append(batch, visit)
			resp.Visits++
			if u.Metrics != nil {
				u.Metrics.RecordVisit(visit.Action)
			}
		}
		resp.PassesCompleted++
		if err := u.flush(ctx, req.RunID, batch, resp); err != nil {
			return u.finish(ctx, resp, err)
		}
		logger.Info().Int("pass", pass).Int("visits", resp.Visits).Msg("pass completed")
	}

	if req.Debug {
		logger.Info().Bool("debug", true).Int("passes", resp.PassesCompleted).Msg("grid sweep: completed passes")
	}
	resp.Status = farm.RunCompleted
	return u.finish(ctx, resp, nil)
}

// flush journals one batch of visits together with the run's progress. It
// keeps working after ctx is cancelled so a halted run still records what it did.
func (u UseCase) flush(ctx context.Context, runID string, batch []farm.Visit, resp Response) error {
	if runID == "" || u.Runs == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	write := func(txCtx context.Context) error {
		if u.Visits != nil && len(batch) > 0 {
			if err := u.Visits.Append(txCtx, runID, batch); err != nil {
				return fmt.Errorf("append visits: %w", err)
			}
		}
		return u.Runs.SaveProgress(txCtx, runID, progressOf(resp))
	}
	if u.TxManager == nil {
		return write(ctx)
	}
	return u.TxManager.RunInTx(ctx, write)
}

func (u UseCase) finish(ctx context.Context, resp Response, cause error) (Response, error) {
	if cause != nil {
		resp.Status = farm.RunFailed
		if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
			resp.Status = farm.RunCancelled
		}
	}
	logger := u.logger()
	if u.Runs != nil && resp.RunID != "" {
		outcome := ports.RunOutcome{
			Status:     resp.Status,
			Progress:   progressOf(resp),
			FinishedAt: u.now(),
		}
		if cause != nil {
			outcome.Error = cause.Error()
		}
		if err := u.Runs.Finish(context.WithoutCancel(ctx), resp.RunID, outcome); err != nil {
			logger.Error().Err(err).Str("run_id", resp.RunID).Msg("record run outcome")
			cause = errors.Join(cause, err)
		}
	}
	if u.Metrics != nil {
		u.Metrics.RecordRunFinished(resp.Status)
	}
	logger.Info().
		Str("run_id", resp.RunID).
		Str("status", string(resp.Status)).
		Int("passes", resp.PassesCompleted).
		Int("visits", resp.Visits).
		Msg("sweep finished")
	return resp, cause
}

func progressOf(resp Response) ports.RunProgress {
	return ports.RunProgress{
		WorldSize:       resp.WorldSize,
		PassesCompleted: resp.PassesCompleted,
		Visits:          resp.Visits,
	}
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) logger() *zerolog.Logger {
	if u.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return u.Logger
}
