package runs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/sweep"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidRequest = errors.New("invalid run request")
	ErrRunActive      = errors.New("a sweep is already running")
	ErrRunNotActive   = errors.New("run is not active")
)

const selfTestRunID = "self-test"

type activeRun struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Service owns the single agent: at most one sweep drives the host at a time.
type Service struct {
	Sweep  sweep.UseCase
	Runs   ports.SweepRunRepository
	Logger *zerolog.Logger
	Now    func() time.Time
	NewID  func() string

	mu     sync.Mutex
	active *activeRun
}

func NewService(uc sweep.UseCase, runs ports.SweepRunRepository, logger *zerolog.Logger) *Service {
	return &Service{Sweep: uc, Runs: runs, Logger: logger}
}

// Start records a new run and sweeps in the background. The sweep outlives
// ctx; stop it with Cancel.
func (s *Service) Start(ctx context.Context, req StartRequest) (farm.Run, error) {
	interval := sweep.DefaultCompanionInterval
	if req.CompanionInterval != nil {
		interval = *req.CompanionInterval
	}
	if req.Passes != nil && (*req.Passes < 0 || *req.Passes > math.MaxInt32) {
		return farm.Run{}, fmt.Errorf("%w: passes out of range", ErrInvalidRequest)
	}
	if interval < math.MinInt32 || interval > math.MaxInt32 {
		return farm.Run{}, fmt.Errorf("%w: companion interval out of range", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return farm.Run{}, fmt.Errorf("%w: %s", ErrRunActive, s.active.id)
	}

	run := farm.Run{
		ID:                s.newID(),
		Status:            farm.RunRunning,
		CompanionInterval: interval,
		Passes:            req.Passes,
		Debug:             req.Debug,
		StartedAt:         s.now(),
	}
	if err := s.Runs.Create(ctx, run); err != nil {
		return farm.Run{}, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	active := &activeRun{id: run.ID, cancel: cancel, done: make(chan struct{})}
	s.active = active

	go func() {
		defer close(active.done)
		defer cancel()
		resp, err := s.Sweep.RunSweep(runCtx, sweep.Request{
			RunID:             run.ID,
			CompanionInterval: interval,
			Debug:             req.Debug,
			Passes:            req.Passes,
		})
		if err != nil && resp.Status != farm.RunCancelled {
			s.logger().Error().Err(err).Str("run_id", run.ID).Msg("sweep failed")
		}
		s.release(active)
	}()

	return run, nil
}

func (s *Service) Cancel(ctx context.Context, runID string) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active != nil && active.id == runID {
		active.cancel()
		return nil
	}
	if _, err := s.Runs.Get(ctx, runID); err != nil {
		return err
	}
	return ErrRunNotActive
}

// Wait blocks until runID is no longer active and returns its stored record.
func (s *Service) Wait(ctx context.Context, runID string) (farm.Run, error) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active != nil && active.id == runID {
		select {
		case <-active.done:
		case <-ctx.Done():
			return farm.Run{}, ctx.Err()
		}
	}
	return s.Runs.Get(ctx, runID)
}

func (s *Service) Get(ctx context.Context, runID string) (farm.Run, error) {
	return s.Runs.Get(ctx, runID)
}

func (s *Service) List(ctx context.Context, limit int) ([]farm.Run, error) {
	return s.Runs.List(ctx, limit)
}

// SelfTest sweeps once with companion interval 4 and debug tracing, without
// journaling, and reports where the agent ended up.
func (s *Service) SelfTest(ctx context.Context) (SelfTestResponse, error) {
	s.mu.Lock()
	if s.active != nil {
		id := s.active.id
		s.mu.Unlock()
		return SelfTestResponse{}, fmt.Errorf("%w: %s", ErrRunActive, id)
	}
	ctx, cancel := context.WithCancel(ctx)
	active := &activeRun{id: selfTestRunID, cancel: cancel, done: make(chan struct{})}
	s.active = active
	s.mu.Unlock()
	defer func() {
		cancel()
		close(active.done)
		s.release(active)
	}()

	passes := 1
	resp, err := s.Sweep.RunSweep(ctx, sweep.Request{CompanionInterval: 4, Debug: true, Passes: &passes})
	if err != nil {
		return SelfTestResponse{Sweep: resp}, err
	}
	pos, err := s.Sweep.Host.Position(ctx)
	if err != nil {
		return SelfTestResponse{Sweep: resp}, err
	}
	s.logger().Info().Int("x", pos.X).Int("y", pos.Y).Msg("self test: position")
	return SelfTestResponse{Sweep: resp, Position: pos}, nil
}

// Shutdown cancels the active sweep and waits for it to record its outcome.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		return nil
	}
	active.cancel()
	select {
	case <-active.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) release(active *activeRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == active {
		s.active = nil
	}
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) logger() *zerolog.Logger {
	if s.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Logger
}
