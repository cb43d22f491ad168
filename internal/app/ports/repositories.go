package ports

import (
	"context"
	"time"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type RunProgress struct {
	WorldSize       int
	PassesCompleted int
	Visits          int
}

type RunOutcome struct {
	Status     farm.RunStatus
	Progress   RunProgress
	FinishedAt time.Time
	Error      string
}

type SweepRunRepository interface {
	Create(ctx context.Context, run farm.Run) error
	Get(ctx context.Context, runID string) (farm.Run, error)
	List(ctx context.Context, limit int) ([]farm.Run, error)
	SaveProgress(ctx context.Context, runID string, progress RunProgress) error
	Finish(ctx context.Context, runID string, outcome RunOutcome) error
}

type VisitRepository interface {
	Append(ctx context.Context, runID string, visits []farm.Visit) error
	ListByRun(ctx context.Context, runID string, limit int) ([]farm.Visit, error)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
