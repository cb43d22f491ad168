package ports

import (
	"context"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

// FarmSensors are side-effect free reads of the agent and the tile it stands on.
// WorldSize returns ErrNotFound when the host has no grid.
type FarmSensors interface {
	Position(ctx context.Context) (farm.Position, error)
	WorldSize(ctx context.Context) (int, error)
	WaterLevel(ctx context.Context) (float64, error)
	GroundType(ctx context.Context) (farm.Ground, error)
	CanHarvest(ctx context.Context) (bool, error)
}

// FarmActuators act on the agent's current tile. Move always travels exactly one unit.
type FarmActuators interface {
	Move(ctx context.Context, dir farm.Direction) error
	UseItem(ctx context.Context, item farm.Item) error
	Till(ctx context.Context) error
	Harvest(ctx context.Context) error
	Plant(ctx context.Context, entity farm.Entity) error
}

type CompanionAdvisor interface {
	Companion(ctx context.Context) (farm.Companion, bool, error)
}

type FarmHost interface {
	FarmSensors
	FarmActuators
	CompanionAdvisor
}
