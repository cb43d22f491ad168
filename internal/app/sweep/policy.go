package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"github.com/rs/zerolog"
)

// CompanionLookup is the outcome of one companion query. Err is kept for
// logging only; an errored lookup is never Available.
type CompanionLookup struct {
	Companion farm.Companion
	Available bool
	Err       error
}

func LookupCompanion(ctx context.Context, advisor ports.CompanionAdvisor) CompanionLookup {
	c, ok, err := advisor.Companion(ctx)
	if err != nil {
		return CompanionLookup{Err: fmt.Errorf("%w: %w", ErrCompanionUnavailable, err)}
	}
	if !ok {
		return CompanionLookup{}
	}
	return CompanionLookup{Companion: c, Available: true}
}

type Policy struct {
	Host      ports.FarmHost
	Metrics   ports.SweepMetrics
	Logger    *zerolog.Logger
	Debug     bool
	WorldSize int
}

// VisitCell maintains the tile under the agent, then plants exactly once:
// the companion at its suggested tile when due, otherwise the default crop.
// Companion faults degrade to the default crop and are not returned; a
// cancellation during the detour is.
func (p Policy) VisitCell(ctx context.Context, x, y, companionInterval int) (farm.Visit, error) {
	visit := farm.Visit{Cell: farm.Position{X: x, Y: y}, Action: farm.VisitDefault}
	logger := p.logger()

	m, err := Maintain(ctx, p.Host)
	if err != nil {
		return visit, fmt.Errorf("maintain (%d,%d): %w", x, y, err)
	}
	visit.Maintenance = m

	lookup := LookupCompanion(ctx, p.Host)
	if lookup.Err != nil {
		p.recordCompanionFault()
		logger.Debug().Err(lookup.Err).Int("x", x).Int("y", y).Msg("companion query failed")
	}

	if lookup.Available && farm.CompanionDue(x, y, companionInterval) {
		c := lookup.Companion
		visit.Companion = &c
		err := p.detour(ctx, c)
		if err == nil {
			visit.Action = farm.VisitCompanion
			visit.Planted = c.Plant
			visit.PlantedAt = c.At
			p.trace(x, y)
			return visit, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return visit, err
		}
		p.recordCompanionFault()
		logger.Warn().Err(err).Int("x", x).Int("y", y).Str("companion", string(c.Plant)).Msg("companion detour abandoned")
		visit.Action = farm.VisitFallback
		visit.DetourError = err.Error()
	}

	plantedAt := visit.Cell
	if visit.Action == farm.VisitFallback {
		// a partial detour leaves the agent wherever it stopped
		if pos, err := p.Host.Position(ctx); err == nil {
			plantedAt = pos
		}
	}
	entity := farm.EntityForSpot(x, y)
	if err := p.Host.Plant(ctx, entity); err != nil {
		return visit, fmt.Errorf("plant %s at (%d,%d): %w", entity, x, y, err)
	}
	visit.Planted = entity
	visit.PlantedAt = plantedAt
	p.trace(x, y)
	return visit, nil
}

// Maintain waters dry tiles, tills anything that is not soil and harvests
// ripe crops. The three checks are independent.
func Maintain(ctx context.Context, host ports.FarmHost) (farm.Maintenance, error) {
	var m farm.Maintenance

	level, err := host.WaterLevel(ctx)
	if err != nil {
		return m, fmt.Errorf("read water: %w", err)
	}
	if farm.NeedsWater(level) {
		if err := host.UseItem(ctx, farm.ItemWater); err != nil {
			return m, fmt.Errorf("use water: %w", err)
		}
		m.Watered = true
	}

	ground, err := host.GroundType(ctx)
	if err != nil {
		return m, fmt.Errorf("read ground: %w", err)
	}
	if ground != farm.GroundSoil {
		if err := host.Till(ctx); err != nil {
			return m, fmt.Errorf("till: %w", err)
		}
		m.Tilled = true
	}

	ripe, err := host.CanHarvest(ctx)
	if err != nil {
		return m, fmt.Errorf("read harvestable: %w", err)
	}
	if ripe {
		if err := host.Harvest(ctx); err != nil {
			return m, fmt.Errorf("harvest: %w", err)
		}
		m.Harvested = true
	}
	return m, nil
}

// detour is not atomic: a failure after travel leaves the agent away from
// the visited cell.
func (p Policy) detour(ctx context.Context, c farm.Companion) error {
	origin, err := p.Host.Position(ctx)
	if err != nil {
		return &DetourError{Step: DetourStepRecord, Err: err}
	}
	if p.WorldSize > 0 && !inBounds(c.At, p.WorldSize) {
		return &DetourError{Step: DetourStepTravel, Err: ErrCompanionOutOfBounds}
	}
	if err := MoveTo(ctx, p.Host, c.At); err != nil {
		return &DetourError{Step: DetourStepTravel, Err: err}
	}
	if _, err := Maintain(ctx, p.Host); err != nil {
		return &DetourError{Step: DetourStepMaintain, Err: err}
	}
	if err := p.Host.Plant(ctx, c.Plant); err != nil {
		return &DetourError{Step: DetourStepPlant, Err: err}
	}
	if err := MoveTo(ctx, p.Host, origin); err != nil {
		return &DetourError{Step: DetourStepReturn, Err: err}
	}
	p.logger().Debug().Str("plant", string(c.Plant)).Int("x", c.At.X).Int("y", c.At.Y).Msg("companion planted")
	return nil
}

func (p Policy) trace(x, y int) {
	if !p.Debug {
		return
	}
	p.logger().Info().Bool("debug", true).Int("x", x).Int("y", y).Msg("visited")
}

func (p Policy) recordCompanionFault() {
	if p.Metrics != nil {
		p.Metrics.RecordCompanionFault()
	}
}

func (p Policy) logger() *zerolog.Logger {
	if p.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return p.Logger
}

func inBounds(pos farm.Position, size int) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < size && pos.Y < size
}
