package sweep

import (
	"context"
	"fmt"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type positionMover interface {
	Position(ctx context.Context) (farm.Position, error)
	Move(ctx context.Context, dir farm.Direction) error
}

// ResetToOrigin walks west until x is 0, then south until y is 0.
func ResetToOrigin(ctx context.Context, host positionMover) error {
	for {
		pos, err := host.Position(ctx)
		if err != nil {
			return fmt.Errorf("read position: %w", err)
		}
		if pos.X <= 0 {
			break
		}
		if err := step(ctx, host, farm.West); err != nil {
			return err
		}
	}
	for {
		pos, err := host.Position(ctx)
		if err != nil {
			return fmt.Errorf("read position: %w", err)
		}
		if pos.Y <= 0 {
			return nil
		}
		if err := step(ctx, host, farm.South); err != nil {
			return err
		}
	}
}

// MoveTo seeks target one unit at a time, x first. It terminates only if every
// move shortens the distance on the axis being walked.
func MoveTo(ctx context.Context, host positionMover, target farm.Position) error {
	for {
		pos, err := host.Position(ctx)
		if err != nil {
			return fmt.Errorf("read position: %w", err)
		}
		if pos.X == target.X {
			break
		}
		dir := farm.East
		if pos.X > target.X {
			dir = farm.West
		}
		if err := step(ctx, host, dir); err != nil {
			return err
		}
	}
	for {
		pos, err := host.Position(ctx)
		if err != nil {
			return fmt.Errorf("read position: %w", err)
		}
		if pos.Y == target.Y {
			return nil
		}
		dir := farm.North
		if pos.Y > target.Y {
			dir = farm.South
		}
		if err := step(ctx, host, dir); err != nil {
			return err
		}
	}
}

func step(ctx context.Context, host positionMover, dir farm.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := host.Move(ctx, dir); err != nil {
		return fmt.Errorf("move %s: %w", dir, err)
	}
	return nil
}
