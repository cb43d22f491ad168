package replay

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Runs   ports.SweepRunRepository
	Visits ports.VisitRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	run, err := u.Runs.Get(ctx, req.RunID)
	if err != nil {
		return Response{}, err
	}
	visits, err := u.Visits.ListByRun(ctx, req.RunID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	visits = filterByTimeWindow(visits, req.VisitedFrom, req.VisitedTo)

	out := Response{Run: run, Visits: visits, Actions: map[farm.VisitAction]int{}}
	for _, v := range visits {
		out.Actions[v.Action]++
		if v.Maintenance.Harvested {
			out.Harvests++
		}
	}
	out.Plantings = reconstruct(visits)
	return out, nil
}

func filterByTimeWindow(visits []farm.Visit, from, to int64) []farm.Visit {
	if from <= 0 && to <= 0 {
		return visits
	}
	out := make([]farm.Visit, 0, len(visits))
	for _, v := range visits {
		ts := v.VisitedAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, v)
	}
	return out
}

// reconstruct replays visits in seq order and keeps the last planting per
// tile, sorted row by row.
func reconstruct(visits []farm.Visit) []Planting {
	ordered := slices.SortedFunc(slices.Values(visits), func(a, b farm.Visit) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	last := map[farm.Position]Planting{}
	for _, v := range ordered {
		if v.Planted == "" {
			continue
		}
		last[v.PlantedAt] = Planting{At: v.PlantedAt, Entity: v.Planted, Action: v.Action, Seq: v.Seq}
	}
	out := make([]Planting, 0, len(last))
	for _, p := range last {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Planting) int {
		return cmp.Or(cmp.Compare(a.At.Y, b.At.Y), cmp.Compare(a.At.X, b.At.X))
	})
	return out
}
