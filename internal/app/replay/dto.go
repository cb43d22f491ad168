package replay

import "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

type Request struct {
	RunID       string
	Limit       int
	VisitedFrom int64
	VisitedTo   int64
}

// Planting is the last crop the journal puts on a tile.
type Planting struct {
	At     farm.Position    `json:"at"`
	Entity farm.Entity      `json:"entity"`
	Action farm.VisitAction `json:"action"`
	Seq    int              `json:"seq"`
}

type Response struct {
	Run       farm.Run                 `json:"run"`
	Visits    []farm.Visit             `json:"visits"`
	Plantings []Planting               `json:"plantings"`
	Actions   map[farm.VisitAction]int `json:"actions"`
	Harvests  int                      `json:"harvests"`
}
