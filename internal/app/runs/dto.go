package runs

import (
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/sweep"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

type StartRequest struct {
	CompanionInterval *int
	Debug             bool
	Passes            *int
}

type SelfTestResponse struct {
	Sweep    sweep.Response `json:"sweep"`
	Position farm.Position  `json:"position"`
}
