package sweep

import "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

const DefaultCompanionInterval = 5

type Request struct {
	RunID             string
	CompanionInterval int
	Debug             bool
	Passes            *int
}

func DefaultRequest() Request {
	return Request{CompanionInterval: DefaultCompanionInterval}
}

type Response struct {
	RunID           string         `json:"run_id,omitempty"`
	Status          farm.RunStatus `json:"status"`
	WorldSize       int            `json:"world_size"`
	PassesCompleted int            `json:"passes_completed"`
	Visits          int            `json:"visits"`
}
