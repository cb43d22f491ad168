package farm

import "time"

type VisitAction string

const (
	VisitDefault   VisitAction = "default"
	VisitCompanion VisitAction = "companion"
	VisitFallback  VisitAction = "fallback"
)

type Maintenance struct {
	Watered   bool `json:"watered"`
	Tilled    bool `json:"tilled"`
	Harvested bool `json:"harvested"`
}

type Visit struct {
	RunID       string      `json:"run_id,omitempty"`
	Pass        int         `json:"pass"`
	Seq         int         `json:"seq"`
	Cell        Position    `json:"cell"`
	Action      VisitAction `json:"action"`
	Planted     Entity      `json:"planted"`
	PlantedAt   Position    `json:"planted_at"`
	Companion   *Companion  `json:"companion,omitempty"`
	Maintenance Maintenance `json:"maintenance"`
	DetourError string      `json:"detour_error,omitempty"`
	VisitedAt   time.Time   `json:"visited_at"`
}

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
	RunSkipped   RunStatus = "skipped"
)

func (s RunStatus) Terminal() bool {
	return s != RunRunning
}

type Run struct {
	ID                string     `json:"id"`
	Status            RunStatus  `json:"status"`
	CompanionInterval int        `json:"companion_interval"`
	Passes            *int       `json:"passes,omitempty"`
	Debug             bool       `json:"debug"`
	WorldSize         int        `json:"world_size"`
	PassesCompleted   int        `json:"passes_completed"`
	Visits            int        `json:"visits"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	Error             string     `json:"error,omitempty"`
}
