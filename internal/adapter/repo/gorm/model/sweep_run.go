package model

import "time"

const TableNameSweepRun = "sweep_runs"

type SweepRun struct {
	RunID             string     `gorm:"column:run_id;primaryKey"`
	Status            string     `gorm:"column:status;not null"`
	CompanionInterval int32      `gorm:"column:companion_interval;not null"`
	Passes            *int32     `gorm:"column:passes"`
	Debug             bool       `gorm:"column:debug;not null"`
	WorldSize         int32      `gorm:"column:world_size;not null"`
	PassesCompleted   int32      `gorm:"column:passes_completed;not null"`
	Visits            int64      `gorm:"column:visits;not null"`
	StartedAt         time.Time  `gorm:"column:started_at;not null"`
	FinishedAt        *time.Time `gorm:"column:finished_at"`
	Error             string     `gorm:"column:error;not null"`
}

func (*SweepRun) TableName() string {
	return TableNameSweepRun
}
