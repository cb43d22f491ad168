package model

import "time"

const TableNameSweepVisit = "sweep_visits"

type SweepVisit struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement:true"`
	RunID          string    `gorm:"column:run_id;not null"`
	Pass           int32     `gorm:"column:pass;not null"`
	Seq            int64     `gorm:"column:seq;not null"`
	X              int32     `gorm:"column:x;not null"`
	Y              int32     `gorm:"column:y;not null"`
	Action         string    `gorm:"column:action;not null"`
	Planted        string    `gorm:"column:planted;not null"`
	PlantedX       int32     `gorm:"column:planted_x;not null"`
	PlantedY       int32     `gorm:"column:planted_y;not null"`
	CompanionPlant *string   `gorm:"column:companion_plant"`
	CompanionX     *int32    `gorm:"column:companion_x"`
	CompanionY     *int32    `gorm:"column:companion_y"`
	Watered        bool      `gorm:"column:watered;not null"`
	Tilled         bool      `gorm:"column:tilled;not null"`
	Harvested      bool      `gorm:"column:harvested;not null"`
	DetourError    string    `gorm:"column:detour_error;not null"`
	VisitedAt      time.Time `gorm:"column:visited_at;not null"`
}

func (*SweepVisit) TableName() string {
	return TableNameSweepVisit
}
