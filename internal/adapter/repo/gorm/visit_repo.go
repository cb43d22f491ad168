package gormrepo

import (
	"context"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/repo/gorm/model"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisitRepo struct {
	db *gorm.DB
}

func NewVisitRepo(db *gorm.DB) VisitRepo {
	return VisitRepo{db: db}
}

func (r VisitRepo) Append(ctx context.Context, runID string, visits []farm.Visit) error {
	if len(visits) == 0 {
		return nil
	}
	rows := make([]model.SweepVisit, 0, len(visits))
	for _, v := range visits {
		row := model.SweepVisit{
			RunID:       runID,
			Pass:        int32(v.Pass),
			Seq:         int64(v.Seq),
			X:           int32(v.Cell.X),
			Y:           int32(v.Cell.Y),
			Action:      string(v.Action),
			Planted:     string(v.Planted),
			PlantedX:    int32(v.PlantedAt.X),
			PlantedY:    int32(v.PlantedAt.Y),
			Watered:     v.Maintenance.Watered,
			Tilled:      v.Maintenance.Tilled,
			Harvested:   v.Maintenance.Harvested,
			DetourError: v.DetourError,
			VisitedAt:   v.VisitedAt,
		}
		if v.Companion != nil {
			plant := string(v.Companion.Plant)
			cx, cy := int32(v.Companion.At.X), int32(v.Companion.At.Y)
			row.CompanionPlant = &plant
			row.CompanionX = &cx
			row.CompanionY = &cy
		}
		rows = append(rows, row)
	}
	return dbFromCtx(ctx, r.db).CreateInBatches(&rows, 500).Error
}

func (r VisitRepo) ListByRun(ctx context.Context, runID string, limit int) ([]farm.Visit, error) {
	db := dbFromCtx(ctx, r.db)
	var count int64
	if err := db.Model(&model.SweepRun{}).Where("run_id = ?", runID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ports.ErrNotFound
	}

	rows := []model.SweepVisit{}
	query := db.Where(&model.SweepVisit{RunID: runID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "seq"}}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]farm.Visit, 0, len(rows))
	for _, row := range rows {
		v := farm.Visit{
			RunID:     row.RunID,
			Pass:      int(row.Pass),
			Seq:       int(row.Seq),
			Cell:      farm.Position{X: int(row.X), Y: int(row.Y)},
			Action:    farm.VisitAction(row.Action),
			Planted:   farm.Entity(row.Planted),
			PlantedAt: farm.Position{X: int(row.PlantedX), Y: int(row.PlantedY)},
			Maintenance: farm.Maintenance{
				Watered:   row.Watered,
				Tilled:    row.Tilled,
				Harvested: row.Harvested,
			},
			DetourError: row.DetourError,
			VisitedAt:   row.VisitedAt,
		}
		if row.CompanionPlant != nil && row.CompanionX != nil && row.CompanionY != nil {
			v.Companion = &farm.Companion{
				Plant: farm.Entity(*row.CompanionPlant),
				At:    farm.Position{X: int(*row.CompanionX), Y: int(*row.CompanionY)},
			}
		}
		out = append(out, v)
	}
	return out, nil
}
