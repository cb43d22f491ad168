package gormrepo

import (
	"context"
	"errors"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/repo/gorm/model"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SweepRunRepo struct {
	db *gorm.DB
}

func NewSweepRunRepo(db *gorm.DB) SweepRunRepo {
	return SweepRunRepo{db: db}
}

func (r SweepRunRepo) Create(ctx context.Context, run farm.Run) error {
	m := model.SweepRun{
		RunID:             run.ID,
		Status:            string(run.Status),
		CompanionInterval: int32(run.CompanionInterval),
		Debug:             run.Debug,
		WorldSize:         int32(run.WorldSize),
		PassesCompleted:   int32(run.PassesCompleted),
		Visits:            int64(run.Visits),
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		Error:             run.Error,
	}
	if run.Passes != nil {
		p := int32(*run.Passes)
		m.Passes = &p
	}
	res := dbFromCtx(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r SweepRunRepo) Get(ctx context.Context, runID string) (farm.Run, error) {
	var m model.SweepRun
	err := dbFromCtx(ctx, r.db).Where(&model.SweepRun{RunID: runID}).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return farm.Run{}, ports.ErrNotFound
		}
		return farm.Run{}, err
	}
	return toRun(m), nil
}

func (r SweepRunRepo) List(ctx context.Context, limit int) ([]farm.Run, error) {
	rows := []model.SweepRun{}
	query := dbFromCtx(ctx, r.db).Clauses(clause.OrderBy{
		Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "started_at"}, Desc: true}},
	})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]farm.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRun(row))
	}
	return out, nil
}

func (r SweepRunRepo) SaveProgress(ctx context.Context, runID string, progress ports.RunProgress) error {
	return r.updateRunning(ctx, runID, progressColumns(progress))
}

func (r SweepRunRepo) Finish(ctx context.Context, runID string, outcome ports.RunOutcome) error {
	updates := progressColumns(outcome.Progress)
	updates["status"] = string(outcome.Status)
	updates["finished_at"] = outcome.FinishedAt
	updates["error"] = outcome.Error
	return r.updateRunning(ctx, runID, updates)
}

// updateRunning only touches runs that are still running; a finished run is
// immutable and reports ErrConflict.
func (r SweepRunRepo) updateRunning(ctx context.Context, runID string, updates map[string]any) error {
	db := dbFromCtx(ctx, r.db)
	res := db.Model(&model.SweepRun{}).
		Where("run_id = ? AND status = ?", runID, string(farm.RunRunning)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := db.Model(&model.SweepRun{}).Where("run_id = ?", runID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrConflict
}

func progressColumns(p ports.RunProgress) map[string]any {
	return map[string]any{
		"world_size":       p.WorldSize,
		"passes_completed": p.PassesCompleted,
		"visits":           p.Visits,
	}
}

func toRun(m model.SweepRun) farm.Run {
	run := farm.Run{
		ID:                m.RunID,
		Status:            farm.RunStatus(m.Status),
		CompanionInterval: int(m.CompanionInterval),
		Debug:             m.Debug,
		WorldSize:         int(m.WorldSize),
		PassesCompleted:   int(m.PassesCompleted),
		Visits:            int(m.Visits),
		StartedAt:         m.StartedAt,
		FinishedAt:        m.FinishedAt,
		Error:             m.Error,
	}
	if m.Passes != nil {
		p := int(*m.Passes)
		run.Passes = &p
	}
	return run
}
