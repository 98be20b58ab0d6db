package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableMissionStep(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.MissionStep)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.MissionStep)(nil)).Unique().Index("index_mission_step_number").IfNotExists().Column("user_mission_id", "step_number").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertMissionSteps(ctx context.Context, db bun.IDB, steps []*models.MissionStep) error {
	if len(steps) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&steps).Exec(ctx)
	return mapInsertError(err)
}

func FindMissionSteps(ctx context.Context, db bun.IDB, userMissionID string) ([]*models.MissionStep, error) {
	steps := []*models.MissionStep{}
	err := db.NewSelect().Model(&steps).Where("user_mission_id = ?", userMissionID).Order("step_number ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func UpdateMissionStep(ctx context.Context, db bun.IDB, step *models.MissionStep) error {
	_, err := db.NewUpdate().Model(step).Column("status", "completed_at").WherePK().Exec(ctx)
	return err
}
