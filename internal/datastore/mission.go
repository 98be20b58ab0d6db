package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableMission(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Mission)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Mission)(nil)).Index("index_mission_recurrence_active").IfNotExists().Column("recurrence_type", "is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindMissionByID(ctx context.Context, db bun.IDB, missionID string) (*models.Mission, error) {
	var mission models.Mission
	err := db.NewSelect().Model(&mission).Where("id = ?", missionID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func FindMissionsByIDs(ctx context.Context, db bun.IDB, missionIDs []string) ([]*models.Mission, error) {
	missions := []*models.Mission{}
	if len(missionIDs) == 0 {
		return missions, nil
	}
	err := db.NewSelect().Model(&missions).Where("id IN (?)", bun.In(missionIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return missions, nil
}

func InsertMissionIfNotExists(ctx context.Context, db bun.IDB, mission *models.Mission) (bool, error) {
	res, err := db.NewInsert().Model(mission).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func ListCatalogMissions(ctx context.Context, db bun.IDB, userID string) ([]*models.Mission, error) {
	missions := []*models.Mission{}
	err := db.NewSelect().Model(&missions).
		Where("is_active = ?", true).
		Where("recurrence_type = ?", models.RECURRENCE_NONE).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("owner_id IS NULL").WhereOr("owner_id = ?", userID)
		}).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return missions, nil
}

func ListActiveMissions(ctx context.Context, db bun.IDB, recurrence string) ([]*models.Mission, error) {
	missions := []*models.Mission{}
	q := db.NewSelect().Model(&missions).Where("is_active = ?", true)
	if recurrence != "" {
		q = q.Where("recurrence_type = ?", recurrence)
	}
	err := q.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return missions, nil
}
