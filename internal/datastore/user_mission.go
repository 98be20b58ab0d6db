package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableUserMission(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserMission)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserMission)(nil)).Index("index_user_mission_user_status").IfNotExists().Column("user_id", "status").Exec(ctx)
	if err != nil {
		return err
	}

	// at most one active mission per user
	_, err = db.NewRaw(`
		create unique index if not exists index_user_mission_one_active
			on user_mission (user_id) where status in ('active', 'started');`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertUserMission(ctx context.Context, db bun.IDB, userMission *models.UserMission) error {
	_, err := db.NewInsert().Model(userMission).Exec(ctx)
	return mapInsertError(err)
}

func FindUserMissions(ctx context.Context, db bun.IDB, filter *models.UserMissionFilter) ([]*models.UserMission, error) {
	userMissions := []*models.UserMission{}
	q := db.NewSelect().Model(&userMissions)
	if filter.ID != "" {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.MissionID != "" {
		q = q.Where("mission_id = ?", filter.MissionID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(filter.Statuses))
	}
	err := q.Order("started_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userMissions, nil
}

func CompleteUserMission(ctx context.Context, db bun.IDB, userMission *models.UserMission, fromStatuses []string) (bool, error) {
	res, err := db.NewUpdate().Model(userMission).
		Column("status", "completed_at", "coins_earned", "xp_earned", "lifescore_change").
		WherePK().
		Where("status IN (?)", bun.In(fromStatuses)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func CompleteUserMissionWithUser(ctx context.Context, db *bun.DB, userMission *models.UserMission, fromStatuses []string, user *models.User) (bool, error) {
	var swapped bool
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := CompleteUserMission(ctx, tx, userMission, fromStatuses)
		if err != nil || !ok {
			return err
		}
		if user != nil {
			if err := EditUser(ctx, tx, user); err != nil {
				return err
			}
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func CountCompletedUserMissions(ctx context.Context, db bun.IDB, userID string) (int, error) {
	return db.NewSelect().Model((*models.UserMission)(nil)).
		Where("user_id = ?", userID).
		Where("status = ?", models.USER_MISSION_STATUS_COMPLETED).
		Count(ctx)
}

func CountActiveDays(ctx context.Context, db bun.IDB, userID string) (int, error) {
	var days int
	err := db.NewSelect().Model((*models.UserMission)(nil)).
		ColumnExpr("count(distinct date(completed_at at time zone 'UTC'))").
		Where("user_id = ?", userID).
		Where("status = ?", models.USER_MISSION_STATUS_COMPLETED).
		Scan(ctx, &days)
	if err != nil {
		return 0, err
	}
	return days, nil
}
