package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Achievement)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableUserAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserAchievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserAchievement)(nil)).Unique().Index("index_user_achievement_pair").IfNotExists().Column("user_id", "achievement_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func ListActiveAchievements(ctx context.Context, db bun.IDB) ([]*models.Achievement, error) {
	achievements := []*models.Achievement{}
	err := db.NewSelect().Model(&achievements).Where("is_active = ?", true).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func UpsertAchievement(ctx context.Context, db bun.IDB, achievement *models.Achievement) error {
	_, err := db.NewInsert().Model(achievement).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("icon = EXCLUDED.icon").
		Set("condition_type = EXCLUDED.condition_type").
		Set("condition_value = EXCLUDED.condition_value").
		Set("xp_reward = EXCLUDED.xp_reward").
		Set("coin_reward = EXCLUDED.coin_reward").
		Set("lifescore_boost = EXCLUDED.lifescore_boost").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	return err
}

func FindUserAchievements(ctx context.Context, db bun.IDB, userID string) ([]*models.UserAchievement, error) {
	userAchievements := []*models.UserAchievement{}
	err := db.NewSelect().Model(&userAchievements).Where("user_id = ?", userID).Order("unlocked_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userAchievements, nil
}

func InsertUserAchievement(ctx context.Context, db bun.IDB, userAchievement *models.UserAchievement) error {
	if userAchievement.UnlockedAt.IsZero() {
		userAchievement.UnlockedAt = time.Now()
	}
	res, err := db.NewInsert().Model(userAchievement).
		On("CONFLICT (user_id, achievement_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return mapInsertError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}
