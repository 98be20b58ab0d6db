package datastore

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableDailySlot(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailySlot)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailySlot)(nil)).Unique().Index("index_daily_slot_user_date_difficulty").IfNotExists().Column("user_id", "date", "difficulty").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindDailySlots(ctx context.Context, db bun.IDB, userID string, date string) ([]*models.DailySlot, error) {
	slots := []*models.DailySlot{}
	err := db.NewSelect().Model(&slots).Where("user_id = ?", userID).Where("date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func FindDailySlot(ctx context.Context, db bun.IDB, userID string, token string) (*models.DailySlot, error) {
	var slot models.DailySlot
	err := db.NewSelect().Model(&slot).Where("user_id = ?", userID).Where("token = ?", token).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	if slot.MissionID == "" {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

func InsertDailySlot(ctx context.Context, db bun.IDB, slot *models.DailySlot) error {
	_, err := db.NewInsert().Model(slot).Exec(ctx)
	return mapInsertError(err)
}
