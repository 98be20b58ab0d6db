package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableProfile(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Profile)(nil)).IfNotExists().Exec(ctx)
	return err
}

func FindProfileByUserID(ctx context.Context, db bun.IDB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.NewSelect().Model(&profile).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func UpsertProfile(ctx context.Context, db bun.IDB, profile *models.Profile) error {
	profile.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(profile).
		On("CONFLICT (user_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("age = EXCLUDED.age").
		Set("gender = EXCLUDED.gender").
		Set("nationality = EXCLUDED.nationality").
		Set("insurance_preferences = EXCLUDED.insurance_preferences").
		Set("vulnerabilities = EXCLUDED.vulnerabilities").
		Set("first_time_buyer = EXCLUDED.first_time_buyer").
		Set("occupation = EXCLUDED.occupation").
		Set("marital_status = EXCLUDED.marital_status").
		Set("dependents = EXCLUDED.dependents").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func ListProfiledUserIDs(ctx context.Context, db bun.IDB) ([]string, error) {
	var ids []string
	err := db.NewSelect().Model((*models.Profile)(nil)).Column("user_id").Order("user_id ASC").Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
