package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"lifequest/internal/models"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_xp").IfNotExists().Column("xp").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db bun.IDB, user *models.User) error {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	return mapInsertError(err)
}

func EditUser(ctx context.Context, db bun.IDB, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(user).WherePK().Exec(ctx)
	return err
}

// ListUserScores pages through users by id, loading only the columns the
// leaderboard needs.
func ListUserScores(ctx context.Context, db bun.IDB, limit int, offset int) ([]*models.User, error) {
	users := []*models.User{}
	err := db.NewSelect().
		Model(&users).
		Column("id", "xp").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}
