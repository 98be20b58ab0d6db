package datastore

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"lifequest/internal/models"
)

// PostgresStore implements Store on bun. Catalog reads that tolerate replica
// lag go to the readonly handle.
type PostgresStore struct {
	db       *bun.DB
	readonly *bun.DB
}

func OpenPostgres(dsn string, password string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithPassword(password),
	))
	return bun.NewDB(sqldb, pgdialect.New())
}

func NewPostgresStore(db *bun.DB, readonly *bun.DB) *PostgresStore {
	if readonly == nil {
		readonly = db
	}
	return &PostgresStore{db: db, readonly: readonly}
}

func CreateTables(ctx context.Context, db *bun.DB) error {
	steps := []func(context.Context, *bun.DB) error{
		CreateTableConfig,
		CreateTableUser,
		CreateTableProfile,
		CreateTableMission,
		CreateTableUserMission,
		CreateTableMissionStep,
		CreateTableAchievement,
		CreateTableUserAchievement,
		CreateTableDailySlot,
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	return FindUserByID(ctx, s.db, userID)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	return CreateUser(ctx, s.db, user)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	return EditUser(ctx, s.db, user)
}

func (s *PostgresStore) ListProfiledUserIDs(ctx context.Context) ([]string, error) {
	return ListProfiledUserIDs(ctx, s.readonly)
}

func (s *PostgresStore) FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return FindProfileByUserID(ctx, s.db, userID)
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return UpsertProfile(ctx, s.db, profile)
}

func (s *PostgresStore) FindMissionByID(ctx context.Context, missionID string) (*models.Mission, error) {
	return FindMissionByID(ctx, s.db, missionID)
}

func (s *PostgresStore) FindMissionsByIDs(ctx context.Context, missionIDs []string) ([]*models.Mission, error) {
	return FindMissionsByIDs(ctx, s.db, missionIDs)
}

func (s *PostgresStore) InsertMissionIfNotExists(ctx context.Context, mission *models.Mission) (bool, error) {
	return InsertMissionIfNotExists(ctx, s.db, mission)
}

func (s *PostgresStore) ListActiveMissions(ctx context.Context, recurrence string) ([]*models.Mission, error) {
	return ListActiveMissions(ctx, s.readonly, recurrence)
}

func (s *PostgresStore) ListCatalogMissions(ctx context.Context, userID string) ([]*models.Mission, error) {
	return ListCatalogMissions(ctx, s.readonly, userID)
}

func (s *PostgresStore) InsertUserMission(ctx context.Context, userMission *models.UserMission) error {
	return InsertUserMission(ctx, s.db, userMission)
}

func (s *PostgresStore) FindUserMissions(ctx context.Context, filter *models.UserMissionFilter) ([]*models.UserMission, error) {
	return FindUserMissions(ctx, s.db, filter)
}

func (s *PostgresStore) CompleteUserMission(ctx context.Context, userMission *models.UserMission, fromStatuses []string, user *models.User) (bool, error) {
	return CompleteUserMissionWithUser(ctx, s.db, userMission, fromStatuses, user)
}

func (s *PostgresStore) CountCompletedUserMissions(ctx context.Context, userID string) (int, error) {
	return CountCompletedUserMissions(ctx, s.db, userID)
}

func (s *PostgresStore) CountActiveDays(ctx context.Context, userID string) (int, error) {
	return CountActiveDays(ctx, s.db, userID)
}

func (s *PostgresStore) InsertMissionSteps(ctx context.Context, steps []*models.MissionStep) error {
	return InsertMissionSteps(ctx, s.db, steps)
}

func (s *PostgresStore) FindMissionSteps(ctx context.Context, userMissionID string) ([]*models.MissionStep, error) {
	return FindMissionSteps(ctx, s.db, userMissionID)
}

func (s *PostgresStore) UpdateMissionStep(ctx context.Context, step *models.MissionStep) error {
	return UpdateMissionStep(ctx, s.db, step)
}

func (s *PostgresStore) ListActiveAchievements(ctx context.Context) ([]*models.Achievement, error) {
	return ListActiveAchievements(ctx, s.readonly)
}

func (s *PostgresStore) UpsertAchievement(ctx context.Context, achievement *models.Achievement) error {
	return UpsertAchievement(ctx, s.db, achievement)
}

func (s *PostgresStore) FindUserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	return FindUserAchievements(ctx, s.db, userID)
}

func (s *PostgresStore) InsertUserAchievement(ctx context.Context, userAchievement *models.UserAchievement) error {
	return InsertUserAchievement(ctx, s.db, userAchievement)
}

func (s *PostgresStore) FindDailySlots(ctx context.Context, userID string, date string) ([]*models.DailySlot, error) {
	return FindDailySlots(ctx, s.db, userID, date)
}

func (s *PostgresStore) FindDailySlot(ctx context.Context, userID string, token string) (*models.DailySlot, error) {
	return FindDailySlot(ctx, s.db, userID, token)
}

func (s *PostgresStore) InsertDailySlot(ctx context.Context, slot *models.DailySlot) error {
	return InsertDailySlot(ctx, s.db, slot)
}

func (s *PostgresStore) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	return GetConfigByKey(ctx, s.readonly, key)
}

func (s *PostgresStore) UpsertConfig(ctx context.Context, config *models.Config) error {
	return UpsertConfig(ctx, s.db, config)
}
