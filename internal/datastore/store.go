package datastore

import (
	"context"
	"errors"

	"lifequest/internal/models"
)

// ErrDuplicate is returned when an insert clashes with an existing row.
// Missing rows are reported as sql.ErrNoRows.
var ErrDuplicate = errors.New("duplicate record")

// Store is the persistence contract shared by the postgres and in-memory
// implementations.
type Store interface {
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	ListProfiledUserIDs(ctx context.Context) ([]string, error)

	FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error

	FindMissionByID(ctx context.Context, missionID string) (*models.Mission, error)
	FindMissionsByIDs(ctx context.Context, missionIDs []string) ([]*models.Mission, error)
	// InsertMissionIfNotExists reports whether a new row was written.
	InsertMissionIfNotExists(ctx context.Context, mission *models.Mission) (bool, error)
	ListActiveMissions(ctx context.Context, recurrence string) ([]*models.Mission, error)
	// ListCatalogMissions returns active non-recurring missions that are shared
	// or owned by userID.
	ListCatalogMissions(ctx context.Context, userID string) ([]*models.Mission, error)

	InsertUserMission(ctx context.Context, userMission *models.UserMission) error
	FindUserMissions(ctx context.Context, filter *models.UserMissionFilter) ([]*models.UserMission, error)
	// CompleteUserMission writes the completion snapshot only while the row is
	// still in one of fromStatuses and reports whether it did. A non-nil user
	// is written in the same transaction, so either both land or neither does.
	CompleteUserMission(ctx context.Context, userMission *models.UserMission, fromStatuses []string, user *models.User) (bool, error)
	CountCompletedUserMissions(ctx context.Context, userID string) (int, error)
	CountActiveDays(ctx context.Context, userID string) (int, error)

	InsertMissionSteps(ctx context.Context, steps []*models.MissionStep) error
	FindMissionSteps(ctx context.Context, userMissionID string) ([]*models.MissionStep, error)
	UpdateMissionStep(ctx context.Context, step *models.MissionStep) error

	ListActiveAchievements(ctx context.Context) ([]*models.Achievement, error)
	UpsertAchievement(ctx context.Context, achievement *models.Achievement) error
	FindUserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, error)
	InsertUserAchievement(ctx context.Context, userAchievement *models.UserAchievement) error

	FindDailySlots(ctx context.Context, userID string, date string) ([]*models.DailySlot, error)
	FindDailySlot(ctx context.Context, userID string, token string) (*models.DailySlot, error)
	InsertDailySlot(ctx context.Context, slot *models.DailySlot) error

	GetConfigByKey(ctx context.Context, key string) (*models.Config, error)
	UpsertConfig(ctx context.Context, config *models.Config) error
}
