package memory_store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
)

func TestMissingRowsAreErrNoRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.FindUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = s.FindProfileByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = s.FindMissionByID(ctx, "m")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = s.FindDailySlot(ctx, "u", "t")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = s.GetConfigByKey(ctx, "k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, s.UpdateUser(ctx, &models.User{ID: "nobody"}), sql.ErrNoRows)
}

func TestInsertMissionIfNotExists(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.InsertMissionIfNotExists(ctx, &models.Mission{ID: "m1", Title: "first", IsActive: true})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.InsertMissionIfNotExists(ctx, &models.Mission{ID: "m1", Title: "second", IsActive: true})
	require.NoError(t, err)
	assert.False(t, created)

	m, err := s.FindMissionByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "first", m.Title)
}

func TestOneActiveUserMissionPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InsertUserMission(ctx, &models.UserMission{ID: "a", UserID: "u", MissionID: "m1", Status: models.USER_MISSION_STATUS_ACTIVE}))
	err := s.InsertUserMission(ctx, &models.UserMission{ID: "b", UserID: "u", MissionID: "m2", Status: models.USER_MISSION_STATUS_ACTIVE})
	assert.ErrorIs(t, err, datastore.ErrDuplicate)

	// another user is unaffected
	require.NoError(t, s.InsertUserMission(ctx, &models.UserMission{ID: "c", UserID: "v", MissionID: "m1", Status: models.USER_MISSION_STATUS_ACTIVE}))
}

func TestCompleteUserMissionIsCompareAndSwap(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertUserMission(ctx, &models.UserMission{ID: "a", UserID: "u", MissionID: "m1", Status: models.USER_MISSION_STATUS_ACTIVE}))

	now := time.Now()
	done := &models.UserMission{ID: "a", Status: models.USER_MISSION_STATUS_COMPLETED, CompletedAt: &now, XPEarned: 50}

	ok, err := s.CompleteUserMission(ctx, done, models.ActiveUserMissionStatuses, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompleteUserMission(ctx, done, models.ActiveUserMissionStatuses, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := s.CountCompletedUserMissions(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	days, err := s.CountActiveDays(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, days)
}

func TestCompleteUserMissionWritesUserTogether(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u", XP: 10}))
	require.NoError(t, s.InsertUserMission(ctx, &models.UserMission{ID: "a", UserID: "u", MissionID: "m1", Status: models.USER_MISSION_STATUS_ACTIVE}))

	now := time.Now()
	done := &models.UserMission{ID: "a", Status: models.USER_MISSION_STATUS_COMPLETED, CompletedAt: &now, XPEarned: 50}

	// unknown user: nothing is written
	_, err := s.CompleteUserMission(ctx, done, models.ActiveUserMissionStatuses, &models.User{ID: "ghost", XP: 60})
	require.ErrorIs(t, err, sql.ErrNoRows)
	active, err := s.FindUserMissions(ctx, &models.UserMissionFilter{UserID: "u", Statuses: models.ActiveUserMissionStatuses})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	ok, err := s.CompleteUserMission(ctx, done, models.ActiveUserMissionStatuses, &models.User{ID: "u", XP: 60})
	require.NoError(t, err)
	assert.True(t, ok)
	user, err := s.FindUserByID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 60, user.XP)

	// lost swap leaves the user alone
	ok, err = s.CompleteUserMission(ctx, done, models.ActiveUserMissionStatuses, &models.User{ID: "u", XP: 110})
	require.NoError(t, err)
	assert.False(t, ok)
	user, err = s.FindUserByID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 60, user.XP)
}

func TestUserAchievementUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InsertUserAchievement(ctx, &models.UserAchievement{UserID: "u", AchievementID: "first-mission"}))
	assert.ErrorIs(t, s.InsertUserAchievement(ctx, &models.UserAchievement{UserID: "u", AchievementID: "first-mission"}), datastore.ErrDuplicate)

	list, err := s.FindUserAchievements(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDailySlotUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InsertDailySlot(ctx, &models.DailySlot{UserID: "u", Token: "t1", Date: "2026-10-16", Difficulty: models.DIFFICULTY_EASY, MissionID: "m1"}))
	assert.ErrorIs(t, s.InsertDailySlot(ctx, &models.DailySlot{UserID: "u", Token: "t2", Date: "2026-10-16", Difficulty: models.DIFFICULTY_EASY, MissionID: "m2"}), datastore.ErrDuplicate)

	slot, err := s.FindDailySlot(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Equal(t, "m1", slot.MissionID)

	_, err = s.FindDailySlot(ctx, "other", "t1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProfileCopiesAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	profile := &models.Profile{UserID: "u", InsurancePreferences: []string{models.CATEGORY_HEALTH}}
	require.NoError(t, s.UpsertProfile(ctx, profile))
	profile.InsurancePreferences[0] = "mutated"

	stored, err := s.FindProfileByUserID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{models.CATEGORY_HEALTH}, stored.InsurancePreferences)
}
