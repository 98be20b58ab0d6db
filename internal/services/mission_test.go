package services_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifequest/internal/datastore"
	"lifequest/internal/generation"
	"lifequest/internal/models"
	"lifequest/internal/services"
)

const liveMissions = `{"missions":[
	{"title":"Walk 20 minutes","description":"Take a walk","category":"health","difficulty":"easy","xp_reward":50,"lifescore_impact":2},
	{"title":"Check tyres","description":"Check pressure","category":"safe_driving","difficulty":"medium","xp_reward":90,"lifescore_impact":3},
	{"title":"Build a budget","description":"Plan the month","category":"financial_guardian","difficulty":"hard","xp_reward":150,"lifescore_impact":5}
]}`

func TestGenerateMissionsRequiresProfile(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, false)

	_, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.ErrorIs(t, err, services.ErrProfileIncomplete)

	var incomplete *services.ProfileIncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.True(t, incomplete.NotFound)

	profile := completeProfile()
	profile.InsurancePreferences = nil
	_, err = f.profiles.UpsertProfile(f.ctx, "u1", profile)
	require.NoError(t, err)

	_, err = f.missions.GenerateMissions(f.ctx, "u1")
	require.True(t, errors.As(err, &incomplete))
	assert.False(t, incomplete.NotFound)
	assert.Equal(t, []string{services.PROFILE_FIELD_INSURANCE_PREFERENCES}, incomplete.Missing)

	missions, err := f.store.ListActiveMissions(f.ctx, models.RECURRENCE_NONE)
	require.NoError(t, err)
	assert.Empty(t, missions)
}

func TestGenerateMissionsFallbackIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)

	first, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i, m := range first {
		assert.Equal(t, models.Difficulties[i], m.Difficulty)
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.AIGenerated)
	}

	second, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	catalog, err := f.store.ListActiveMissions(f.ctx, models.RECURRENCE_NONE)
	require.NoError(t, err)
	assert.Len(t, catalog, 3)
}

func TestGenerateMissionsLive(t *testing.T) {
	provider := &fakeProvider{respond: func(string) (string, error) { return liveMissions, nil }}
	f := newFixture(t, provider)
	f.newUser(t, "u1", 0, true)

	missions, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, missions, 3)
	for _, m := range missions {
		assert.True(t, m.AIGenerated)
		stored, err := f.store.FindMissionByID(f.ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.Title, stored.Title)
		assert.Equal(t, "u1", stored.OwnerID)
	}

	own, err := f.missions.ListMissions(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, own, 3)

	others, err := f.missions.ListMissions(f.ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestGenerateMissionsSurfacesProviderFailure(t *testing.T) {
	provider := &fakeProvider{respond: func(string) (string, error) { return "I cannot help with that", nil }}
	f := newFixture(t, provider)
	f.newUser(t, "u1", 0, true)

	_, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.ErrorIs(t, err, generation.ErrGenerationFailed)

	catalog, err := f.store.ListActiveMissions(f.ctx, models.RECURRENCE_NONE)
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestGenerateMissionsRateLimited(t *testing.T) {
	provider := &fakeProvider{respond: func(string) (string, error) { return liveMissions, nil }}
	f := newFixture(t, provider)
	f.newUser(t, "u1", 0, true)
	require.NoError(t, f.config.SetConfig(f.ctx, services.CONFIG_GENERATION_RATE_LIMIT_PER_MINUTE, "1", ""))

	_, err := f.missions.GenerateMissions(f.ctx, "u1")
	require.NoError(t, err)

	_, err = f.missions.GenerateMissions(f.ctx, "u1")
	require.ErrorIs(t, err, services.ErrRateLimited)
	assert.Equal(t, 1, provider.Calls())

	f.now = f.now.Add(time.Minute)
	_, err = f.missions.GenerateMissions(f.ctx, "u1")
	require.NoError(t, err)
}

func TestStartMissionSingleActive(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m1 := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY, XPReward: 50})
	m2 := f.addMission(t, &models.Mission{ID: "m2", Title: "Two", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_MEDIUM, XPReward: 80})

	started, err := f.missions.StartMission(f.ctx, "u1", m1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.USER_MISSION_STATUS_ACTIVE, started.Status)
	assert.Equal(t, m1.ID, started.Mission.ID)

	_, err = f.missions.StartMission(f.ctx, "u1", m2.ID)
	require.ErrorIs(t, err, services.ErrMissionConflict)

	_, err = f.missions.StartMission(f.ctx, "u1", m1.ID)
	require.ErrorIs(t, err, services.ErrMissionAlreadyStarted)

	_, err = f.missions.StartMission(f.ctx, "u1", "missing")
	require.ErrorIs(t, err, services.ErrMissionNotFound)

	active, err := f.missions.GetActiveMission(f.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, m1.ID, active.MissionID)
}

func TestStartMissionWithoutCoinsHasNoSteps(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY})

	started, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.Empty(t, started.Steps)
	assert.Equal(t, 0, f.user(t, "u1").Coins)
}

func TestStartMissionChargesStepFee(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 12, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY})

	started, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	require.Len(t, started.Steps, models.STEPS_PER_MISSION)
	for i, step := range started.Steps {
		assert.Equal(t, i+1, step.StepNumber)
		assert.Equal(t, models.STEP_STATUS_PENDING, step.Status)
		assert.Equal(t, started.ID, step.UserMissionID)
	}

	user := f.user(t, "u1")
	assert.Equal(t, 12-services.DEFAULT_STEP_GENERATION_FEE, user.Coins)
	assert.Equal(t, 0, user.TotalCoinsEarned)
}

func TestStartMissionRefundsFeeOnGenerationFailure(t *testing.T) {
	provider := &fakeProvider{respond: func(string) (string, error) { return "", errors.New("upstream down") }}
	f := newFixture(t, provider)
	f.newUser(t, "u1", 12, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY})

	started, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.Empty(t, started.Steps)
	assert.Equal(t, models.USER_MISSION_STATUS_ACTIVE, started.Status)

	user := f.user(t, "u1")
	assert.Equal(t, 12, user.Coins)
	assert.Equal(t, 0, user.TotalCoinsEarned)
}

func TestCompleteMissionNotStarted(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY, XPReward: 50})

	_, err := f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.ErrorIs(t, err, services.ErrMissionNotStarted)

	user := f.user(t, "u1")
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, 0, user.Coins)
	assert.Equal(t, models.DEFAULT_LIFESCORE, user.LifeScore)
	assert.Equal(t, 0, user.CurrentStreak)
}

func TestCompleteMissionGrantsRewards(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY, XPReward: 50, LifeScoreImpact: 2})

	_, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	result, err := f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RewardBreakdown{XP: 50, Coins: 10, LifeScore: 2}, result.Rewards)
	assert.Equal(t, 10, result.UserMission.CoinsEarned)
	assert.Equal(t, models.USER_MISSION_STATUS_COMPLETED, result.UserMission.Status)
	require.NotNil(t, result.UserMission.CompletedAt)

	require.Len(t, result.Achievements, 1)
	assert.Equal(t, "first-mission", result.Achievements[0].ID)

	// mission rewards plus the first-mission achievement
	assert.Equal(t, 75, result.XP)
	assert.Equal(t, 20, result.Coins)
	assert.Equal(t, 53, result.LifeScore)
	assert.Equal(t, 1, result.Level)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.Streak)

	user := f.user(t, "u1")
	assert.Equal(t, 75, user.XP)
	assert.Equal(t, 20, user.TotalCoinsEarned)

	active, err := f.missions.GetActiveMission(f.ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, active)

	history, err := f.missions.ListUserMissions(f.ctx, "u1", models.USER_MISSION_STATUS_COMPLETED)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, m.ID, history[0].Mission.ID)

	_, err = f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.ErrorIs(t, err, services.ErrMissionNotStarted)

	rank, err := f.board.Rank(f.ctx, services.LEADERBOARD_XP, "u1")
	require.NoError(t, err)
	require.NotNil(t, rank)
	assert.Equal(t, 1, rank.Rank)
}

func TestCompleteMissionFailedWriteKeepsMissionActive(t *testing.T) {
	store := &flakyStore{completionFailures: 1}
	f := newFixtureWithStore(t, nil, func(inner datastore.Store) datastore.Store {
		store.Store = inner
		return store
	})
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY, XPReward: 50, LifeScoreImpact: 2})

	_, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	_, err = f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.ErrorIs(t, err, errStoreDown)

	user := f.user(t, "u1")
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, 0, user.CurrentStreak)
	assert.Equal(t, 50, user.LifeScore)

	active, err := f.missions.GetActiveMission(f.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, m.ID, active.MissionID)
	assert.Zero(t, active.XPEarned)

	rank, err := f.board.Rank(f.ctx, services.LEADERBOARD_XP, "u1")
	require.NoError(t, err)
	assert.Zero(t, rank.Rank)

	result, err := f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, result.XP)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 75, f.user(t, "u1").XP)
}

func TestCompleteMissionLevelUp(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "Hard", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_HARD, XPReward: 150, CoinReward: 7})

	_, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	result, err := f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Rewards.Coins)
	assert.Equal(t, 2, result.Level)
	assert.True(t, result.LeveledUp)
}

func TestCompleteMissionConcurrent(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY, XPReward: 50})

	_, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.missions.CompleteMission(f.ctx, "u1", m.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, services.ErrMissionNotStarted) {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, failures)
	assert.Equal(t, 75, f.user(t, "u1").XP)
}

func TestResetDailyMissionsOncePerDay(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, false)

	first, err := f.missions.ResetDailyMissions(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyReset)
	assert.Equal(t, "2026-10-16", first.Date)
	require.Len(t, first.Missions, 3)
	for i, m := range first.Missions {
		assert.Equal(t, models.Difficulties[i], m.Difficulty)
		assert.Equal(t, models.RECURRENCE_DAILY, m.RecurrenceType)
		assert.Equal(t, services.SlotToken("u1", first.Date, m.Difficulty), m.SlotToken)
	}

	f.now = f.now.Add(3 * time.Hour)
	second, err := f.missions.ResetDailyMissions(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyReset)
	require.Len(t, second.Missions, 3)
	for i := range first.Missions {
		assert.Equal(t, first.Missions[i].ID, second.Missions[i].ID)
		assert.Equal(t, first.Missions[i].SlotToken, second.Missions[i].SlotToken)
	}

	daily, err := f.store.ListActiveMissions(f.ctx, models.RECURRENCE_DAILY)
	require.NoError(t, err)
	assert.Len(t, daily, 3)

	f.now = f.now.Add(24 * time.Hour)
	next, err := f.missions.ResetDailyMissions(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, next.AlreadyReset)
	assert.NotEqual(t, first.Missions[0].ID, next.Missions[0].ID)
}

func TestSlotTokenStartAndComplete(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, false)

	daily, err := f.missions.ResetDailyMissions(f.ctx, "u1")
	require.NoError(t, err)
	easy := daily.Missions[0]

	started, err := f.missions.StartMission(f.ctx, "u1", easy.SlotToken)
	require.NoError(t, err)
	assert.Equal(t, easy.ID, started.MissionID)

	result, err := f.missions.CompleteMission(f.ctx, "u1", easy.SlotToken)
	require.NoError(t, err)
	assert.Equal(t, easy.ID, result.UserMission.MissionID)

	_, err = f.missions.StartMission(f.ctx, "u2", easy.SlotToken)
	require.ErrorIs(t, err, services.ErrMissionNotFound)

	missions, err := f.missions.ListMissions(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, missions, 3)
	assert.Equal(t, easy.SlotToken, missions[0].SlotToken)
}

func TestCompleteStep(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 10, true)
	m := f.addMission(t, &models.Mission{ID: "m1", Title: "One", Category: models.CATEGORY_HEALTH, Difficulty: models.DIFFICULTY_EASY})

	started, err := f.missions.StartMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)
	require.Len(t, started.Steps, 3)

	step, err := f.missions.CompleteStep(f.ctx, "u1", started.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.STEP_STATUS_COMPLETED, step.Status)
	require.NotNil(t, step.CompletedAt)

	again, err := f.missions.CompleteStep(f.ctx, "u1", started.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, step.CompletedAt.Unix(), again.CompletedAt.Unix())

	_, err = f.missions.CompleteStep(f.ctx, "u1", started.ID, 9)
	require.ErrorIs(t, err, services.ErrStepNotFound)

	_, err = f.missions.CompleteStep(f.ctx, "u1", "nope", 1)
	require.ErrorIs(t, err, services.ErrMissionNotFound)

	_, err = f.missions.CompleteMission(f.ctx, "u1", m.ID)
	require.NoError(t, err)

	_, err = f.missions.CompleteStep(f.ctx, "u1", started.ID, 1)
	require.ErrorIs(t, err, services.ErrMissionNotStarted)
}

func TestListUserMissionsRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, nil)
	f.newUser(t, "u1", 0, true)

	_, err := f.missions.ListUserMissions(f.ctx, "u1", "paused")
	require.Error(t, err)

	all, err := f.missions.ListUserMissions(f.ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetDailyBriefIsCachedPerDay(t *testing.T) {
	provider := &fakeProvider{respond: func(string) (string, error) {
		return `{"greeting":"Morning Ana","focus":"health","tips":["Drink water"]}`, nil
	}}
	f := newFixture(t, provider)
	f.newUser(t, "u1", 0, true)

	brief, err := f.missions.GetDailyBrief(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Morning Ana", brief.Greeting)
	assert.True(t, brief.Generated)

	again, err := f.missions.GetDailyBrief(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, brief.Greeting, again.Greeting)
	assert.Equal(t, 1, provider.Calls())
}
