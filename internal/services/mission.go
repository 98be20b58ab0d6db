package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/interfaces"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
	"lifequest/internal/pkg/limiter"
)

type ServiceMission struct {
	container *do.Injector
	store     datastore.Store
	generator interfaces.Generator
	locker    interfaces.Locker
	limiter   interfaces.Limiter
	cache     caching.Cache
	logger    *zap.Logger
	now       func() time.Time

	serviceConfig       *ServiceConfig
	serviceProfile      *ServiceProfile
	serviceGamification *ServiceGamification
	serviceAchievement  *ServiceAchievement
}

func NewServiceMission(container *do.Injector) (*ServiceMission, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	generator, err := do.Invoke[interfaces.Generator](container)
	if err != nil {
		return nil, err
	}

	userLocker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceProfile, err := do.Invoke[*ServiceProfile](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMission{
		container:           container,
		store:               store,
		generator:           generator,
		locker:              userLocker,
		limiter:             rateLimiter,
		cache:               cache,
		logger:              invokeLogger(container),
		now:                 invokeClock(container),
		serviceConfig:       serviceConfig,
		serviceProfile:      serviceProfile,
		serviceGamification: serviceGamification,
		serviceAchievement:  serviceAchievement,
	}, nil
}

func (service *ServiceMission) lockUser(ctx context.Context, userID string) (func(), error) {
	unlock, err := service.locker.Obtain(ctx, LockKeyUserMission(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserLock, err)
	}
	return unlock, nil
}

func (service *ServiceMission) allowGeneration(ctx context.Context, userID string) error {
	if !service.generator.Enabled() {
		return nil
	}

	perMinute, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_GENERATION_RATE_LIMIT_PER_MINUTE, DEFAULT_GENERATION_RATE_LIMIT_PER_MINUTE)
	if err != nil {
		service.logger.Warn("generation rate limit config unreadable", zap.Error(err))
	}
	if perMinute <= 0 {
		return nil
	}

	err = service.limiter.Allow(ctx, LimitKeyGeneration(userID), redis_rate.PerMinute(perMinute))
	if errors.Is(err, limiter.ErrLimited) {
		return ErrRateLimited
	}
	return err
}

// GenerateMissions returns one catalog mission per difficulty for a user with
// a complete profile. Deterministic fallback missions keep their ids so the
// catalog insert is idempotent.
func (service *ServiceMission) GenerateMissions(ctx context.Context, userID string) ([]*models.Mission, error) {
	profile, err := service.serviceProfile.RequireCompleteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := service.allowGeneration(ctx, userID); err != nil {
		return nil, err
	}

	drafts, err := service.generator.GenerateMissionsForUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	missions := make([]*models.Mission, 0, len(drafts))
	for _, draft := range drafts {
		// Provider ids are not trusted; live drafts get a fresh id and stay
		// private to the user they were generated for.
		if draft.AIGenerated || draft.ID == "" {
			draft.ID = uuid.NewString()
		}
		if draft.AIGenerated {
			draft.OwnerID = userID
		}
		draft.CreatedAt = service.now()

		created, err := service.store.InsertMissionIfNotExists(ctx, draft)
		if err != nil {
			return nil, err
		}
		if !created {
			stored, err := service.store.FindMissionByID(ctx, draft.ID)
			if err != nil {
				return nil, err
			}
			draft = stored
		}
		missions = append(missions, draft)
	}

	service.logger.Info("missions generated",
		zap.String("user_id", userID),
		zap.Int("count", len(missions)),
		zap.Bool("live", service.generator.Enabled()))
	return missions, nil
}

// resolveMissionID maps a daily slot token to its catalog mission id. Any
// other id is returned as is.
func (service *ServiceMission) resolveMissionID(ctx context.Context, userID string, missionID string) (string, error) {
	slot, err := service.store.FindDailySlot(ctx, userID, missionID)
	if errors.Is(err, sql.ErrNoRows) {
		return missionID, nil
	}
	if err != nil {
		return "", err
	}
	return slot.MissionID, nil
}

func (service *ServiceMission) findMission(ctx context.Context, missionID string) (*models.Mission, error) {
	mission, err := service.store.FindMissionByID(ctx, missionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}
	return mission, err
}

func (service *ServiceMission) activeUserMissions(ctx context.Context, userID string) ([]*models.UserMission, error) {
	return service.store.FindUserMissions(ctx, &models.UserMissionFilter{
		UserID:   userID,
		Statuses: models.ActiveUserMissionStatuses,
	})
}

// StartMission makes the mission the user's single active mission and tries
// to generate its steps. Step generation never fails the start.
func (service *ServiceMission) StartMission(ctx context.Context, userID string, missionID string) (*models.UserMission, error) {
	unlock, err := service.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	resolvedID, err := service.resolveMissionID(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}

	mission, err := service.findMission(ctx, resolvedID)
	if err != nil {
		return nil, err
	}

	active, err := service.activeUserMissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		if active[0].MissionID == mission.ID {
			return nil, fmt.Errorf("%w: %s", ErrMissionAlreadyStarted, mission.ID)
		}
		return nil, fmt.Errorf("%w: %s", ErrMissionConflict, active[0].MissionID)
	}

	userMission := &models.UserMission{
		ID:        uuid.NewString(),
		UserID:    userID,
		MissionID: mission.ID,
		Status:    models.USER_MISSION_STATUS_ACTIVE,
		StartedAt: service.now(),
	}
	err = service.store.InsertUserMission(ctx, userMission)
	if errors.Is(err, datastore.ErrDuplicate) {
		return nil, ErrMissionConflict
	}
	if err != nil {
		return nil, err
	}

	service.logger.Info("mission started",
		zap.String("user_id", userID),
		zap.String("mission_id", mission.ID),
		zap.String("user_mission_id", userMission.ID))

	userMission.Mission = mission
	userMission.Steps = service.generateSteps(ctx, userMission, mission)
	return userMission, nil
}

// generateSteps charges the step fee, asks for three steps and persists them.
// Any failure is logged, the fee refunded and an empty plan returned.
func (service *ServiceMission) generateSteps(ctx context.Context, userMission *models.UserMission, mission *models.Mission) []*models.MissionStep {
	logger := service.logger.With(
		zap.String("user_id", userMission.UserID),
		zap.String("user_mission_id", userMission.ID))

	fee, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_STEP_GENERATION_FEE, DEFAULT_STEP_GENERATION_FEE)
	if err != nil {
		logger.Warn("step fee config unreadable", zap.Error(err))
	}

	if fee > 0 {
		if _, err := service.serviceGamification.SpendCoins(ctx, userMission.UserID, fee); err != nil {
			if errors.Is(err, ErrInsufficientCoins) {
				logger.Info("mission started without steps", zap.Error(err))
			} else {
				logger.Error("step fee charge failed", zap.Error(err))
			}
			return []*models.MissionStep{}
		}
	}

	refund := func(reason string, err error) []*models.MissionStep {
		logger.Error(reason, zap.Error(err))
		if fee > 0 {
			if _, err := service.serviceGamification.RefundCoins(ctx, userMission.UserID, fee); err != nil {
				logger.Error("step fee refund failed", zap.Error(err))
			}
		}
		return []*models.MissionStep{}
	}

	profile, err := service.serviceProfile.findProfile(ctx, userMission.UserID)
	if err != nil {
		return refund("profile lookup for steps failed", err)
	}

	steps, err := service.generator.GenerateMissionSteps(ctx, mission, profile)
	if err != nil {
		return refund("step generation failed", err)
	}

	now := service.now()
	for _, step := range steps {
		step.ID = uuid.NewString()
		step.UserMissionID = userMission.ID
		step.Status = models.STEP_STATUS_PENDING
		step.CreatedAt = now
	}
	if err := service.store.InsertMissionSteps(ctx, steps); err != nil {
		return refund("step persist failed", err)
	}
	return steps
}

func rewardsFor(mission *models.Mission) models.RewardBreakdown {
	coins := mission.CoinReward
	if coins <= 0 {
		coins = DefaultCoinReward[mission.Difficulty]
	}
	return models.RewardBreakdown{
		XP:        mission.XPReward,
		Coins:     coins,
		LifeScore: mission.LifeScoreImpact,
	}
}

// CompleteMission moves the user's active instance of the mission to
// completed, grants its rewards, bumps the streak and evaluates achievements.
func (service *ServiceMission) CompleteMission(ctx context.Context, userID string, missionID string) (*models.CompletionResult, error) {
	unlock, err := service.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	resolvedID, err := service.resolveMissionID(ctx, userID, missionID)
	if err != nil {
		return nil, err
	}

	active, err := service.activeUserMissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	var userMission *models.UserMission
	for _, um := range active {
		if um.MissionID == resolvedID {
			userMission = um
			break
		}
	}
	if userMission == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotStarted, missionID)
	}

	mission, err := service.findMission(ctx, userMission.MissionID)
	if err != nil {
		return nil, err
	}

	user, err := service.store.FindUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, err
	}

	rewards := rewardsFor(mission)
	levelBefore := user.Level
	service.serviceGamification.PrepareCompletion(user, rewards)

	completedAt := service.now()
	userMission.Status = models.USER_MISSION_STATUS_COMPLETED
	userMission.CompletedAt = &completedAt
	userMission.XPEarned = rewards.XP
	userMission.CoinsEarned = rewards.Coins
	userMission.LifeScoreChange = rewards.LifeScore

	swapped, err := service.store.CompleteUserMission(ctx, userMission, models.ActiveUserMissionStatuses, user)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotStarted, missionID)
	}
	if rewards.XP != 0 {
		service.serviceGamification.syncLeaderboard(ctx, user)
	}

	unlocked := []*models.Achievement{}
	stats, err := service.serviceAchievement.BuildStats(ctx, userID)
	if err != nil {
		service.logger.Error("stats for achievements failed", zap.String("user_id", userID), zap.Error(err))
	} else {
		unlocked, err = service.serviceAchievement.CheckAndUnlockAchievements(ctx, userID, stats)
		if err != nil {
			service.logger.Error("achievement evaluation failed", zap.String("user_id", userID), zap.Error(err))
			unlocked = []*models.Achievement{}
		}
	}

	after, err := service.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("mission completed",
		zap.String("user_id", userID),
		zap.String("mission_id", mission.ID),
		zap.Int("xp", rewards.XP),
		zap.Int("coins", rewards.Coins),
		zap.Int("lifescore", rewards.LifeScore),
		zap.Int("achievements", len(unlocked)))

	userMission.Mission = mission
	return &models.CompletionResult{
		UserMission:  userMission,
		Rewards:      rewards,
		XP:           after.XP,
		Level:        after.Level,
		LeveledUp:    after.Level > levelBefore,
		Coins:        after.Coins,
		LifeScore:    after.LifeScore,
		Streak:       after.CurrentStreak,
		Achievements: unlocked,
	}, nil
}

func sortByDifficulty(missions []*models.Mission) {
	rank := map[string]int{}
	for i, d := range models.Difficulties {
		rank[d] = i
	}
	sort.SliceStable(missions, func(i, j int) bool {
		return rank[missions[i].Difficulty] < rank[missions[j].Difficulty]
	})
}

func (service *ServiceMission) dailyMissions(ctx context.Context, slots []*models.DailySlot) ([]*models.Mission, error) {
	ids := make([]string, 0, len(slots))
	tokens := make(map[string]string, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.MissionID)
		tokens[slot.MissionID] = slot.Token
	}

	missions, err := service.store.FindMissionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range missions {
		m.SlotToken = tokens[m.ID]
	}
	sortByDifficulty(missions)
	return missions, nil
}

// ResetDailyMissions issues the user's three daily missions once per UTC day.
// Later calls on the same day return the stored set with AlreadyReset.
func (service *ServiceMission) ResetDailyMissions(ctx context.Context, userID string) (*models.DailyMissions, error) {
	unlock, err := service.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	day := service.now().UTC()
	today := dateOf(day)

	slots, err := service.store.FindDailySlots(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if len(slots) >= len(models.Difficulties) {
		missions, err := service.dailyMissions(ctx, slots)
		if err != nil {
			return nil, err
		}
		return &models.DailyMissions{Date: today, Missions: missions, AlreadyReset: true}, nil
	}

	if err := service.allowGeneration(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := service.serviceProfile.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := service.serviceAchievement.BuildStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	drafts, err := service.generator.GenerateAdaptiveMissions(ctx, profile, stats, day)
	if err != nil {
		return nil, err
	}

	filled := make(map[string]bool, len(slots))
	for _, slot := range slots {
		filled[slot.Difficulty] = true
	}

	for _, draft := range drafts {
		if filled[draft.Difficulty] {
			continue
		}

		draft.ID = uuid.NewString()
		draft.RecurrenceType = models.RECURRENCE_DAILY
		draft.OwnerID = userID
		draft.IsActive = true
		draft.CreatedAt = service.now()
		if _, err := service.store.InsertMissionIfNotExists(ctx, draft); err != nil {
			return nil, err
		}

		slot := &models.DailySlot{
			UserID:     userID,
			Token:      SlotToken(userID, today, draft.Difficulty),
			Date:       today,
			Difficulty: draft.Difficulty,
			MissionID:  draft.ID,
			CreatedAt:  service.now(),
		}
		err := service.store.InsertDailySlot(ctx, slot)
		if errors.Is(err, datastore.ErrDuplicate) {
			service.logger.Warn("daily slot already issued",
				zap.String("user_id", userID),
				zap.String("difficulty", draft.Difficulty))
			continue
		}
		if err != nil {
			return nil, err
		}
		filled[draft.Difficulty] = true
	}

	slots, err = service.store.FindDailySlots(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	missions, err := service.dailyMissions(ctx, slots)
	if err != nil {
		return nil, err
	}

	service.logger.Info("daily missions reset", zap.String("user_id", userID), zap.String("date", today))
	return &models.DailyMissions{Date: today, Missions: missions, AlreadyReset: false}, nil
}

// ListMissions returns today's daily missions followed by the active catalog.
func (service *ServiceMission) ListMissions(ctx context.Context, userID string) ([]*models.Mission, error) {
	slots, err := service.store.FindDailySlots(ctx, userID, dateOf(service.now()))
	if err != nil {
		return nil, err
	}
	daily, err := service.dailyMissions(ctx, slots)
	if err != nil {
		return nil, err
	}

	catalog, err := service.store.ListCatalogMissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return append(daily, catalog...), nil
}

func (service *ServiceMission) attach(ctx context.Context, userMission *models.UserMission) error {
	mission, err := service.store.FindMissionByID(ctx, userMission.MissionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	userMission.Mission = mission

	steps, err := service.store.FindMissionSteps(ctx, userMission.ID)
	if err != nil {
		return err
	}
	userMission.Steps = steps
	return nil
}

// GetActiveMission returns nil without error when the user has no active mission.
func (service *ServiceMission) GetActiveMission(ctx context.Context, userID string) (*models.UserMission, error) {
	active, err := service.activeUserMissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	userMission := active[0]
	if err := service.attach(ctx, userMission); err != nil {
		return nil, err
	}
	return userMission, nil
}

func (service *ServiceMission) ListUserMissions(ctx context.Context, userID string, status string) ([]*models.UserMission, error) {
	filter := &models.UserMissionFilter{UserID: userID}
	switch status {
	case "":
	case models.USER_MISSION_STATUS_ACTIVE:
		filter.Statuses = models.ActiveUserMissionStatuses
	case models.USER_MISSION_STATUS_COMPLETED, models.USER_MISSION_STATUS_FAILED:
		filter.Statuses = []string{status}
	default:
		return nil, errorx.Wrap(fmt.Errorf("unknown status: %s", status), errorx.Validation)
	}

	userMissions, err := service.store.FindUserMissions(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, um := range userMissions {
		if err := service.attach(ctx, um); err != nil {
			return nil, err
		}
	}
	return userMissions, nil
}

// CompleteStep marks one step of an active mission as done. Completing a step
// twice is a no-op.
func (service *ServiceMission) CompleteStep(ctx context.Context, userID string, userMissionID string, stepNumber int) (*models.MissionStep, error) {
	unlock, err := service.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	userMissions, err := service.store.FindUserMissions(ctx, &models.UserMissionFilter{ID: userMissionID, UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(userMissions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, userMissionID)
	}
	if !userMissions[0].IsActive() {
		return nil, fmt.Errorf("%w: %s", ErrMissionNotStarted, userMissionID)
	}

	steps, err := service.store.FindMissionSteps(ctx, userMissionID)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if step.StepNumber != stepNumber {
			continue
		}
		if step.Status == models.STEP_STATUS_COMPLETED {
			return step, nil
		}

		completedAt := service.now()
		step.Status = models.STEP_STATUS_COMPLETED
		step.CompletedAt = &completedAt
		if err := service.store.UpdateMissionStep(ctx, step); err != nil {
			return nil, err
		}
		return step, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrStepNotFound, stepNumber)
}

// GetDailyBrief is generated once per user and day.
func (service *ServiceMission) GetDailyBrief(ctx context.Context, userID string) (*models.DailyBrief, error) {
	day := service.now().UTC()
	return caching.UseCache(ctx, service.cache, DBKeyDailyBrief(userID, dateOf(day)), CACHE_TTL_1_DAY, func() (*models.DailyBrief, error) {
		profile, err := service.serviceProfile.findProfile(ctx, userID)
		if err != nil {
			return nil, err
		}

		stats, err := service.serviceAchievement.BuildStats(ctx, userID)
		if err != nil {
			return nil, err
		}

		return service.generator.GenerateDailyBrief(ctx, profile, stats, day)
	})
}
