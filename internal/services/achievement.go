package services

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
)

// CheckCondition compares the stat named by the achievement's condition type
// against its threshold.
func CheckCondition(achievement *models.Achievement, stats *models.UserStats) bool {
	if achievement == nil || stats == nil {
		return false
	}

	var value int
	switch achievement.ConditionType {
	case models.CONDITION_MISSIONS_COMPLETED:
		value = stats.MissionsCompleted
	case models.CONDITION_STREAK_COUNT:
		value = stats.CurrentStreak
	case models.CONDITION_LIFESCORE_MILESTONE:
		value = stats.LifeScore
	case models.CONDITION_XP_MILESTONE:
		value = stats.XP
	case models.CONDITION_COINS_EARNED:
		value = stats.CoinsEarned
	case models.CONDITION_DAYS_ACTIVE:
		value = stats.DaysActive
	case models.CONDITION_SCENARIOS_COMPLETED:
		value = stats.ScenariosCompleted
	case models.CONDITION_REWARDS_REDEEMED:
		value = stats.RewardsRedeemed
	default:
		return false
	}
	return value >= achievement.ConditionValue
}

type ServiceAchievement struct {
	container *do.Injector
	store     datastore.Store
	cache     caching.Cache
	logger    *zap.Logger
	now       func() time.Time

	serviceGamification *ServiceGamification
}

func NewServiceAchievement(container *do.Injector) (*ServiceAchievement, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAchievement{container, store, cache, invokeLogger(container), invokeClock(container), serviceGamification}, nil
}

type UserAchievementView struct {
	*models.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
}

func (service *ServiceAchievement) ListActiveAchievements(ctx context.Context) ([]*models.Achievement, error) {
	return caching.UseCache(ctx, service.cache, DBKeyActiveAchievements(), CACHE_TTL_5_MINS, func() ([]*models.Achievement, error) {
		return service.store.ListActiveAchievements(ctx)
	})
}

// SeedDefaults upserts the built in achievement catalog.
func (service *ServiceAchievement) SeedDefaults(ctx context.Context) error {
	for i := range models.DefaultAchievements {
		achievement := models.DefaultAchievements[i]
		if err := service.store.UpsertAchievement(ctx, &achievement); err != nil {
			return err
		}
	}
	return service.cache.Delete(ctx, DBKeyActiveAchievements())
}

func (service *ServiceAchievement) BuildStats(ctx context.Context, userID string) (*models.UserStats, error) {
	user, err := service.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed, err := service.store.CountCompletedUserMissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	days, err := service.store.CountActiveDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserStats{
		MissionsCompleted:  completed,
		CurrentStreak:      user.CurrentStreak,
		LifeScore:          user.LifeScore,
		XP:                 user.XP,
		CoinsEarned:        user.TotalCoinsEarned,
		DaysActive:         days,
		ScenariosCompleted: user.ScenariosCompleted,
		RewardsRedeemed:    user.RewardsRedeemed,
	}, nil
}

// CheckAndUnlockAchievements unlocks every active achievement the stats now
// satisfy and grants its rewards. The unlock row is written before rewards, so
// a second call with the same stats grants nothing. A failure on one
// achievement is logged and does not stop the others.
func (service *ServiceAchievement) CheckAndUnlockAchievements(ctx context.Context, userID string, stats *models.UserStats) ([]*models.Achievement, error) {
	achievements, err := service.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := service.store.FindUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(owned))
	for _, ua := range owned {
		earned[ua.AchievementID] = true
	}

	unlocked := []*models.Achievement{}
	for _, achievement := range achievements {
		if earned[achievement.ID] || !CheckCondition(achievement, stats) {
			continue
		}

		err := service.store.InsertUserAchievement(ctx, &models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			UnlockedAt:    service.now(),
		})
		if errors.Is(err, datastore.ErrDuplicate) {
			continue
		}
		if err != nil {
			service.logger.Error("achievement unlock failed",
				zap.String("user_id", userID),
				zap.String("achievement_id", achievement.ID),
				zap.Error(err))
			continue
		}

		_, err = service.serviceGamification.ApplyRewards(ctx, userID, models.RewardBreakdown{
			XP:        achievement.XPReward,
			Coins:     achievement.CoinReward,
			LifeScore: achievement.LifeScoreBoost,
		})
		if err != nil {
			service.logger.Error("achievement reward failed",
				zap.String("user_id", userID),
				zap.String("achievement_id", achievement.ID),
				zap.Error(err))
			continue
		}

		service.logger.Info("achievement unlocked",
			zap.String("user_id", userID),
			zap.String("achievement_id", achievement.ID))
		unlocked = append(unlocked, achievement)
	}

	return unlocked, nil
}

func (service *ServiceAchievement) ListUserAchievements(ctx context.Context, userID string) ([]*UserAchievementView, error) {
	achievements, err := service.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}

	owned, err := service.store.FindUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(owned))
	for _, ua := range owned {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	views := make([]*UserAchievementView, 0, len(achievements))
	for _, achievement := range achievements {
		view := &UserAchievementView{Achievement: achievement}
		if at, ok := unlockedAt[achievement.ID]; ok {
			view.Unlocked = true
			view.UnlockedAt = &at
		}
		views = append(views, view)
	}
	return views, nil
}
