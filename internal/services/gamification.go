package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/interfaces"
	"lifequest/internal/models"
	"lifequest/internal/pkg/rewardmath"
)

// ServiceGamification is the only writer of user xp, level, coins, lifescore
// and streaks. Callers serialize per user with LockKeyUserMission.
type ServiceGamification struct {
	container   *do.Injector
	store       datastore.Store
	leaderboard interfaces.Leaderboard
	logger      *zap.Logger
	now         func() time.Time
}

func NewServiceGamification(container *do.Injector) (*ServiceGamification, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	leaderboard, err := do.Invoke[interfaces.Leaderboard](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGamification{container, store, leaderboard, invokeLogger(container), invokeClock(container)}, nil
}

type XPAward struct {
	XP        int  `json:"xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// RewardOutcome is the user state after a set of rewards was applied.
type RewardOutcome struct {
	User      *models.User
	LeveledUp bool
}

func (service *ServiceGamification) mutateUser(ctx context.Context, userID string, fn func(user *models.User) error) (*models.User, error) {
	user, err := service.store.FindUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	if err := service.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (service *ServiceGamification) syncLeaderboard(ctx context.Context, user *models.User) {
	err := service.leaderboard.SetScore(ctx, LEADERBOARD_XP, user.ID, float64(user.XP))
	if err != nil {
		service.logger.Warn("leaderboard update failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func addXP(user *models.User, amount int) bool {
	before := user.Level
	user.XP += amount
	if user.XP < 0 {
		user.XP = 0
	}
	user.Level = rewardmath.LevelFromXP(user.XP)
	return user.Level > before
}

func addCoins(user *models.User, amount int) {
	user.Coins += amount
	if user.Coins < 0 {
		user.Coins = 0
	}
	if amount > 0 {
		user.TotalCoinsEarned += amount
	}
}

func (service *ServiceGamification) AwardXP(ctx context.Context, userID string, amount int) (*XPAward, error) {
	var leveledUp bool
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		leveledUp = addXP(user, amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.syncLeaderboard(ctx, user)
	return &XPAward{XP: user.XP, Level: user.Level, LeveledUp: leveledUp}, nil
}

func (service *ServiceGamification) AwardCoins(ctx context.Context, userID string, amount int) (int, error) {
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		addCoins(user, amount)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

// SpendCoins fails with ErrInsufficientCoins and leaves the balance untouched
// when the user cannot pay.
func (service *ServiceGamification) SpendCoins(ctx context.Context, userID string, amount int) (int, error) {
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		if user.Coins < amount {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientCoins, user.Coins, amount)
		}
		user.Coins -= amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

// RefundCoins returns spent coins without counting them as earned.
func (service *ServiceGamification) RefundCoins(ctx context.Context, userID string, amount int) (int, error) {
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		user.Coins += amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

func (service *ServiceGamification) UpdateLifeScore(ctx context.Context, userID string, delta int) (int, error) {
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		user.LifeScore = rewardmath.ApplyLifeScoreDelta(user.LifeScore, delta)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.LifeScore, nil
}

func bumpStreak(user *models.User, increment bool, now time.Time) {
	if !increment {
		user.CurrentStreak = 0
		return
	}

	switch user.LastActiveDate {
	case dateOf(now):
		if user.CurrentStreak == 0 {
			user.CurrentStreak = 1
		}
	case dateOf(now.AddDate(0, 0, -1)):
		user.CurrentStreak++
	default:
		user.CurrentStreak = 1
	}
	user.LastActiveDate = dateOf(now)
	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
}

func applyRewards(user *models.User, rewards models.RewardBreakdown) bool {
	leveledUp := addXP(user, rewards.XP)
	addCoins(user, rewards.Coins)
	user.LifeScore = rewardmath.ApplyLifeScoreDelta(user.LifeScore, rewards.LifeScore)
	return leveledUp
}

// UpdateStreak counts at most once per UTC day. A gap of more than one day
// restarts the streak at 1; increment=false resets it to 0.
func (service *ServiceGamification) UpdateStreak(ctx context.Context, userID string, increment bool) (int, error) {
	now := service.now()
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		bumpStreak(user, increment, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.CurrentStreak, nil
}

// ApplyRewards grants xp, coins and a lifescore delta in a single write.
func (service *ServiceGamification) ApplyRewards(ctx context.Context, userID string, rewards models.RewardBreakdown) (*RewardOutcome, error) {
	var leveledUp bool
	user, err := service.mutateUser(ctx, userID, func(user *models.User) error {
		leveledUp = applyRewards(user, rewards)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rewards.XP != 0 {
		service.syncLeaderboard(ctx, user)
	}
	return &RewardOutcome{User: user, LeveledUp: leveledUp}, nil
}

// PrepareCompletion applies mission rewards and the streak bump to user in
// memory only. The caller persists user together with the completion snapshot.
func (service *ServiceGamification) PrepareCompletion(user *models.User, rewards models.RewardBreakdown) bool {
	leveledUp := applyRewards(user, rewards)
	bumpStreak(user, true, service.now())
	return leveledUp
}

func (service *ServiceGamification) RecordScenario(ctx context.Context, userID string) (*models.User, error) {
	return service.mutateUser(ctx, userID, func(user *models.User) error {
		user.ScenariosCompleted++
		return nil
	})
}
