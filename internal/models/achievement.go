package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CONDITION_MISSIONS_COMPLETED  = "missions_completed"
	CONDITION_STREAK_COUNT        = "streak_count"
	CONDITION_LIFESCORE_MILESTONE = "lifescore_milestone"
	CONDITION_XP_MILESTONE        = "xp_milestone"
	CONDITION_COINS_EARNED        = "coins_earned"
	CONDITION_DAYS_ACTIVE         = "days_active"
	CONDITION_SCENARIOS_COMPLETED = "scenarios_completed"
	CONDITION_REWARDS_REDEEMED    = "rewards_redeemed"
)

type Achievement struct {
	bun.BaseModel  `bun:"table:achievement"`
	ID             string    `bun:"id,pk" json:"id"`
	Name           string    `bun:"name" json:"name"`
	Description    string    `bun:"description" json:"description"`
	Icon           string    `bun:"icon" json:"icon"`
	ConditionType  string    `bun:"condition_type" json:"condition_type"`
	ConditionValue int       `bun:"condition_value" json:"condition_value"`
	XPReward       int       `bun:"xp_reward" json:"xp_reward"`
	CoinReward     int       `bun:"coin_reward" json:"coin_reward"`
	LifeScoreBoost int       `bun:"lifescore_boost" json:"lifescore_boost"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievement"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	AchievementID string    `bun:"achievement_id" json:"achievement_id"`
	UnlockedAt    time.Time `bun:"unlocked_at" json:"unlocked_at"`
}

// UserStats is the snapshot achievement conditions are evaluated against.
type UserStats struct {
	MissionsCompleted  int `json:"missions_completed"`
	CurrentStreak      int `json:"current_streak"`
	LifeScore          int `json:"lifescore"`
	XP                 int `json:"xp"`
	CoinsEarned        int `json:"coins_earned"`
	DaysActive         int `json:"days_active"`
	ScenariosCompleted int `json:"scenarios_completed"`
	RewardsRedeemed    int `json:"rewards_redeemed"`
}

// DefaultAchievements is the catalog written by the seed command.
var DefaultAchievements = []Achievement{
	{ID: "first-mission", Name: "First Steps", Description: "Complete your first mission", Icon: "🎯", ConditionType: CONDITION_MISSIONS_COMPLETED, ConditionValue: 1, XPReward: 25, CoinReward: 10, LifeScoreBoost: 1, IsActive: true},
	{ID: "mission-10", Name: "Committed", Description: "Complete 10 missions", Icon: "🏅", ConditionType: CONDITION_MISSIONS_COMPLETED, ConditionValue: 10, XPReward: 100, CoinReward: 50, LifeScoreBoost: 3, IsActive: true},
	{ID: "mission-50", Name: "Guardian", Description: "Complete 50 missions", Icon: "🛡️", ConditionType: CONDITION_MISSIONS_COMPLETED, ConditionValue: 50, XPReward: 300, CoinReward: 150, LifeScoreBoost: 5, IsActive: true},
	{ID: "streak-3", Name: "On a Roll", Description: "Keep a 3 day streak", Icon: "🔥", ConditionType: CONDITION_STREAK_COUNT, ConditionValue: 3, XPReward: 30, CoinReward: 15, IsActive: true},
	{ID: "streak-7", Name: "Week Warrior", Description: "Keep a 7 day streak", Icon: "📅", ConditionType: CONDITION_STREAK_COUNT, ConditionValue: 7, XPReward: 75, CoinReward: 35, LifeScoreBoost: 2, IsActive: true},
	{ID: "lifescore-75", Name: "Thriving", Description: "Reach a LifeScore of 75", Icon: "💚", ConditionType: CONDITION_LIFESCORE_MILESTONE, ConditionValue: 75, XPReward: 50, CoinReward: 25, IsActive: true},
	{ID: "xp-500", Name: "Rising Star", Description: "Earn 500 XP", Icon: "⭐", ConditionType: CONDITION_XP_MILESTONE, ConditionValue: 500, XPReward: 50, CoinReward: 25, IsActive: true},
	{ID: "coins-200", Name: "Saver", Description: "Earn 200 coins", Icon: "🪙", ConditionType: CONDITION_COINS_EARNED, ConditionValue: 200, XPReward: 40, LifeScoreBoost: 1, IsActive: true},
	{ID: "days-active-14", Name: "Regular", Description: "Be active on 14 different days", Icon: "🗓️", ConditionType: CONDITION_DAYS_ACTIVE, ConditionValue: 14, XPReward: 80, CoinReward: 40, LifeScoreBoost: 2, IsActive: true},
	{ID: "scenario-5", Name: "Forecaster", Description: "Explore 5 life scenarios", Icon: "🔮", ConditionType: CONDITION_SCENARIOS_COMPLETED, ConditionValue: 5, XPReward: 40, CoinReward: 20, IsActive: true},
	{ID: "rewards-1", Name: "Treat Yourself", Description: "Redeem your first reward", Icon: "🎁", ConditionType: CONDITION_REWARDS_REDEEMED, ConditionValue: 1, XPReward: 20, IsActive: true},
}
