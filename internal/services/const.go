package services

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"lifequest/internal/models"
)

const (
	CONFIG_STEP_GENERATION_FEE               = "STEP_GENERATION_FEE"
	CONFIG_GENERATION_RATE_LIMIT_PER_MINUTE  = "GENERATION_RATE_LIMIT_PER_MINUTE"
	CONFIG_XP_LEADERBOARD_LIMIT              = "XP_LEADERBOARD_LIMIT"
	CONFIG_CRONJOB_TIME_DAILY_RESET          = "CRONJOB_TIME_DAILY_RESET"
	SERVER_MODE_DEVELOPMENT                  = "development"
	SERVER_MODE_PRODUCTION                   = "production"
	SERVER_MODE_DEBUG                        = "debug"
	DEFAULT_STEP_GENERATION_FEE              = 5
	DEFAULT_GENERATION_RATE_LIMIT_PER_MINUTE = 10
	DEFAULT_CRONJOB_TIME_DAILY_RESET         = "5 0 * * *"

	LEADERBOARD_XP               = "xp"
	XP_LEADERBOARD_DEFAULT_LIMIT = 20
	XP_LEADERBOARD_MAX_LIMIT     = 100

	CACHE_TTL_1_MIN  = 1 * time.Minute
	CACHE_TTL_5_MINS = 5 * time.Minute
	CACHE_TTL_1_HOUR = 1 * time.Hour
	CACHE_TTL_1_DAY  = 24 * time.Hour

	MAX_SCENARIO_LENGTH = 500

	DATE_FORMAT = "2006-01-02"
)

// DefaultCoinReward applies when a catalog mission carries no coin reward.
var DefaultCoinReward = map[string]int{
	models.DIFFICULTY_EASY:   10,
	models.DIFFICULTY_MEDIUM: 20,
	models.DIFFICULTY_HARD:   30,
}

var DefaultConfigs = []models.Config{
	{Key: CONFIG_STEP_GENERATION_FEE, Value: fmt.Sprint(DEFAULT_STEP_GENERATION_FEE), Description: "coins charged to generate the steps of a started mission"},
	{Key: CONFIG_GENERATION_RATE_LIMIT_PER_MINUTE, Value: fmt.Sprint(DEFAULT_GENERATION_RATE_LIMIT_PER_MINUTE), Description: "generation requests a user may make per minute"},
	{Key: CONFIG_XP_LEADERBOARD_LIMIT, Value: fmt.Sprint(XP_LEADERBOARD_DEFAULT_LIMIT), Description: "default size of the xp leaderboard"},
	{Key: CONFIG_CRONJOB_TIME_DAILY_RESET, Value: DEFAULT_CRONJOB_TIME_DAILY_RESET, Description: "cron spec of the daily mission reset job"},
}

func LockKeyUserMission(userID string) string {
	return fmt.Sprintf("lock:user-mission:%s", userID)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyActiveAchievements() string {
	return "achievement:active"
}

func DBKeyDailyBrief(userID string, date string) string {
	return fmt.Sprintf("daily_brief:%s:%s", userID, date)
}

func LimitKeyGeneration(userID string) string {
	return fmt.Sprintf("limit:generation:%s", userID)
}

// SlotToken is the client facing id of a daily mission slot.
func SlotToken(userID string, date string, difficulty string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return fmt.Sprintf("daily-%s-%s-%08x", date, difficulty, h.Sum32())
}

func dateOf(t time.Time) string {
	return t.UTC().Format(DATE_FORMAT)
}
