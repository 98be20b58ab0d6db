package interfaces

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"

	"lifequest/internal/models"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Locker serializes work on a key across requests. The returned func releases
// the lock.
type Locker interface {
	Obtain(ctx context.Context, key string) (func(), error)
}

type Leaderboard interface {
	SetScore(ctx context.Context, board string, userID string, score float64) error
	Top(ctx context.Context, board string, limit int) ([]*models.LeaderboardItem, error)
	Rank(ctx context.Context, board string, userID string) (*models.LeaderboardItem, error)
}

// Generator is the content generation contract used by the mission service.
type Generator interface {
	Enabled() bool
	GenerateMissionsForUser(ctx context.Context, profile *models.Profile) ([]*models.Mission, error)
	GenerateAdaptiveMissions(ctx context.Context, profile *models.Profile, stats *models.UserStats, day time.Time) ([]*models.Mission, error)
	GenerateMissionSteps(ctx context.Context, mission *models.Mission, profile *models.Profile) ([]*models.MissionStep, error)
	GenerateDailyBrief(ctx context.Context, profile *models.Profile, stats *models.UserStats, day time.Time) (*models.DailyBrief, error)
	PredictScenarioOutcome(ctx context.Context, profile *models.Profile, scenario string) (*models.ScenarioPrediction, error)
}
