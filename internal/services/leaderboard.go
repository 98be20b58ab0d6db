package services

import (
	"context"

	"github.com/samber/do"

	"lifequest/internal/interfaces"
	"lifequest/internal/models"
)

type ServiceLeaderboard struct {
	container   *do.Injector
	leaderboard interfaces.Leaderboard

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	leaderboard, err := do.Invoke[interfaces.Leaderboard](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, leaderboard, serviceConfig}, nil
}

// GetXPLeaderboard returns the top users by xp. A non positive limit uses the
// configured default; limits are capped at XP_LEADERBOARD_MAX_LIMIT.
func (service *ServiceLeaderboard) GetXPLeaderboard(ctx context.Context, user *models.User, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit, _ = service.serviceConfig.GetIntConfig(ctx, CONFIG_XP_LEADERBOARD_LIMIT, XP_LEADERBOARD_DEFAULT_LIMIT)
	}
	if limit > XP_LEADERBOARD_MAX_LIMIT {
		limit = XP_LEADERBOARD_MAX_LIMIT
	}

	items, err := service.leaderboard.Top(ctx, LEADERBOARD_XP, limit)
	if err != nil {
		return nil, err
	}

	me, err := service.leaderboard.Rank(ctx, LEADERBOARD_XP, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardResponse{Items: items, Me: me}, nil
}
