package redis_store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"lifequest/internal/models"
)

func dbKeyLeaderboard(board string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(board))
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, board string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(board), redis.Z{
		Score:  v.Score,
		Member: v.UserId,
	}).Err()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, board string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(board)).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, board string, num int) ([]*models.LeaderboardItem, error) {
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(board), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*models.LeaderboardItem, 0, len(items))
	for i, item := range items {
		member, _ := item.Member.(string)
		results = append(results, &models.LeaderboardItem{
			UserId: member,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}
	return results, nil
}

func GetRankWithScore(ctx context.Context, cmd redis.Cmdable, board string, userID string) (*models.LeaderboardItem, error) {
	rank, err := cmd.ZRevRankWithScore(ctx, dbKeyLeaderboard(board), userID).Result()
	if errors.Is(err, redis.Nil) {
		return &models.LeaderboardItem{UserId: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.LeaderboardItem{UserId: userID, Score: rank.Score, Rank: int(rank.Rank) + 1}, nil
}

// Leaderboard serves sorted set rankings from redis.
type Leaderboard struct {
	client redis.UniversalClient
}

func NewLeaderboard(client redis.UniversalClient) *Leaderboard {
	return &Leaderboard{client}
}

func (l *Leaderboard) SetScore(ctx context.Context, board string, userID string, score float64) error {
	_, err := SetLeaderboard(ctx, l.client, board, &models.LeaderboardItem{UserId: userID, Score: score})
	return err
}

func (l *Leaderboard) Top(ctx context.Context, board string, limit int) ([]*models.LeaderboardItem, error) {
	return GetLeaderboard(ctx, l.client, board, limit)
}

func (l *Leaderboard) Rank(ctx context.Context, board string, userID string) (*models.LeaderboardItem, error) {
	return GetRankWithScore(ctx, l.client, board, userID)
}
