package memory_store

import (
	"context"
	"sort"
	"sync"

	"lifequest/internal/models"
)

// Leaderboard mirrors redis sorted set ordering: score descending, ties broken
// by member descending.
type Leaderboard struct {
	mu     sync.RWMutex
	boards map[string]map[string]float64
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{boards: map[string]map[string]float64{}}
}

func (l *Leaderboard) SetScore(ctx context.Context, board string, userID string, score float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	scores, ok := l.boards[board]
	if !ok {
		scores = map[string]float64{}
		l.boards[board] = scores
	}
	scores[userID] = score
	return nil
}

func (l *Leaderboard) ranked(board string) []*models.LeaderboardItem {
	scores := l.boards[board]
	items := make([]*models.LeaderboardItem, 0, len(scores))
	for userID, score := range scores {
		items = append(items, &models.LeaderboardItem{UserId: userID, Score: score})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score == items[j].Score {
			return items[i].UserId > items[j].UserId
		}
		return items[i].Score > items[j].Score
	})
	for i, item := range items {
		item.Rank = i + 1
	}
	return items
}

func (l *Leaderboard) Top(ctx context.Context, board string, limit int) ([]*models.LeaderboardItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items := l.ranked(board)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (l *Leaderboard) Rank(ctx context.Context, board string, userID string) (*models.LeaderboardItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, item := range l.ranked(board) {
		if item.UserId == userID {
			return item, nil
		}
	}
	return &models.LeaderboardItem{UserId: userID}, nil
}
