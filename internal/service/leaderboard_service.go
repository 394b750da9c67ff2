package service

import (
	"context"
	"fmt"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"strconv"

	"github.com/go-redis/redis/v8"
)

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	UserID     uint    `json:"userId"`
	Percentage float64 `json:"percentage"`
}

// Leaderboard 每个用户在每张试卷上的最好成绩排名
type Leaderboard interface {
	Record(ctx context.Context, result *model.Result) error
	Top(ctx context.Context, testID uint, limit int) ([]LeaderboardEntry, error)
}

// NewLeaderboard Redis 可用时使用有序集合，否则直接聚合 results 表
func NewLeaderboard(rdb *redis.Client, results *repository.ResultRepository) Leaderboard {
	if rdb != nil {
		return &RedisLeaderboard{Client: rdb}
	}
	return &SQLLeaderboard{Results: results}
}

type RedisLeaderboard struct {
	Client *redis.Client
}

func leaderboardKey(testID uint) string {
	return fmt.Sprintf("quiz:leaderboard:%d", testID)
}

// Record 使用 ZADD GT，只有比已有成绩更高时才更新
func (l *RedisLeaderboard) Record(ctx context.Context, result *model.Result) error {
	return l.Client.ZAddArgs(ctx, leaderboardKey(result.TestID), redis.ZAddArgs{
		GT: true,
		Members: []redis.Z{{
			Score:  result.Percentage,
			Member: strconv.FormatUint(uint64(result.UserID), 10),
		}},
	}).Err()
}

func (l *RedisLeaderboard) Top(ctx context.Context, testID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	zs, err := l.Client.ZRevRangeWithScores(ctx, leaderboardKey(testID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			UserID:     uint(id),
			Percentage: z.Score,
		})
	}
	return entries, nil
}

type SQLLeaderboard struct {
	Results *repository.ResultRepository
}

// Record 成绩已在评分事务中落库，无需额外写入
func (l *SQLLeaderboard) Record(ctx context.Context, result *model.Result) error {
	return nil
}

func (l *SQLLeaderboard) Top(ctx context.Context, testID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	rows, err := l.Results.TopByTest(ctx, testID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Rank:       i + 1,
			UserID:     row.UserID,
			Percentage: row.Percentage,
		}
	}
	return entries, nil
}
