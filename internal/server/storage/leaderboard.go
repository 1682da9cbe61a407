package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "bluff:player:stats:"
	leaderboardKey    = "bluff:leaderboard:score"
	dailyLeaderboard  = "bluff:leaderboard:daily:"
	weeklyLeaderboard = "bluff:leaderboard:weekly:"
)

// 排行榜类型
const (
	LeaderboardTotal  = "total"
	LeaderboardDaily  = "daily"
	LeaderboardWeekly = "weekly"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// 总计
	TotalGames int `json:"total_games"` // 总场次
	Wins       int `json:"wins"`        // 胜场
	Losses     int `json:"losses"`      // 败场

	// 质疑
	BluffCalls   int `json:"bluff_calls"`   // 发起质疑次数
	BluffsCaught int `json:"bluffs_caught"` // 质疑成功次数
	PilesTaken   int `json:"piles_taken"`   // 收走牌堆次数

	// 积分
	Score int `json:"score"`

	// 连胜/连败
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则
const (
	WinScore      = 20
	LoseScore     = -10
	CatchBonus    = 2 // 质疑成功
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardManager 排行榜管理器，nil 表示未启用
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

// maxUpdateRetries 统计被并发修改时的最大重试次数
const maxUpdateRetries = 100

// ErrStatsContention 重试耗尽仍未能写入统计
var ErrStatsContention = errors.New("玩家统计写入冲突，重试次数已用尽")

// statsReader *redis.Client 和 *redis.Tx 都满足
type statsReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	if lm == nil {
		return nil, nil
	}
	return readStats(ctx, lm.redis, playerID)
}

func readStats(ctx context.Context, r statsReader, playerID string) (*PlayerStats, error) {
	data, err := r.Get(ctx, playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("反序列化玩家统计失败: %w", err)
	}
	return &stats, nil
}

// update 在 WATCH 事务内读取、修改并写回玩家统计，ranked 时同一事务更新排行榜。
// 统计被其他连接并发修改时整体重试
func (lm *LeaderboardManager) update(ctx context.Context, playerID, playerName string, ranked bool, mutate func(*PlayerStats)) error {
	key := playerStatsKey + playerID

	txf := func(tx *redis.Tx) error {
		stats, err := readStats(ctx, tx, playerID)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &PlayerStats{
				PlayerID:  playerID,
				CreatedAt: lm.now().Unix(),
			}
		}
		stats.PlayerName = playerName
		mutate(stats)

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if ranked {
				lm.queueLeaderboard(ctx, pipe, stats)
			}
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := lm.redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrStatsContention
}

// updateWinLossStats 更新胜负统计和连胜/连败
func updateWinLossStats(stats *PlayerStats, isWinner bool) int {
	if isWinner {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}

	if stats.CurrentStreak > stats.MaxWinStreak {
		stats.MaxWinStreak = stats.CurrentStreak
	}

	if isWinner {
		return WinScore + calculateStreakBonus(stats.CurrentStreak)
	}
	return LoseScore
}

// calculateStreakBonus 计算连胜加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordGameResult 记录一局结果
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, playerID, playerName string, isWinner bool) error {
	if lm == nil {
		return nil
	}

	return lm.update(ctx, playerID, playerName, true, func(stats *PlayerStats) {
		stats.TotalGames++
		stats.LastPlayedAt = lm.now().Unix()
		stats.Score = max(0, stats.Score+updateWinLossStats(stats, isWinner))
	})
}

// RecordBluffCall 记录一次质疑，caught 表示质疑成功
func (lm *LeaderboardManager) RecordBluffCall(ctx context.Context, callerID, callerName string, caught bool) error {
	if lm == nil {
		return nil
	}

	return lm.update(ctx, callerID, callerName, true, func(stats *PlayerStats) {
		stats.BluffCalls++
		if caught {
			stats.BluffsCaught++
			stats.Score += CatchBonus
		} else {
			stats.PilesTaken++
		}
	})
}

// RecordPileTaken 记录被质疑成功后收走牌堆
func (lm *LeaderboardManager) RecordPileTaken(ctx context.Context, playerID, playerName string) error {
	if lm == nil {
		return nil
	}

	return lm.update(ctx, playerID, playerName, false, func(stats *PlayerStats) {
		stats.PilesTaken++
	})
}

func (lm *LeaderboardManager) dailyKey() string {
	return dailyLeaderboard + lm.now().Format("2006-01-02")
}

func (lm *LeaderboardManager) weeklyKey() string {
	year, week := lm.now().ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
}

// UpdateLeaderboard 更新排行榜
func (lm *LeaderboardManager) UpdateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	_, err := lm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lm.queueLeaderboard(ctx, pipe, stats)
		return nil
	})
	return err
}

// queueLeaderboard 把总榜、日榜和周榜的更新加入事务
func (lm *LeaderboardManager) queueLeaderboard(ctx context.Context, pipe redis.Pipeliner, stats *PlayerStats) {
	member := redis.Z{Score: float64(stats.Score), Member: stats.PlayerID}
	pipe.ZAdd(ctx, leaderboardKey, member)

	dailyKey := lm.dailyKey()
	pipe.ZAdd(ctx, dailyKey, member)
	pipe.Expire(ctx, dailyKey, 48*time.Hour)

	weeklyKey := lm.weeklyKey()
	pipe.ZAdd(ctx, weeklyKey, member)
	pipe.Expire(ctx, weeklyKey, 8*24*time.Hour)
}

// GetLeaderboard 获取排行榜
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, leaderboardType string, offset, limit int) ([]*LeaderboardEntry, error) {
	if lm == nil || limit <= 0 {
		return nil, nil
	}

	key := leaderboardKey
	switch leaderboardType {
	case LeaderboardDaily:
		key = lm.dailyKey()
	case LeaderboardWeekly:
		key = lm.weeklyKey()
	}

	// 从高到低
	results, err := lm.redis.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}

		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}

		entries = append(entries, &LeaderboardEntry{
			Rank:       offset + i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    winRate,
		})
	}

	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	if lm == nil {
		return -1, nil
	}

	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
