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
	// Redis key 前缀
	roomKeyPrefix = "bluff:room:"

	// 房间镜像过期时间
	roomExpiration = 24 * time.Hour
)

// RoomData 房间快照（用于 Redis 镜像，仅供观测，不用于恢复）
type RoomData struct {
	Code                string       `json:"code"`
	State               string       `json:"state"`
	HostID              string       `json:"host_id"`
	Players             []PlayerData `json:"players"`
	CurrentPlayer       string       `json:"current_player,omitempty"`
	CurrentClaimedValue string       `json:"current_claimed_value,omitempty"`
	LastPlayerID        string       `json:"last_player_id,omitempty"`
	PileCount           int          `json:"pile_count"`
	CreatedAt           int64        `json:"created_at"`
	LastActivity        int64        `json:"last_activity"`
}

// PlayerData 玩家数据（不含手牌）
type PlayerData struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CardCount int    `json:"card_count"`
}

// RedisStore Redis 存储，nil 表示未启用
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if rs == nil || data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+data.Code, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	if rs == nil {
		return nil, nil
	}

	data, err := rs.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	if rs == nil {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+code).Err()
}

// CountRooms 统计镜像中的房间数
func (rs *RedisStore) CountRooms(ctx context.Context) (int, error) {
	if rs == nil {
		return 0, nil
	}

	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, roomKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}
