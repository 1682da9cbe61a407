//go:build !production

package room

import (
	"time"

	"github.com/palemoky/bluff/internal/game/card"
)

// NewTestRoom 创建测试用的 Room，玩家手牌为空
func NewTestRoom(code string, playerIDs ...string) *Room {
	now := time.Now()
	r := &Room{
		Code:         code,
		MaxPlayers:   DefaultMaxPlayers,
		State:        StateLobby,
		CreatedAt:    now,
		LastActivity: now,
	}
	if len(playerIDs) > r.MaxPlayers {
		r.MaxPlayers = len(playerIDs)
	}
	for _, id := range playerIDs {
		r.Players = append(r.Players, &Player{
			ID:        id,
			Username:  "user-" + id,
			SocketRef: "sock-" + id,
			Hand:      []card.Card{},
		})
	}
	return r
}

// AddRoomForTest 添加房间用于测试
func (m *Manager) AddRoomForTest(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.Code] = r
}
