package room

import (
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/server/storage"
)

// PlayerView 玩家快照
type PlayerView struct {
	ID        string
	Username  string
	SocketRef string
	Hand      []card.Card
}

// Snapshot 房间快照，脱离锁后用于广播
type Snapshot struct {
	Code                string
	State               State
	Players             []PlayerView
	CurrentPile         []card.Card
	CurrentClaimedValue card.Value
	CurrentPlayer       string
	LastPlayerID        string
	Version             uint64
}

// Snapshot 深拷贝房间状态，调用方持有房间锁
func (r *Room) Snapshot() Snapshot {
	s := Snapshot{
		Code:                r.Code,
		State:               r.State,
		Players:             make([]PlayerView, len(r.Players)),
		CurrentPile:         card.Clone(r.CurrentPile),
		CurrentClaimedValue: r.CurrentClaimedValue,
		CurrentPlayer:       r.CurrentPlayer,
		LastPlayerID:        r.LastPlayerID,
		Version:             r.Version,
	}
	for i, p := range r.Players {
		s.Players[i] = PlayerView{
			ID:        p.ID,
			Username:  p.Username,
			SocketRef: p.SocketRef,
			Hand:      card.Clone(p.Hand),
		}
	}
	return s
}

// GameStarted 是否已开局
func (s Snapshot) GameStarted() bool {
	return s.State != StateLobby
}

// ToRoomData 转换为 Redis 镜像数据，调用方持有房间锁
func (r *Room) ToRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Code:                r.Code,
		State:               r.State.String(),
		HostID:              r.HostID,
		Players:             make([]storage.PlayerData, 0, len(r.Players)),
		CurrentPlayer:       r.CurrentPlayer,
		CurrentClaimedValue: string(r.CurrentClaimedValue),
		LastPlayerID:        r.LastPlayerID,
		PileCount:           len(r.CurrentPile),
		CreatedAt:           r.CreatedAt.Unix(),
		LastActivity:        r.LastActivity.Unix(),
	}

	for _, p := range r.Players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:        p.ID,
			Username:  p.Username,
			CardCount: len(p.Hand),
		})
	}

	return data
}
