package room

import (
	"sync"
	"time"

	"github.com/palemoky/bluff/internal/game/card"
)

const (
	roomCodeLength = 6                  // 房间号长度
	roomCodeChars  = "0123456789ABCDEF" // 房间号字符集

	DefaultMaxPlayers = 2
)

// Player 房间中的玩家
type Player struct {
	ID               string      // 客户端提供的稳定 ID
	Username         string      // 房间内唯一
	SocketRef        string      // 当前连接 ID，重连时更新
	Hand             []card.Card // 手牌
	InitialCardCount int         // 发牌后的手牌数
}

// Room 游戏房间
//
// 字段只能在 Manager.WithRoom 的回调中读写。
type Room struct {
	Code       string    // 房间号
	HostID     string    // 创建者
	MaxPlayers int       // 人数上限
	CreatedAt  time.Time // 创建时间

	Players             []*Player   // 按加入顺序
	State               State       // 房间状态
	CurrentPile         []card.Card // 牌堆，对局中只追加
	CurrentClaimedValue card.Value  // 当前声明的点数，空表示无声明
	CurrentClaimedCards []card.Card // 声明对应的实际出牌
	CurrentPlayer       string      // 当前回合玩家 ID，开局前为空
	LastPlayerID        string      // 当前声明的出牌者
	LastActivity        time.Time   // 最后活跃时间
	Version             uint64      // 每次进入房间作用域递增，随快照下发

	mu     sync.Mutex
	closed bool
}

// GameStarted 是否已开局
func (r *Room) GameStarted() bool {
	return r.State != StateLobby
}

// IsFull 是否满员
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// Player 按 ID 查找玩家
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByUsername 按用户名查找玩家
func (r *Room) PlayerByUsername(username string) *Player {
	for _, p := range r.Players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// PlayerIndex 玩家在加入顺序中的位置，不存在返回 -1
func (r *Room) PlayerIndex(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// HasClaim 是否有可质疑的声明
func (r *Room) HasClaim() bool {
	return r.CurrentClaimedValue != ""
}

// ClearClaim 清空牌堆和声明
func (r *Room) ClearClaim() {
	r.CurrentPile = nil
	r.CurrentClaimedValue = ""
	r.CurrentClaimedCards = nil
	r.LastPlayerID = ""
}

// CardsInPlay 手牌与牌堆总数
func (r *Room) CardsInPlay() int {
	n := len(r.CurrentPile)
	for _, p := range r.Players {
		n += len(p.Hand)
	}
	return n
}

// Touch 刷新活跃时间
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}
