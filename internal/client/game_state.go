package client

import (
	"slices"
	"sync"

	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/game/rule"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
)

// GameState 客户端本地的对局视图，只由服务端推送更新
type GameState struct {
	mu sync.RWMutex

	roomCode      string
	hand          []card.Card
	players       []protocol.PlayerInfo
	pile          []card.Card
	currentPlayer string
	claimedValue  card.Value
	lastPlayerID  string
	started       bool

	reconnectToken string
	stateSeq       uint64 // 最近应用的 game_state 版本
	handSeq        uint64 // 最近应用的 deal_cards 版本

	lastBluff *protocol.BluffResultPayload
	winner    *protocol.WinnerInfo
}

// NewGameState 创建空的对局视图
func NewGameState() *GameState {
	return &GameState{}
}

// Apply 根据服务端消息更新视图，与对局无关的消息忽略
func (gs *GameState) Apply(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		p, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		gs.reset()
		gs.roomCode = p.RoomCode
		gs.mu.Unlock()

	case protocol.MsgSeatGranted:
		p, err := codec.ParsePayload[protocol.SeatGrantedPayload](msg)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		if p.RoomCode != gs.roomCode {
			gs.reset()
		}
		gs.roomCode = p.RoomCode
		gs.reconnectToken = p.ReconnectToken
		gs.mu.Unlock()

	case protocol.MsgReconnected:
		p, err := codec.ParsePayload[protocol.ReconnectedPayload](msg)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		gs.roomCode = p.RoomCode
		gs.mu.Unlock()

	case protocol.MsgGameState:
		p, err := codec.ParsePayload[protocol.GameStatePayload](msg)
		if err != nil {
			return err
		}
		pile, err := convert.InfosToCards(p.CurrentPile)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		defer gs.mu.Unlock()
		if stale(p.Seq, gs.stateSeq) {
			return nil
		}
		gs.stateSeq = p.Seq
		gs.roomCode = p.RoomCode
		gs.players = p.Players
		gs.pile = pile
		gs.currentPlayer = p.CurrentPlayer
		gs.claimedValue = card.Value(p.CurrentClaimedValue)
		gs.lastPlayerID = p.LastPlayerID
		gs.started = p.GameStarted

	case protocol.MsgDealCards:
		p, err := codec.ParsePayload[protocol.DealCardsPayload](msg)
		if err != nil {
			return err
		}
		hand, err := convert.InfosToCards(p.Cards)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		defer gs.mu.Unlock()
		if stale(p.Seq, gs.handSeq) {
			return nil
		}
		gs.handSeq = p.Seq
		gs.hand = hand

	case protocol.MsgBluffResult:
		p, err := codec.ParsePayload[protocol.BluffResultPayload](msg)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		gs.lastBluff = p
		gs.mu.Unlock()

	case protocol.MsgGameOver:
		p, err := codec.ParsePayload[protocol.GameOverPayload](msg)
		if err != nil {
			return err
		}
		gs.mu.Lock()
		gs.winner = &p.Winner
		gs.started = false
		gs.mu.Unlock()
	}
	return nil
}

// reset 调用方持有 gs.mu
func (gs *GameState) reset() {
	gs.roomCode = ""
	gs.hand = nil
	gs.players = nil
	gs.pile = nil
	gs.currentPlayer = ""
	gs.claimedValue = ""
	gs.lastPlayerID = ""
	gs.started = false
	gs.lastBluff = nil
	gs.winner = nil
	gs.reconnectToken = ""
	gs.stateSeq = 0
	gs.handSeq = 0
}

// stale 版本不新于已应用的版本时丢弃，seq 为 0 表示未编号
func stale(seq, applied uint64) bool {
	return seq != 0 && seq <= applied
}

// ReconnectToken 入座时获得的重连凭证
func (gs *GameState) ReconnectToken() string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.reconnectToken
}

// Seq 最近应用的房间版本
func (gs *GameState) Seq() uint64 {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.stateSeq
}

// RoomCode 当前房间号
func (gs *GameState) RoomCode() string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.roomCode
}

// Hand 手牌副本
func (gs *GameState) Hand() []card.Card {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return card.Clone(gs.hand)
}

// Players 公开的玩家信息
func (gs *GameState) Players() []protocol.PlayerInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return slices.Clone(gs.players)
}

// PileCount 牌堆张数
func (gs *GameState) PileCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.pile)
}

// CurrentPlayer 当前出牌玩家
func (gs *GameState) CurrentPlayer() string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.currentPlayer
}

// ClaimedValue 当前声明的点数和声明者
func (gs *GameState) ClaimedValue() (card.Value, string) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.claimedValue, gs.lastPlayerID
}

// Started 对局是否进行中
func (gs *GameState) Started() bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.started
}

// IsMyTurn 是否轮到 userID 出牌
func (gs *GameState) IsMyTurn(userID string) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.started && gs.currentPlayer == userID
}

// CanCallBluff 有其他玩家的声明时可以质疑
func (gs *GameState) CanCallBluff(userID string) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.started && gs.claimedValue != "" && gs.lastPlayerID != "" && gs.lastPlayerID != userID
}

// LegalClaims 当前牌堆下可以声明的点数
func (gs *GameState) LegalClaims() []card.Value {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return rule.LegalClaims(gs.pile)
}

// LastBluff 最近一次质疑结果
func (gs *GameState) LastBluff() *protocol.BluffResultPayload {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.lastBluff
}

// Winner 获胜者，未结束时为 nil
func (gs *GameState) Winner() *protocol.WinnerInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.winner
}
