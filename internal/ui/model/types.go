// Package model 终端客户端的 bubbletea 模型
package model

import (
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
)

// Phase 界面所处阶段
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client 模型依赖的客户端操作，*client.Client 满足该接口
type Client interface {
	CreateRoom(userID, username string) error
	JoinRoom(roomCode, userID, username string) error
	CheckRoom(roomCode string) error
	PlayCards(cards []card.Card, claimed card.Value) error
	CallBluff() error
	Reconnect(roomCode, userID, token string) error
	GetStats() error
	GetLeaderboard(leaderboardType string, offset, limit int) error
	Receive() (*protocol.Message, error)
}

// --- Tea Messages ---

// ServerMessage 服务端推送
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectionErrorMsg 连接断开
type ConnectionErrorMsg struct {
	Err error
}
