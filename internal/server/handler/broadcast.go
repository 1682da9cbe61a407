package handler

import (
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
)

// 以下函数都在房间锁内调用，同一房间的消息按版本顺序投递

// sendToRoom 向快照中的所有成员发送同一条消息
func (h *Handler) sendToRoom(snap room.Snapshot, msg *protocol.Message) {
	for _, p := range snap.Players {
		h.server.SendTo(p.SocketRef, msg)
	}
}

// broadcastState 房间广播 game_state，并单独下发每位成员的手牌
func (h *Handler) broadcastState(snap room.Snapshot) {
	state := codec.MustNewMessage(protocol.MsgGameState, convert.SnapshotToGameState(snap))
	for _, p := range snap.Players {
		h.server.SendTo(p.SocketRef, state)
		h.server.SendTo(p.SocketRef, codec.MustNewMessage(protocol.MsgDealCards, convert.HandToDealCards(p, snap.Version)))
	}
}

// sendStateTo 只向一个连接发送房间状态和该玩家的手牌
func (h *Handler) sendStateTo(connID string, snap room.Snapshot, userID string) {
	h.server.SendTo(connID, codec.MustNewMessage(protocol.MsgGameState, convert.SnapshotToGameState(snap)))
	for _, p := range snap.Players {
		if p.ID == userID {
			h.server.SendTo(connID, codec.MustNewMessage(protocol.MsgDealCards, convert.HandToDealCards(p, snap.Version)))
			return
		}
	}
}
