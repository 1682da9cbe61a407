package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 凭重连凭证把座位重新绑定到当前连接，并补发房间状态
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	err = h.rooms.Rebind(payload.RoomCode, payload.UserID, client.GetID(), func(r *room.Room) error {
		h.sessions.SetOnline(r.Code, payload.UserID)

		snap := r.Snapshot()
		client.BindUser(payload.UserID, usernameOf(snap, payload.UserID))
		client.SetRoom(r.Code)

		client.SendMessage(codec.MustNewMessage(protocol.MsgReconnected, protocol.ReconnectedPayload{
			RoomCode: r.Code,
			UserID:   payload.UserID,
		}))
		h.sendStateTo(client.GetID(), snap, payload.UserID)
		return nil
	}, h.tokenCheck(payload.ReconnectToken), h.offlineCheck(client))
	if err != nil {
		h.logger.Warn("🚫 重连被拒绝",
			zap.String("room", payload.RoomCode),
			zap.String("player", payload.UserID),
			zap.String("conn", client.GetID()),
			zap.Error(err))
		h.sendError(client, msg.Type, err)
		return
	}

	h.logger.Info("🔄 玩家重连成功",
		zap.String("room", payload.RoomCode),
		zap.String("player", payload.UserID),
		zap.String("conn", client.GetID()))
}

// tokenCheck 重连凭证必须属于该座位且未过期
func (h *Handler) tokenCheck(token string) room.SeatCheck {
	return func(r *room.Room, p *room.Player) error {
		if !h.sessions.CanReconnect(token, r.Code, p.ID) {
			return apperrors.ErrInvalidToken.WithRoom(r.Code).WithPlayer(p.ID)
		}
		return nil
	}
}

// offlineCheck 座位原来的连接仍在线时拒绝重新绑定
func (h *Handler) offlineCheck(client types.ClientInterface) room.SeatCheck {
	return func(r *room.Room, p *room.Player) error {
		if p.SocketRef != client.GetID() && h.server.IsConnected(p.SocketRef) {
			return apperrors.ErrSeatOnline.WithRoom(r.Code).WithPlayer(p.ID)
		}
		return nil
	}
}

// HandleDisconnect 连接断开后标记座位离线，座位已被其他连接接管时忽略
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	code, userID := client.GetRoom(), client.GetUserID()
	if code == "" || userID == "" {
		return
	}

	socket, ok := h.rooms.SeatSocket(code, userID)
	if !ok {
		h.sessions.DeleteRoom(code)
		return
	}
	if socket != client.GetID() {
		return
	}
	h.sessions.SetOffline(code, userID)

	h.logger.Info("📴 玩家断线，等待重连",
		zap.String("room", code),
		zap.String("player", userID),
		zap.String("conn", client.GetID()))
}
