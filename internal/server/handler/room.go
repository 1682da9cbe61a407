package handler

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/game/validation"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/types"
)

// handleCreateRoom 处理创建房间，房主需要再通过 join_room 入座
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停创建房间"))
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := validation.ValidateCreateRoom(payload.Username); err != nil {
		h.sendError(client, msg.Type, err)
		return
	}

	userID := payload.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	client.BindUser(userID, payload.Username)

	code := h.rooms.CreateRoom(userID, payload.Username)
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: code,
		HostID:   userID,
		Username: payload.Username,
	}))
}

// handleJoinRoom 处理加入房间，入座和满员开局在同一临界区内完成，凭证只发给入座的连接
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停加入房间"))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := validation.ValidateJoinRoom(payload.UserID, payload.Username, payload.RoomCode); err != nil {
		h.sendError(client, msg.Type, err)
		return
	}

	started := false
	err = h.rooms.JoinRoomThen(payload.RoomCode, payload.UserID, payload.Username, client.GetID(),
		func(r *room.Room) error {
			if r.IsFull() && !r.GameStarted() {
				if err := h.engine.StartGame(r); err != nil {
					return err
				}
				started = true
			}

			client.BindUser(payload.UserID, payload.Username)
			client.SetRoom(r.Code)

			seat := h.sessions.Create(r.Code, payload.UserID, payload.Username)
			client.SendMessage(codec.MustNewMessage(protocol.MsgSeatGranted, protocol.SeatGrantedPayload{
				RoomCode:       r.Code,
				UserID:         payload.UserID,
				ReconnectToken: seat.ReconnectToken,
			}))

			snap := r.Snapshot()
			h.sendToRoom(snap, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
				RoomCode: r.Code,
				Player:   protocol.PlayerInfo{ID: payload.UserID, Username: payload.Username},
			}))
			h.broadcastState(snap)

			if started {
				h.logger.Info("🎮 对局开始",
					zap.String("room", snap.Code),
					zap.Int("players", len(snap.Players)),
					zap.String("current_player", snap.CurrentPlayer))
			}
			return nil
		},
		validation.UniqueMember(payload.UserID, payload.Username))
	if err != nil {
		h.sendError(client, msg.Type, err)
	}
}

// handleCheckRoom 查询房间是否存在
func (h *Handler) handleCheckRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CheckRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomExists, protocol.RoomExistsPayload{
		RoomCode: payload.RoomCode,
		Exists:   h.rooms.CheckRoom(payload.RoomCode),
	}))
}
