package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/game/engine"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/game/validation"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
	"github.com/palemoky/bluff/internal/types"
)

// actor 返回命令的发起者和房间号，连接已绑定时以连接为准
func actor(client types.ClientInterface, userID, roomCode string) (string, string) {
	if bound := client.GetUserID(); bound != "" {
		userID = bound
	}
	if roomCode == "" {
		roomCode = client.GetRoom()
	}
	return userID, roomCode
}

// checkSeat 玩家只能通过自己入座时的连接行动
func checkSeat(r *room.Room, client types.ClientInterface, userID string) error {
	if p := r.Player(userID); p != nil && p.SocketRef != client.GetID() {
		return apperrors.ErrNotInRoom.WithRoom(r.Code).WithPlayer(userID)
	}
	return nil
}

// handlePlayCards 处理出牌
func (h *Handler) handlePlayCards(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlayCardsPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	cards, err := convert.InfosToCards(payload.Cards)
	if err != nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeInvalidMsg, err.Error()))
		return
	}
	userID, code := actor(client, payload.UserID, payload.RoomCode)
	claimed := card.Value(payload.ClaimedValue)

	err = h.rooms.WithRoom(code, func(r *room.Room) error {
		if err := checkSeat(r, client, userID); err != nil {
			return err
		}
		if err := validation.ValidateCardPlay(r, userID, cards, claimed); err != nil {
			return err
		}
		if err := h.engine.Play(r, userID, cards, claimed); err != nil {
			return err
		}
		h.broadcastState(r.Snapshot())
		return nil
	})
	if err != nil {
		h.sendError(client, msg.Type, err)
	}
}

// handleCallBluff 处理质疑。只剩一名玩家有手牌时对局结束并解散房间
func (h *Handler) handleCallBluff(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CallBluffPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	userID, code := actor(client, payload.UserID, payload.RoomCode)

	var (
		result engine.BluffResult
		winner *room.Player
		snap   room.Snapshot
	)
	err = h.rooms.WithRoom(code, func(r *room.Room) error {
		if err := checkSeat(r, client, userID); err != nil {
			return err
		}
		if err := validation.ValidateBluffCall(r, userID); err != nil {
			return err
		}
		res, err := h.engine.ResolveBluffCall(r, userID)
		if err != nil {
			return err
		}
		result = res
		if p := h.engine.CheckGameOver(r); p != nil {
			winner = &room.Player{ID: p.ID, Username: p.Username}
		}
		snap = r.Snapshot()

		h.sendToRoom(snap, codec.MustNewMessage(protocol.MsgBluffResult, convert.BluffResultToPayload(result)))
		if winner != nil {
			h.sendToRoom(snap, codec.MustNewMessage(protocol.MsgGameOver, convert.WinnerToPayload(snap.Code, winner)))
			return nil
		}
		h.broadcastState(snap)
		return nil
	})
	if err != nil {
		h.sendError(client, msg.Type, err)
		return
	}

	h.recordBluff(snap, result)
	if winner == nil {
		return
	}

	h.rooms.RemoveRoom(snap.Code)
	h.sessions.DeleteRoom(snap.Code)
	h.recordGameOver(snap, winner.ID)

	h.logger.Info("🏆 对局结束",
		zap.String("room", snap.Code),
		zap.String("winner", winner.ID),
		zap.String("username", winner.Username))
}

// recordBluff 记录质疑统计，失败只记日志
func (h *Handler) recordBluff(snap room.Snapshot, result engine.BluffResult) {
	if h.leaderboard == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()

	callerName := usernameOf(snap, result.CallerID)
	if err := h.leaderboard.RecordBluffCall(ctx, result.CallerID, callerName, !result.ClaimHeld); err != nil {
		h.logger.Warn("⚠️ 记录质疑统计失败", zap.String("player", result.CallerID), zap.Error(err))
	}
	if !result.ClaimHeld {
		receiverName := usernameOf(snap, result.ReceiverID)
		if err := h.leaderboard.RecordPileTaken(ctx, result.ReceiverID, receiverName); err != nil {
			h.logger.Warn("⚠️ 记录收牌统计失败", zap.String("player", result.ReceiverID), zap.Error(err))
		}
	}
}

// recordGameOver 记录所有成员的胜负
func (h *Handler) recordGameOver(snap room.Snapshot, winnerID string) {
	if h.leaderboard == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()

	for _, p := range snap.Players {
		if err := h.leaderboard.RecordGameResult(ctx, p.ID, p.Username, p.ID == winnerID); err != nil {
			h.logger.Warn("⚠️ 记录对局结果失败",
				zap.String("room", snap.Code),
				zap.String("player", p.ID),
				zap.Error(err))
		}
	}
}

func usernameOf(snap room.Snapshot, userID string) string {
	for _, p := range snap.Players {
		if p.ID == userID {
			return p.Username
		}
	}
	return ""
}
