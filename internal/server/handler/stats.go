package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
	"github.com/palemoky/bluff/internal/server/storage"
	"github.com/palemoky/bluff/internal/types"
)

// 排行榜分页限制
const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// handleGetStats 获取个人统计
func (h *Handler) handleGetStats(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetStatsPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	userID := payload.UserID
	if userID == "" {
		userID = client.GetUserID()
	}

	ctx, cancel := storeContext()
	defer cancel()

	stats, err := h.leaderboard.GetPlayerStats(ctx, userID)
	if err != nil {
		h.logger.Warn("⚠️ 获取统计失败", zap.String("player", userID), zap.Error(err))
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取统计失败"))
		return
	}
	if stats == nil {
		// 没有统计数据，返回空数据
		stats = &storage.PlayerStats{PlayerID: userID, PlayerName: client.GetName()}
	}

	rank, err := h.leaderboard.GetPlayerRank(ctx, userID)
	if err != nil {
		rank = -1
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgStatsResult, convert.StatsToPayload(stats, rank)))
}

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{}
	}

	if payload.Type == "" {
		payload.Type = storage.LeaderboardTotal
	}
	if payload.Limit <= 0 || payload.Limit > maxLeaderboardLimit {
		payload.Limit = defaultLeaderboardLimit
	}
	if payload.Offset < 0 {
		payload.Offset = 0
	}

	ctx, cancel := storeContext()
	defer cancel()

	entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Offset, payload.Limit)
	if err != nil {
		h.logger.Warn("⚠️ 获取排行榜失败", zap.String("type", payload.Type), zap.Error(err))
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult,
		convert.LeaderboardToPayload(payload.Type, entries)))
}
