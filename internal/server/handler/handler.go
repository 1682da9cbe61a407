package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/engine"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/server/session"
	"github.com/palemoky/bluff/internal/server/storage"
	"github.com/palemoky/bluff/internal/types"
)

// storeTimeout 统计写入 Redis 的超时
const storeTimeout = 2 * time.Second

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	Rooms       *room.Manager
	Engine      *engine.Engine
	Sessions    *session.Manager            // 为 nil 时使用默认配置
	Leaderboard *storage.LeaderboardManager // 可为 nil
	Logger      *zap.Logger
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	rooms       *room.Manager
	engine      *engine.Engine
	sessions    *session.Manager
	leaderboard *storage.LeaderboardManager
	logger      *zap.Logger
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewManager(logger)
	}
	h := &Handler{
		server:      deps.Server,
		rooms:       deps.Rooms,
		engine:      deps.Engine,
		sessions:    sessions,
		leaderboard: deps.Leaderboard,
		logger:      logger.Named("handler"),
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 房间操作
		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgCheckRoom:  h.handleCheckRoom,

		// 游戏操作
		protocol.MsgPlayCards: h.handlePlayCards,
		protocol.MsgCallBluff: h.handleCallBluff,

		// 信息查询
		protocol.MsgGetStats:       h.handleGetStats,
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
	}
}

// Handle 处理消息，单条消息的 panic 不会影响连接
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("💥 处理消息时发生 panic",
				zap.String("type", string(msg.Type)),
				zap.String("conn", client.GetID()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	h.logger.Warn("⚠️ 未知消息类型",
		zap.String("type", string(msg.Type)),
		zap.String("conn", client.GetID()),
		zap.Int("payload_len", len(msg.Payload)))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 将错误只发给发起者，非业务错误额外记录日志
func (h *Handler) sendError(client types.ClientInterface, msgType protocol.MessageType, err error) {
	if _, ok := apperrors.As(err); !ok {
		h.logger.Error("❌ 处理消息失败",
			zap.String("type", string(msgType)),
			zap.String("conn", client.GetID()),
			zap.Error(err))
	}
	client.SendMessage(codec.NewGameErrorMessage(err))
}

// storeContext 统计写入使用的上下文
func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
