package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/config"
	"github.com/palemoky/bluff/internal/game/engine"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/game/rule"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/server/handler"
	"github.com/palemoky/bluff/internal/server/session"
	"github.com/palemoky/bluff/internal/server/storage"
)

const (
	// rateSweepInterval 连接速率记录的清理间隔
	rateSweepInterval = 5 * time.Minute
	// sessionSweepInterval 过期会话的清理间隔
	sessionSweepInterval = time.Minute
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	logger      *zap.Logger
	codec       codec.Codec
	redis       *redis.Client
	ownsRedis   bool
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	rooms       *room.Manager
	sessions    *session.Manager
	engine      *engine.Engine
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	engineOpts []engine.Option
}

// Option 服务器选项
type Option func(*Server)

// WithRedisClient 使用已有的 Redis 客户端，调用方负责关闭
func WithRedisClient(rdb *redis.Client) Option {
	return func(s *Server) { s.redis = rdb }
}

// WithEngineOptions 追加状态机选项
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Server) { s.engineOpts = append(s.engineOpts, opts...) }
}

// NewServer 创建服务器实例。redis.enabled 为 false 且未传入客户端时不启用统计和房间镜像
func NewServer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := codec.New(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		logger:  logger.Named("server"),
		codec:   c,
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
			logger.Named("security"),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.IPWhitelist, cfg.Security.IPBlacklist),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
		// 消息都很小，压缩只会增加 CPU 开销
		EnableCompression: false,
	}

	if s.redis == nil && cfg.Redis.Enabled {
		if err := s.connectRedis(); err != nil {
			return nil, err
		}
	}

	var roomOpts []room.Option
	if s.redis != nil {
		s.redisStore = storage.NewRedisStore(s.redis)
		s.leaderboard = storage.NewLeaderboardManager(s.redis)
		roomOpts = append(roomOpts, room.WithStore(s.redisStore))
	}
	s.rooms = room.NewManager(cfg.Game.MaxPlayers, cfg.Game.RoomInactiveTimeoutDuration(), logger, roomOpts...)

	truth := rule.TruthAny
	if cfg.Game.StrictBluffCheck {
		truth = rule.TruthAll
	}
	s.sessions = session.NewManager(logger, session.WithReconnectTimeout(cfg.Game.ReconnectTimeoutDuration()))
	s.engine = engine.New(logger, append([]engine.Option{engine.WithTruthMode(truth)}, s.engineOpts...)...)

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		Rooms:       s.rooms,
		Engine:      s.engine,
		Sessions:    s.sessions,
		Leaderboard: s.leaderboard,
		Logger:      logger,
	})

	s.logger.Info("🔒 安全配置",
		zap.Int("connect_per_second", cfg.Security.RateLimit.MaxPerSecond),
		zap.Int("message_per_second", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Strings("allowed_origins", cfg.Security.AllowedOrigins),
		zap.Int("ip_whitelist", len(cfg.Security.IPWhitelist)),
		zap.Int("ip_blacklist", len(cfg.Security.IPBlacklist)))
	s.logger.Info("🃏 游戏配置",
		zap.Int("max_players", cfg.Game.MaxPlayers),
		zap.String("truth_mode", truth.String()),
		zap.String("codec", c.Name()),
		zap.Bool("redis", s.redis != nil))

	return s, nil
}

func (s *Server) connectRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     s.config.Redis.Addr,
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	s.redis = rdb
	s.ownsRedis = true
	return nil
}

// Routes 返回 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// StartBackground 启动房间、会话和速率记录的清理以及监控，ctx 取消后退出
func (s *Server) StartBackground(ctx context.Context) {
	go s.rooms.Run(ctx, s.config.Game.CleanupIntervalDuration())
	go s.rateLimiter.Run(ctx, rateSweepInterval)
	go s.sessions.Run(ctx, sessionSweepInterval)
	go s.monitorStats(ctx)
}

// Run 启动服务器，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartBackground(bgCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()

	s.logger.Info("🚀 服务器启动", zap.String("addr", "ws://"+addr+"/ws"), zap.Int("cpus", runtime.NumCPU()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.GracefulShutdown(s.config.Server.ShutdownTimeoutDuration())
	return nil
}
