package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
)

const (
	monitorInterval       = 30 * time.Second
	shutdownCheckInterval = time.Second
)

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s.logger.Info("📊 [监控]",
			zap.Int("online", s.GetOnlineCount()),
			zap.Int("rooms", s.rooms.Count()),
			zap.Int("active_games", s.rooms.ActiveGames()),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.Int("connections", len(s.semaphore)),
			zap.Int("max_connections", s.maxConnections),
			zap.Float64("mem_mb", float64(m.Alloc)/1024/1024))
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接、新房间和加入房间，进行中的对局不受影响
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    protocol.ErrCodeServerMaintenance,
		Message: "👷🏻‍♂️ 维护模式：停止新的房间创建",
	}))

	s.logger.Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束或超时后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(shutdownCheckInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.rooms.ActiveGames()
		if active == 0 {
			s.logger.Info("✅ 所有对局已结束")
			break
		}
		s.logger.Info("⏳ 等待对局结束...", zap.Int("active_games", active))
		<-ticker.C
	}

	if active := s.rooms.ActiveGames(); active > 0 {
		s.logger.Warn("⚠️ 超时，仍有对局进行中，强制关闭", zap.Int("active_games", active))
		s.Broadcast(codec.MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
			Code:    protocol.ErrCodeServerMaintenance,
			Message: fmt.Sprintf("🚧 服务器停机维护，%d 局对局被中断", active),
		}))
	}

	s.Shutdown()
}

// Shutdown 关闭 HTTP 服务、所有连接、房间镜像和 Redis
func (s *Server) Shutdown() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("HTTP 服务关闭失败", zap.Error(err))
		}
		cancel()
	}

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	s.rooms.Close()

	if s.ownsRedis {
		_ = s.redis.Close()
	}

	s.logger.Info("服务器已关闭")
}
