package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	log := s.logger.With(zap.String("ip", clientIP))

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		log.Info("🔧 维护模式，拒绝新连接")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	if !s.ipFilter.IsAllowed(clientIP) {
		log.Warn("🚫 IP 被过滤器拒绝")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if !s.originChecker.Check(r) {
		log.Warn("🚫 来源验证失败", zap.String("origin", r.Header.Get("Origin")))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		log.Warn("🚫 请求过于频繁")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 连接数限制，连接断开时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Warn("🚫 达到最大连接数限制", zap.Int("max", s.maxConnections))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := NewClient(s, conn, clientIP)
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		ConnID: client.ID,
		Codec:  s.codec.Name(),
	}))

	log.Info("✅ 连接已建立", zap.String("conn", client.ID))

	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端并释放连接名额。玩家仍留在房间中，可凭重连凭证重新绑定
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[client.ID]
	delete(s.clients, client.ID)
	s.clientsMu.Unlock()

	if !ok {
		return
	}
	<-s.semaphore
	s.messageLimiter.ClearRateLimit(client.ID)
	s.handler.HandleDisconnect(client)
	s.logger.Info("❌ 连接已断开",
		zap.String("conn", client.ID),
		zap.String("player", client.GetUserID()),
		zap.String("room", client.GetRoom()))
}
