package server

import "github.com/palemoky/bluff/internal/protocol"

// GetOnlineCount 获取在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// IsConnected 连接是否仍在线
func (s *Server) IsConnected(connID string) bool {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	_, ok := s.clients[connID]
	return ok
}

// SendTo 按连接 ID 发送消息
func (s *Server) SendTo(connID string, msg *protocol.Message) bool {
	s.clientsMu.RLock()
	client, ok := s.clients[connID]
	s.clientsMu.RUnlock()

	if !ok {
		return false
	}
	client.SendMessage(msg)
	return true
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// BroadcastToLobby 广播消息给大厅玩家（未在房间内的连接）
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if client.GetRoom() == "" {
			client.SendMessage(msg)
		}
	}
}
