//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/types"
)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) SendTo(connID string, msg *protocol.Message) bool {
	args := m.Called(connID, msg)
	return args.Bool(0)
}

func (m *MockServer) IsConnected(connID string) bool {
	args := m.Called(connID)
	return args.Bool(0)
}

// LocalServer 把消息投递给已注册的内存客户端
type LocalServer struct {
	mu          sync.RWMutex
	clients     map[string]types.ClientInterface
	Maintenance bool
}

// NewLocalServer 创建内存服务器
func NewLocalServer(clients ...types.ClientInterface) *LocalServer {
	s := &LocalServer{clients: make(map[string]types.ClientInterface)}
	for _, c := range clients {
		s.Register(c)
	}
	return s
}

// Register 注册客户端
func (s *LocalServer) Register(c types.ClientInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.GetID()] = c
}

// Unregister 注销客户端，模拟断线
func (s *LocalServer) Unregister(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, connID)
}

func (s *LocalServer) IsConnected(connID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.clients[connID]
	return ok
}

func (s *LocalServer) IsMaintenanceMode() bool { return s.Maintenance }

func (s *LocalServer) GetOnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *LocalServer) SendTo(connID string, msg *protocol.Message) bool {
	s.mu.RLock()
	c, ok := s.clients[connID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	c.SendMessage(msg)
	return true
}
