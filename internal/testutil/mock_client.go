//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/bluff/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) BindUser(userID, username string) {
	m.Called(userID, username)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）
type SimpleClient struct {
	ID       string
	UserID   string
	Name     string
	RoomCode string

	mu       sync.Mutex
	Messages []*protocol.Message
}

func (m *SimpleClient) GetID() string     { return m.ID }
func (m *SimpleClient) GetUserID() string { return m.UserID }
func (m *SimpleClient) GetName() string   { return m.Name }
func (m *SimpleClient) GetRoom() string   { return m.RoomCode }
func (m *SimpleClient) SetRoom(code string) {
	m.RoomCode = code
}
func (m *SimpleClient) BindUser(userID, username string) {
	m.UserID, m.Name = userID, username
}
func (m *SimpleClient) Close() {}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

// Received 返回收到的指定类型消息
func (m *SimpleClient) Received(msgType protocol.MessageType) []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*protocol.Message
	for _, msg := range m.Messages {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

// Last 返回最后一条消息
func (m *SimpleClient) Last() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Messages) == 0 {
		return nil
	}
	return m.Messages[len(m.Messages)-1]
}

// Reset 清空已收到的消息
func (m *SimpleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = nil
}
