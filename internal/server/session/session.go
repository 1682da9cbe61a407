package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// 默认重连等待时间
	defaultReconnectTimeout = 2 * time.Minute
	// 离线超过该时长的会话会被清理
	defaultExpireTime = 10 * time.Minute
)

// PlayerSession 座位会话，凭 ReconnectToken 重新绑定连接
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	RoomCode       string
	ReconnectToken string

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool
}

type seatKey struct {
	room   string
	player string
}

// Manager 会话管理器，每个座位一个会话
type Manager struct {
	mu       sync.RWMutex
	sessions map[seatKey]*PlayerSession
	tokens   map[string]seatKey

	reconnectTimeout time.Duration
	expireTime       time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

// Option 会话管理器选项
type Option func(*Manager)

// WithReconnectTimeout 断线后允许重连的时长
func WithReconnectTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.reconnectTimeout = d
		}
	}
}

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager 创建会话管理器
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions:         make(map[seatKey]*PlayerSession),
		tokens:           make(map[string]seatKey),
		reconnectTimeout: defaultReconnectTimeout,
		expireTime:       defaultExpireTime,
		now:              time.Now,
		logger:           logger.Named("session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.expireTime < m.reconnectTimeout {
		m.expireTime = m.reconnectTimeout
	}
	return m
}

// Create 为入座的玩家签发会话，返回副本
func (m *Manager) Create(roomCode, playerID, playerName string) PlayerSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := seatKey{room: roomCode, player: playerID}
	if old, ok := m.sessions[key]; ok {
		delete(m.tokens, old.ReconnectToken)
	}

	s := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		RoomCode:       roomCode,
		ReconnectToken: generateToken(),
		IsOnline:       true,
	}
	m.sessions[key] = s
	m.tokens[s.ReconnectToken] = key
	return *s
}

// Get 获取会话副本
func (m *Manager) Get(roomCode, playerID string) (PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[seatKey{room: roomCode, player: playerID}]
	if !ok {
		return PlayerSession{}, false
	}
	return *s, true
}

// CanReconnect token 属于该座位，且未超过重连时限
func (m *Manager) CanReconnect(token, roomCode, playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[seatKey{room: roomCode, player: playerID}]
	if !ok || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(s.ReconnectToken), []byte(token)) != 1 {
		return false
	}
	if !s.IsOnline && m.now().Sub(s.DisconnectedAt) > m.reconnectTimeout {
		return false
	}
	return true
}

// SetOffline 标记玩家断线
func (m *Manager) SetOffline(roomCode, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[seatKey{room: roomCode, player: playerID}]; ok && s.IsOnline {
		s.IsOnline = false
		s.DisconnectedAt = m.now()
	}
}

// SetOnline 标记玩家重新上线
func (m *Manager) SetOnline(roomCode, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[seatKey{room: roomCode, player: playerID}]; ok {
		s.IsOnline = true
		s.DisconnectedAt = time.Time{}
	}
}

// DeleteRoom 删除房间内的全部会话
func (m *Manager) DeleteRoom(roomCode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, s := range m.sessions {
		if key.room == roomCode {
			delete(m.tokens, s.ReconnectToken)
			delete(m.sessions, key)
			n++
		}
	}
	return n
}

// Count 会话数
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup 清理离线过久的会话，返回清理数量
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for key, s := range m.sessions {
		if !s.IsOnline && now.Sub(s.DisconnectedAt) > m.expireTime {
			delete(m.tokens, s.ReconnectToken)
			delete(m.sessions, key)
			n++
		}
	}
	return n
}

// Run 定期清理过期会话，直到 ctx 取消
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 {
				m.logger.Info("🧹 清理过期会话", zap.Int("count", n), zap.Int("remaining", m.Count()))
			}
		}
	}
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
