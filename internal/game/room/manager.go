package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/server/storage"
)

const (
	DefaultInactiveTimeout = 24 * time.Hour

	mirrorQueueSize = 256
)

// JoinCheck 加入房间前的校验，与加入操作在同一把锁内执行
type JoinCheck func(r *Room) error

// JoinHook 玩家入座后在同一把锁内执行，返回错误时撤销入座
type JoinHook func(r *Room) error

// Manager 房间管理器
type Manager struct {
	rooms map[string]*Room
	mu    sync.RWMutex

	maxPlayers      int
	inactiveTimeout time.Duration
	store           *storage.RedisStore
	mirrorQueue     chan *mirrorOp
	mirrorMu        sync.RWMutex // 保护 mirrorQueue，总是最内层的锁
	mirrorDone      chan struct{}
	closeOnce       sync.Once
	logger          *zap.Logger
	now             func() time.Time
}

// mirrorOp 镜像写操作，data 为 nil 表示删除
type mirrorOp struct {
	code string
	data *storage.RoomData
}

// Option Manager 选项
type Option func(*Manager)

// WithStore 启用 Redis 房间镜像
func WithStore(store *storage.RedisStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager 创建房间管理器
func NewManager(maxPlayers int, inactiveTimeout time.Duration, logger *zap.Logger, opts ...Option) *Manager {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if inactiveTimeout <= 0 {
		inactiveTimeout = DefaultInactiveTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		rooms:           make(map[string]*Room),
		maxPlayers:      maxPlayers,
		inactiveTimeout: inactiveTimeout,
		logger:          logger.Named("room"),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.store != nil {
		m.mirrorQueue = make(chan *mirrorOp, mirrorQueueSize)
		m.mirrorDone = make(chan struct{})
		go m.mirrorLoop(m.mirrorQueue)
	}
	return m
}

// Close 停止镜像协程，等待已排队的写入完成
func (m *Manager) Close() {
	if m.store == nil {
		return
	}
	m.closeOnce.Do(func() {
		m.mirrorMu.Lock()
		close(m.mirrorQueue)
		m.mirrorQueue = nil
		m.mirrorMu.Unlock()
		<-m.mirrorDone
	})
}

// CreateRoom 创建空房间，返回房间号
func (m *Manager) CreateRoom(hostID, hostUsername string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	r := &Room{
		Code:         m.generateCode(),
		HostID:       hostID,
		MaxPlayers:   m.maxPlayers,
		State:        StateLobby,
		Players:      make([]*Player, 0, m.maxPlayers),
		CreatedAt:    now,
		LastActivity: now,
	}
	m.rooms[r.Code] = r
	m.mirror(r)

	m.logger.Info("🏠 房间已创建",
		zap.String("room", r.Code),
		zap.String("host", hostID),
		zap.String("username", hostUsername))

	return r.Code
}

// JoinRoom 加入房间
func (m *Manager) JoinRoom(code, userID, username, socketRef string, checks ...JoinCheck) error {
	return m.join(code, userID, username, socketRef, checks, nil)
}

// JoinRoomThen 加入房间，入座后在同一临界区内执行 then（例如满员开局）
func (m *Manager) JoinRoomThen(code, userID, username, socketRef string, then JoinHook, checks ...JoinCheck) error {
	return m.join(code, userID, username, socketRef, checks, then)
}

func (m *Manager) join(code, userID, username, socketRef string, checks []JoinCheck, then JoinHook) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[code]
	if !ok {
		return apperrors.ErrRoomNotFound.WithRoom(code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrRoomNotFound.WithRoom(code)
	}
	if r.IsFull() {
		return apperrors.ErrRoomFull.WithRoom(code).WithPlayer(userID)
	}
	if r.GameStarted() {
		return apperrors.ErrGameStarted.WithRoom(code)
	}
	for _, check := range checks {
		if err := check(r); err != nil {
			return err
		}
	}

	r.Version++
	r.Players = append(r.Players, &Player{
		ID:        userID,
		Username:  username,
		SocketRef: socketRef,
		Hand:      []card.Card{},
	})
	if then != nil {
		if err := then(r); err != nil {
			r.Players = r.Players[:len(r.Players)-1]
			return err
		}
	}
	r.Touch(m.now())
	m.mirror(r)

	m.logger.Info("👤 玩家加入房间",
		zap.String("room", code),
		zap.String("player", userID),
		zap.String("username", username),
		zap.Int("players", len(r.Players)))

	return nil
}

// CheckRoom 房间是否存在
func (m *Manager) CheckRoom(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[code]
	return ok
}

// GetRoom 获取房间，读写字段需通过 WithRoom
func (m *Manager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// SeatSocket 返回玩家当前绑定的连接 ID，只读不计入版本
func (m *Manager) SeatSocket(code, userID string) (string, bool) {
	m.mu.RLock()
	r, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", false
	}
	if p := r.Player(userID); p != nil {
		return p.SocketRef, true
	}
	return "", false
}

// WithRoom 在房间锁内执行 fn
func (m *Manager) WithRoom(code string, fn func(r *Room) error) error {
	m.mu.RLock()
	r, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return apperrors.ErrRoomNotFound.WithRoom(code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrRoomNotFound.WithRoom(code)
	}
	r.Version++
	if err := fn(r); err != nil {
		return err
	}
	m.mirror(r)
	return nil
}

// RemoveRoom 删除房间
func (m *Manager) RemoveRoom(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return false
	}
	m.removeLocked(r)

	m.logger.Info("🏠 房间已解散", zap.String("room", code))
	return true
}

// removeLocked 调用方持有 m.mu 写锁
func (m *Manager) removeLocked(r *Room) {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	delete(m.rooms, r.Code)
	m.enqueue(&mirrorOp{code: r.Code})
}

// Count 房间数
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ActiveGames 进行中的对局数
func (m *Manager) ActiveGames() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.rooms {
		r.mu.Lock()
		if r.State == StateInProgress {
			count++
		}
		r.mu.Unlock()
	}
	return count
}

// generateCode 生成房间号，调用方持有 m.mu 写锁
func (m *Manager) generateCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := m.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// mirror 写入 Redis 镜像，调用方持有房间锁
func (m *Manager) mirror(r *Room) {
	if m.store == nil {
		return
	}
	m.enqueue(&mirrorOp{code: r.Code, data: r.ToRoomData()})
}

// enqueue 队列满或已关闭时丢弃
func (m *Manager) enqueue(op *mirrorOp) {
	m.mirrorMu.RLock()
	defer m.mirrorMu.RUnlock()

	if m.mirrorQueue == nil {
		return
	}
	select {
	case m.mirrorQueue <- op:
	default:
		m.logger.Warn("房间镜像队列已满，丢弃写入", zap.String("room", op.code))
	}
}

// mirrorLoop 按顺序执行镜像写入
func (m *Manager) mirrorLoop(queue <-chan *mirrorOp) {
	defer close(m.mirrorDone)

	for op := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		var err error
		if op.data == nil {
			err = m.store.DeleteRoom(ctx, op.code)
		} else {
			err = m.store.SaveRoom(ctx, op.data)
		}
		cancel()

		if err != nil {
			m.logger.Warn("房间镜像写入失败", zap.String("room", op.code), zap.Error(err))
		}
	}
}
