package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
)

// CleanupInactiveRooms 清理超过不活跃时长的房间，返回清理数量
func (m *Manager) CleanupInactiveRooms(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*Room
	for _, r := range m.rooms {
		r.mu.Lock()
		idle := now.Sub(r.LastActivity)
		r.mu.Unlock()

		if idle > m.inactiveTimeout {
			expired = append(expired, r)
		}
	}

	for _, r := range expired {
		m.removeLocked(r)
		m.logger.Info("🧹 房间超时已清理", zap.String("room", r.Code))
	}

	return len(expired)
}

// Run 定期清理不活跃房间，直到 ctx 取消
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupInactiveRooms(m.now()); n > 0 {
				m.logger.Info("🧹 清理不活跃房间", zap.Int("count", n), zap.Int("remaining", m.Count()))
			}
		}
	}
}

// SeatCheck 重新绑定前对座位的校验，在房间锁内执行
type SeatCheck func(r *Room, p *Player) error

// Rebind 更新玩家的连接 ID，then 在同一临界区内执行（可为 nil）
func (m *Manager) Rebind(code, userID, socketRef string, then func(r *Room) error, checks ...SeatCheck) error {
	return m.WithRoom(code, func(r *Room) error {
		p := r.Player(userID)
		if p == nil {
			return apperrors.ErrNotInRoom.WithRoom(code).WithPlayer(userID)
		}
		for _, check := range checks {
			if err := check(r, p); err != nil {
				return err
			}
		}
		previous := p.SocketRef
		p.SocketRef = socketRef
		if then != nil {
			if err := then(r); err != nil {
				p.SocketRef = previous
				return err
			}
		}
		r.Touch(m.now())

		m.logger.Info("📶 玩家重新绑定连接",
			zap.String("room", code),
			zap.String("player", userID),
			zap.String("socket", socketRef))
		return nil
	})
}

// Now 管理器时钟
func (m *Manager) Now() time.Time {
	return m.now()
}
