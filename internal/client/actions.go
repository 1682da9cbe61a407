package client

import (
	"context"
	"time"

	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
)

// --- 便捷方法 ---

// CreateRoom 创建房间并绑定用户，房主还需要 JoinRoom 入座
func (c *Client) CreateRoom(userID, username string) error {
	c.bindUser(userID, username)
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		UserID:   userID,
		Username: username,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, userID, username string) error {
	c.bindUser(userID, username)
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: roomCode,
		UserID:   userID,
		Username: username,
	}))
}

// CheckRoom 查询房间是否存在
func (c *Client) CheckRoom(roomCode string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCheckRoom, protocol.CheckRoomPayload{
		RoomCode: roomCode,
	}))
}

// PlayCards 出牌并声明点数
func (c *Client) PlayCards(cards []card.Card, claimed card.Value) error {
	code := c.State.RoomCode()
	if code == "" {
		return ErrNotInRoom
	}
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPlayCards, protocol.PlayCardsPayload{
		RoomCode:     code,
		UserID:       c.UserID(),
		Cards:        convert.CardsToInfos(cards),
		ClaimedValue: string(claimed),
	}))
}

// CallBluff 质疑上一位玩家的声明
func (c *Client) CallBluff() error {
	code := c.State.RoomCode()
	if code == "" {
		return ErrNotInRoom
	}
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCallBluff, protocol.CallBluffPayload{
		RoomCode: code,
		UserID:   c.UserID(),
	}))
}

// Reconnect 凭入座时获得的重连凭证，在新连接上重新绑定房间内的座位
func (c *Client) Reconnect(roomCode, userID, token string) error {
	if userID == "" {
		return ErrNoUserBound
	}
	c.bindUser(userID, "")
	return c.SendMessage(codec.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		RoomCode:       roomCode,
		UserID:         userID,
		ReconnectToken: token,
	}))
}

// GetStats 获取个人统计
func (c *Client) GetStats() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetStats, protocol.GetStatsPayload{
		UserID: c.UserID(),
	}))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(leaderboardType string, offset, limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Type:   leaderboardType,
		Offset: offset,
		Limit:  limit,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// StartHeartbeat 定期发送心跳，直到 ctx 取消或连接关闭
func (c *Client) StartHeartbeat(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}()
}
