package types

import (
	"github.com/palemoky/bluff/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	// SendTo 按连接 ID 投递消息，连接不存在时返回 false
	SendTo(connID string, msg *protocol.Message) bool
	// IsConnected 连接是否仍在线
	IsConnected(connID string) bool
}

// ClientInterface 定义客户端接口
//
// GetID 返回连接 ID，即房间内玩家的 SocketRef；GetUserID 返回绑定的用户 ID。
type ClientInterface interface {
	GetID() string
	GetUserID() string
	GetName() string
	// BindUser 将连接绑定到用户
	BindUser(userID, username string)
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}
