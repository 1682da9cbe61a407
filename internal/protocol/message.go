package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 重新绑定连接
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间
	MsgJoinRoom   MessageType = "join_room"   // 加入房间
	MsgCheckRoom  MessageType = "check_room"  // 查询房间是否存在

	// 游戏操作
	MsgPlayCards MessageType = "play_cards" // 出牌并声明
	MsgCallBluff MessageType = "call_bluff" // 质疑

	// 排行榜
	MsgGetStats       MessageType = "get_stats"       // 获取个人统计
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected   MessageType = "connected"   // 连接成功
	MsgReconnected MessageType = "reconnected" // 重新绑定成功
	MsgPong        MessageType = "pong"        // 心跳 pong

	// 房间相关
	MsgRoomCreated  MessageType = "room_created"  // 房间创建成功
	MsgRoomExists   MessageType = "room_exists"   // 房间查询结果
	MsgPlayerJoined MessageType = "player_joined" // 玩家加入
	MsgSeatGranted  MessageType = "seat_granted"  // 入座成功（含重连凭证）

	// 游戏流程
	MsgGameState   MessageType = "game_state"   // 房间公开状态
	MsgDealCards   MessageType = "deal_cards"   // 私有手牌
	MsgBluffResult MessageType = "bluff_result" // 质疑结果
	MsgGameOver    MessageType = "game_over"    // 游戏结束

	// 排行榜
	MsgStatsResult       MessageType = "stats_result"       // 个人统计结果
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
