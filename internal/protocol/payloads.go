package protocol

// CardInfo 牌
type CardInfo struct {
	ID    string `json:"id"`
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// PlayerInfo 公开的玩家信息（只含手牌数量）
type PlayerInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CardCount int    `json:"card_count"`
}

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// CheckRoomPayload 查询房间请求
type CheckRoomPayload struct {
	RoomCode string `json:"room_code"`
}

// PlayCardsPayload 出牌请求
type PlayCardsPayload struct {
	RoomCode     string     `json:"room_code"`
	UserID       string     `json:"user_id"`
	Cards        []CardInfo `json:"cards"`
	ClaimedValue string     `json:"claimed_value"`
}

// CallBluffPayload 质疑请求
type CallBluffPayload struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
}

// ReconnectPayload 重新绑定请求，凭证来自入座时下发的 seat_granted
type ReconnectPayload struct {
	RoomCode       string `json:"room_code"`
	UserID         string `json:"user_id"`
	ReconnectToken string `json:"reconnect_token"`
}

// GetStatsPayload 获取个人统计请求
type GetStatsPayload struct {
	UserID string `json:"user_id"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type   string `json:"type"`   // total/daily/weekly
	Offset int    `json:"offset"` // 偏移量
	Limit  int    `json:"limit"`  // 数量
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功
type ConnectedPayload struct {
	ConnID string `json:"conn_id"`
	Codec  string `json:"codec"`
}

// SeatGrantedPayload 入座成功，只发给入座的连接
type SeatGrantedPayload struct {
	RoomCode       string `json:"room_code"`
	UserID         string `json:"user_id"`
	ReconnectToken string `json:"reconnect_token"`
}

// ReconnectedPayload 重新绑定成功
type ReconnectedPayload struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功
type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
	HostID   string `json:"host_id"`
	Username string `json:"username"`
}

// RoomExistsPayload 房间查询结果
type RoomExistsPayload struct {
	RoomCode string `json:"room_code"`
	Exists   bool   `json:"exists"`
}

// PlayerJoinedPayload 玩家加入
type PlayerJoinedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// GameStatePayload 房间公开状态
type GameStatePayload struct {
	RoomCode            string       `json:"room_code"`
	Players             []PlayerInfo `json:"players"`
	CurrentPlayer       string       `json:"current_player"`
	CurrentPile         []CardInfo   `json:"current_pile"`
	PileCount           int          `json:"pile_count"`
	CurrentClaimedValue string       `json:"current_claimed_value"`
	LastPlayerID        string       `json:"last_player_id,omitempty"`
	GameStarted         bool         `json:"game_started"`
	Seq                 uint64       `json:"seq"` // 房间状态版本，单调递增
}

// DealCardsPayload 私有手牌
type DealCardsPayload struct {
	Cards []CardInfo `json:"cards"`
	Seq   uint64     `json:"seq"`
}

// BluffResultPayload 质疑结果
type BluffResultPayload struct {
	CallerID      string     `json:"caller_id"`
	ClaimantID    string     `json:"claimant_id"`
	ClaimedValue  string     `json:"claimed_value"`
	RevealedCards []CardInfo `json:"revealed_cards"`
	ClaimHeld     bool       `json:"claim_held"`
	ReceiverID    string     `json:"receiver_id"`
	PileSize      int        `json:"pile_size"`
}

// WinnerInfo 获胜者
type WinnerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	RoomCode string     `json:"room_code"`
	Winner   WinnerInfo `json:"winner"`
}

// StatsResultPayload 个人统计结果
type StatsResultPayload struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	BluffCalls    int     `json:"bluff_calls"`
	BluffsCaught  int     `json:"bluffs_caught"`
	PilesTaken    int     `json:"piles_taken"`
	Score         int     `json:"score"`
	Rank          int64   `json:"rank"`
	CurrentStreak int     `json:"current_streak"`
	MaxWinStreak  int     `json:"max_win_streak"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Type    string             `json:"type"`
	Entries []LeaderboardEntry `json:"entries"`
}

// ErrorPayload 错误
type ErrorPayload struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
