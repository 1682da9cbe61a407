package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002 // 速率限制

	// 参数校验
	ErrCodeUsernameRequired = 1101
	ErrCodeRoomCodeRequired = 1102
	ErrCodeNotYourTurn      = 1103
	ErrCodeMissingClaim     = 1104
	ErrCodeInvalidClaim     = 1105
	ErrCodeNoCards          = 1106
	ErrCodeDuplicateUser    = 1107
	ErrCodeUsernameTaken    = 1108
	ErrCodeGameNotStarted   = 1109
	ErrCodeNoActiveClaim    = 1110
	ErrCodeOwnClaim         = 1111
	ErrCodeDuplicateCards   = 1112

	// 规则
	ErrCodeIllegalPlacement = 3001
	ErrCodeNotOwned         = 3002

	// 不存在
	ErrCodeRoomNotFound   = 2001
	ErrCodePlayerNotFound = 2002
	ErrCodeNotInRoom      = 2003

	// 重连
	ErrCodeInvalidToken = 2101
	ErrCodeSeatOnline   = 2102

	// 容量
	ErrCodeRoomFull           = 4001
	ErrCodeInvalidPlayerCount = 4002
	ErrCodeGameStarted        = 4003

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:            "未知错误",
	ErrCodeInvalidMsg:         "无效的消息格式",
	ErrCodeRateLimit:          "请求过于频繁",
	ErrCodeUsernameRequired:   "用户名不能为空",
	ErrCodeRoomCodeRequired:   "房间号不能为空",
	ErrCodeNotYourTurn:        "还没轮到您",
	ErrCodeMissingClaim:       "出牌时必须声明点数",
	ErrCodeInvalidClaim:       "无效的声明点数",
	ErrCodeNoCards:            "至少需要出一张牌",
	ErrCodeDuplicateUser:      "您已在房间中",
	ErrCodeUsernameTaken:      "用户名已被占用",
	ErrCodeGameNotStarted:     "游戏尚未开始",
	ErrCodeNoActiveClaim:      "当前没有可质疑的声明",
	ErrCodeOwnClaim:           "不能质疑自己的声明",
	ErrCodeDuplicateCards:     "出牌中包含重复的牌",
	ErrCodeIllegalPlacement:   "出牌不合法，必须按顺序声明点数",
	ErrCodeNotOwned:           "您没有这些牌",
	ErrCodeRoomNotFound:       "房间不存在",
	ErrCodePlayerNotFound:     "玩家不存在",
	ErrCodeNotInRoom:          "您不在房间中",
	ErrCodeInvalidToken:       "重连凭证无效或已过期",
	ErrCodeSeatOnline:         "该座位的连接仍然在线",
	ErrCodeRoomFull:           "房间已满",
	ErrCodeInvalidPlayerCount: "游戏需要 2-4 名玩家",
	ErrCodeGameStarted:        "游戏已开始",
	ErrCodeServerMaintenance:  "服务器维护中",
}
