package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/palemoky/bluff/internal/protocol"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown       Kind = iota
	KindValidation         // 输入不合法：没轮到、声明缺失、用户名重复
	KindRuleViolation      // 违反规则：接牌不合法、出了不属于自己的牌
	KindNotFound           // 房间或玩家不存在
	KindCapacity           // 房间已满、人数不对
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindValidation:    "validation",
	KindRuleViolation: "rule_violation",
	KindNotFound:      "not_found",
	KindCapacity:      "capacity",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// GameError 游戏错误（房间和对局共享）
//
// 预定义错误作为哨兵值使用，With* 返回带上下文的副本，errors.Is 按 Code 比较。
type GameError struct {
	Kind    Kind
	Code    int
	Message string

	Room   string // 房间号
	Player string // 玩家 ID
	Value  string // 相关的点数或牌
}

func (e *GameError) Error() string {
	var fields []string
	if e.Room != "" {
		fields = append(fields, "room="+e.Room)
	}
	if e.Player != "" {
		fields = append(fields, "player="+e.Player)
	}
	if e.Value != "" {
		fields = append(fields, "value="+e.Value)
	}
	if len(fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(fields, " "))
}

// Is 按错误码匹配
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	return ok && t.Code == e.Code
}

// WithRoom 附加房间号
func (e *GameError) WithRoom(code string) *GameError {
	c := *e
	c.Room = code
	return &c
}

// WithPlayer 附加玩家 ID
func (e *GameError) WithPlayer(id string) *GameError {
	c := *e
	c.Player = id
	return &c
}

// WithValue 附加点数或牌
func (e *GameError) WithValue(v string) *GameError {
	c := *e
	c.Value = v
	return &c
}

func newError(kind Kind, code int) *GameError {
	return &GameError{Kind: kind, Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrUsernameRequired = newError(KindValidation, protocol.ErrCodeUsernameRequired)
	ErrRoomCodeRequired = newError(KindValidation, protocol.ErrCodeRoomCodeRequired)
	ErrNotYourTurn      = newError(KindValidation, protocol.ErrCodeNotYourTurn)
	ErrMissingClaim     = newError(KindValidation, protocol.ErrCodeMissingClaim)
	ErrInvalidClaim     = newError(KindValidation, protocol.ErrCodeInvalidClaim)
	ErrNoCards          = newError(KindValidation, protocol.ErrCodeNoCards)
	ErrDuplicateUser    = newError(KindValidation, protocol.ErrCodeDuplicateUser)
	ErrUsernameTaken    = newError(KindValidation, protocol.ErrCodeUsernameTaken)
	ErrGameNotStarted   = newError(KindValidation, protocol.ErrCodeGameNotStarted)
	ErrNoActiveClaim    = newError(KindValidation, protocol.ErrCodeNoActiveClaim)
	ErrOwnClaim         = newError(KindValidation, protocol.ErrCodeOwnClaim)
	ErrDuplicateCards   = newError(KindValidation, protocol.ErrCodeDuplicateCards)

	ErrIllegalPlacement = newError(KindRuleViolation, protocol.ErrCodeIllegalPlacement)
	ErrNotOwned         = newError(KindRuleViolation, protocol.ErrCodeNotOwned)

	ErrRoomNotFound   = newError(KindNotFound, protocol.ErrCodeRoomNotFound)
	ErrPlayerNotFound = newError(KindNotFound, protocol.ErrCodePlayerNotFound)
	ErrNotInRoom      = newError(KindNotFound, protocol.ErrCodeNotInRoom)

	ErrInvalidToken = newError(KindValidation, protocol.ErrCodeInvalidToken)
	ErrSeatOnline   = newError(KindCapacity, protocol.ErrCodeSeatOnline)

	ErrRoomFull           = newError(KindCapacity, protocol.ErrCodeRoomFull)
	ErrInvalidPlayerCount = newError(KindCapacity, protocol.ErrCodeInvalidPlayerCount)
	ErrGameStarted        = newError(KindCapacity, protocol.ErrCodeGameStarted)
)

// As 提取 GameError
func As(err error) (*GameError, bool) {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr, true
	}
	return nil, false
}

// KindOf 返回错误分类，非 GameError 返回 KindUnknown
func KindOf(err error) Kind {
	if gameErr, ok := As(err); ok {
		return gameErr.Kind
	}
	return KindUnknown
}
