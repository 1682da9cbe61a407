package room

// State 房间状态
type State int

const (
	StateLobby      State = iota // 等待玩家
	StateInProgress              // 对局中
	StateFinished                // 已结束
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}
