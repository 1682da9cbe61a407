// Package validation 校验客户端命令，在调用状态机之前拒绝不合法的输入
package validation

import (
	"strings"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/game/rule"
)

// ValidateCreateRoom 校验创建房间
func ValidateCreateRoom(username string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.ErrUsernameRequired
	}
	return nil
}

// ValidateJoinRoom 校验加入房间的参数
func ValidateJoinRoom(userID, username, code string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(userID) == "" {
		return apperrors.ErrUsernameRequired
	}
	if strings.TrimSpace(code) == "" {
		return apperrors.ErrRoomCodeRequired
	}
	return nil
}

// UniqueMember 同一用户不能重复加入，用户名在房间内唯一
func UniqueMember(userID, username string) room.JoinCheck {
	return func(r *room.Room) error {
		if r.Player(userID) != nil {
			return apperrors.ErrDuplicateUser.WithRoom(r.Code).WithPlayer(userID)
		}
		if r.PlayerByUsername(username) != nil {
			return apperrors.ErrUsernameTaken.WithRoom(r.Code).WithValue(username)
		}
		return nil
	}
}

// ValidateCardPlay 校验出牌，调用方持有房间锁
func ValidateCardPlay(r *room.Room, playerID string, cards []card.Card, claimed card.Value) error {
	if r.State != room.StateInProgress {
		return apperrors.ErrGameNotStarted.WithRoom(r.Code)
	}
	p := r.Player(playerID)
	if p == nil {
		return apperrors.ErrNotInRoom.WithRoom(r.Code).WithPlayer(playerID)
	}
	if r.CurrentPlayer != playerID {
		return apperrors.ErrNotYourTurn.WithRoom(r.Code).WithPlayer(playerID)
	}
	if len(cards) == 0 {
		return apperrors.ErrNoCards.WithRoom(r.Code).WithPlayer(playerID)
	}
	if claimed == "" {
		return apperrors.ErrMissingClaim.WithRoom(r.Code).WithPlayer(playerID)
	}
	if !claimed.Valid() {
		return apperrors.ErrInvalidClaim.WithRoom(r.Code).WithPlayer(playerID).WithValue(string(claimed))
	}

	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			return apperrors.ErrDuplicateCards.WithRoom(r.Code).WithPlayer(playerID).WithValue(c.ID)
		}
		seen[c.ID] = true

		if card.IndexOf(p.Hand, c.ID) < 0 {
			return apperrors.ErrNotOwned.WithRoom(r.Code).WithPlayer(playerID).WithValue(c.ID)
		}
	}

	if !rule.IsLegalPlacement(r.CurrentPile, claimed) {
		return apperrors.ErrIllegalPlacement.WithRoom(r.Code).WithPlayer(playerID).WithValue(string(claimed))
	}
	return nil
}

// ValidateBluffCall 校验质疑，调用方持有房间锁
func ValidateBluffCall(r *room.Room, callerID string) error {
	if r.State != room.StateInProgress {
		return apperrors.ErrGameNotStarted.WithRoom(r.Code)
	}
	if r.Player(callerID) == nil {
		return apperrors.ErrNotInRoom.WithRoom(r.Code).WithPlayer(callerID)
	}
	if !r.HasClaim() || len(r.CurrentPile) == 0 {
		return apperrors.ErrNoActiveClaim.WithRoom(r.Code).WithPlayer(callerID)
	}
	if r.LastPlayerID == callerID {
		return apperrors.ErrOwnClaim.WithRoom(r.Code).WithPlayer(callerID)
	}
	return nil
}
