package convert

import (
	"github.com/palemoky/bluff/internal/game/engine"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/server/storage"
)

// PlayerToInfo 公开的玩家信息
func PlayerToInfo(p room.PlayerView) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:        p.ID,
		Username:  p.Username,
		CardCount: len(p.Hand),
	}
}

// SnapshotToGameState 房间快照转换为公开状态，不包含任何手牌
func SnapshotToGameState(s room.Snapshot) protocol.GameStatePayload {
	players := make([]protocol.PlayerInfo, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerToInfo(p)
	}

	return protocol.GameStatePayload{
		RoomCode:            s.Code,
		Players:             players,
		CurrentPlayer:       s.CurrentPlayer,
		CurrentPile:         CardsToInfos(s.CurrentPile),
		PileCount:           len(s.CurrentPile),
		CurrentClaimedValue: string(s.CurrentClaimedValue),
		LastPlayerID:        s.LastPlayerID,
		GameStarted:         s.GameStarted(),
		Seq:                 s.Version,
	}
}

// HandToDealCards 玩家的私有手牌，seq 与同一快照的 game_state 相同
func HandToDealCards(p room.PlayerView, seq uint64) protocol.DealCardsPayload {
	return protocol.DealCardsPayload{Cards: CardsToInfos(p.Hand), Seq: seq}
}

// BluffResultToPayload 质疑结果
func BluffResultToPayload(r engine.BluffResult) protocol.BluffResultPayload {
	return protocol.BluffResultPayload{
		CallerID:      r.CallerID,
		ClaimantID:    r.ClaimantID,
		ClaimedValue:  string(r.ClaimedValue),
		RevealedCards: CardsToInfos(r.RevealedCards),
		ClaimHeld:     r.ClaimHeld,
		ReceiverID:    r.ReceiverID,
		PileSize:      r.PileSize,
	}
}

// WinnerToPayload 游戏结束
func WinnerToPayload(code string, p *room.Player) protocol.GameOverPayload {
	return protocol.GameOverPayload{
		RoomCode: code,
		Winner:   protocol.WinnerInfo{ID: p.ID, Username: p.Username},
	}
}

// StatsToPayload 个人统计
func StatsToPayload(stats *storage.PlayerStats, rank int64) protocol.StatsResultPayload {
	winRate := 0.0
	if stats.TotalGames > 0 {
		winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
	}
	return protocol.StatsResultPayload{
		PlayerID:      stats.PlayerID,
		PlayerName:    stats.PlayerName,
		TotalGames:    stats.TotalGames,
		Wins:          stats.Wins,
		Losses:        stats.Losses,
		WinRate:       winRate,
		BluffCalls:    stats.BluffCalls,
		BluffsCaught:  stats.BluffsCaught,
		PilesTaken:    stats.PilesTaken,
		Score:         stats.Score,
		Rank:          rank,
		CurrentStreak: stats.CurrentStreak,
		MaxWinStreak:  stats.MaxWinStreak,
	}
}

// LeaderboardToPayload 排行榜
func LeaderboardToPayload(typ string, entries []*storage.LeaderboardEntry) protocol.LeaderboardResultPayload {
	out := make([]protocol.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = protocol.LeaderboardEntry{
			Rank:       e.Rank,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Score:      e.Score,
			Wins:       e.Wins,
			WinRate:    e.WinRate,
		}
	}
	return protocol.LeaderboardResultPayload{Type: typ, Entries: out}
}
