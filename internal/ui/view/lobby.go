// Package view 终端界面的渲染函数，只读取状态不修改
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/ui/common"
)

// LobbyHelp 大厅可用命令
func LobbyHelp() string {
	var sb strings.Builder
	sb.WriteString("create <昵称>              创建房间\n")
	sb.WriteString("join <房间号> <昵称>        加入房间\n")
	sb.WriteString("check <房间号>             查询房间是否存在\n")
	sb.WriteString("reconnect <房间号> <凭证>   断线后重新入座\n")
	sb.WriteString("stats                      我的战绩\n")
	sb.WriteString("board [total|daily|weekly] 排行榜\n")
	sb.WriteString("quit                       退出")
	return common.BoxStyle.Render(sb.String())
}

// LobbyView 大厅
func LobbyView(width int, userID string) string {
	var sb strings.Builder

	title := common.TitleStyle("🃏 吹牛牌")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, title))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fmt.Sprintf("用户 ID: %s", userID)))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, LobbyHelp()))
	return sb.String()
}

// StatsView 个人战绩
func StatsView(p *protocol.StatsResultPayload) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("📊 我的战绩"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "玩家: %s\n", p.PlayerName)
	fmt.Fprintf(&sb, "对局: %d  胜: %d  负: %d  胜率: %.1f%%\n", p.TotalGames, p.Wins, p.Losses, p.WinRate)
	fmt.Fprintf(&sb, "质疑: %d  成功: %d  收牌: %d\n", p.BluffCalls, p.BluffsCaught, p.PilesTaken)
	fmt.Fprintf(&sb, "积分: %d  排名: %s  最高连胜: %d", p.Score, rankText(p.Rank), p.MaxWinStreak)
	return common.BoxStyle.Render(sb.String())
}

// LeaderboardView 排行榜
func LeaderboardView(p *protocol.LeaderboardResultPayload) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(common.TitleStyle(fmt.Sprintf("🏅 排行榜 (%s)", p.Type)))
	sb.WriteString("\n\n")
	if len(p.Entries) == 0 {
		sb.WriteString("暂无数据")
	}
	for i, e := range p.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%2d. %-12s %6d 分  胜 %d  胜率 %.1f%%", e.Rank, e.PlayerName, e.Score, e.Wins, e.WinRate)
	}
	return common.BoxStyle.Render(sb.String())
}

func rankText(rank int64) string {
	if rank <= 0 {
		return "未上榜"
	}
	return fmt.Sprintf("%d", rank)
}
