package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/bluff/internal/client"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/ui/common"
)

// GameHelp 对局中可用命令
func GameHelp() string {
	return common.GrayStyle.Render("play <声明点数> <牌...>  牌可写作 10H / QS 或手牌序号    bluff  质疑上一手    quit  退出")
}

// WaitingView 等待其他玩家入座
func WaitingView(width int, gs *client.GameState) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("⏳ 等待玩家加入")))
	sb.WriteString("\n\n")

	var box strings.Builder
	fmt.Fprintf(&box, "房间号: %s\n", gs.RoomCode())
	box.WriteString("已入座:")
	for _, p := range gs.Players() {
		fmt.Fprintf(&box, " %s", p.Username)
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(box.String())))
	return sb.String()
}

// GameView 对局画面：玩家列表、桌面、手牌和提示
func GameView(width int, gs *client.GameState, userID string) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("🃏 房间 "+gs.RoomCode())))
	sb.WriteString("\n\n")
	sb.WriteString(renderPlayers(gs, userID))
	sb.WriteString("\n")
	sb.WriteString(renderTable(gs))
	sb.WriteString("\n")

	if last := gs.LastBluff(); last != nil {
		sb.WriteString(RenderBluffResult(last, gs.Players()))
		sb.WriteString("\n")
	}

	sb.WriteString(common.TitleStyle("我的手牌"))
	sb.WriteString("\n")
	sb.WriteString(RenderHand(gs.Hand()))
	sb.WriteString("\n")

	switch {
	case gs.IsMyTurn(userID):
		claims := make([]string, 0, 3)
		for _, v := range gs.LegalClaims() {
			claims = append(claims, string(v))
		}
		hint := "轮到你出牌，可声明: " + strings.Join(claims, " / ")
		if gs.CanCallBluff(userID) {
			hint += "，或输入 bluff 质疑"
		}
		sb.WriteString(common.TurnStyle.Render(hint))
	case gs.CanCallBluff(userID):
		sb.WriteString(common.TurnStyle.Render("可以输入 bluff 质疑上一手声明"))
	default:
		sb.WriteString(common.GrayStyle.Render("等待 " + nameOf(gs.Players(), gs.CurrentPlayer()) + " 出牌"))
	}
	sb.WriteString("\n")
	sb.WriteString(GameHelp())
	return sb.String()
}

// GameOverView 对局结束
func GameOverView(width int, winner *protocol.WinnerInfo, userID string) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle(common.WinnerIcon+" 游戏结束")))
	sb.WriteString("\n\n")

	result := "获胜者: " + winner.Username
	if winner.ID == userID {
		result = "🎉 你赢了！"
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.BoxStyle.Render(result)))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "按回车返回大厅"))
	return sb.String()
}

func renderPlayers(gs *client.GameState, userID string) string {
	var sb strings.Builder
	current := gs.CurrentPlayer()
	for _, p := range gs.Players() {
		marker := "  "
		if p.ID == current {
			marker = common.TurnIcon
		}
		name := p.Username
		if p.ID == userID {
			name += " (我)"
		}
		line := fmt.Sprintf("%s %-16s %2d 张", marker, name, p.CardCount)
		if p.ID == current {
			line = common.TurnStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderTable(gs *client.GameState) string {
	value, claimant := gs.ClaimedValue()
	text := fmt.Sprintf("桌面 %d 张", gs.PileCount())
	if value != "" {
		text += fmt.Sprintf("  当前声明: %s (%s)", value, nameOf(gs.Players(), claimant))
	}
	return common.BoxStyle.Render(text)
}

// RenderBluffResult 质疑结果
func RenderBluffResult(p *protocol.BluffResultPayload, players []protocol.PlayerInfo) string {
	verdict := common.ErrorStyle.Render("声明为假")
	if p.ClaimHeld {
		verdict = common.NoticeStyle.Render("声明属实")
	}
	return fmt.Sprintf("🔍 %s 质疑 %s 的 %s：%s，亮出 %s，%s 收走 %d 张",
		nameOf(players, p.CallerID), nameOf(players, p.ClaimantID), p.ClaimedValue,
		verdict, cardIDs(p.RevealedCards), nameOf(players, p.ReceiverID), p.PileSize)
}

// RenderHand 手牌分两行：序号和牌面，序号从 1 开始
func RenderHand(hand []card.Card) string {
	if len(hand) == 0 {
		return common.GrayStyle.Render("(无手牌)")
	}

	var idx, faces strings.Builder
	for i, c := range hand {
		face := fmt.Sprintf("%-3s", c.ID)
		cell := lipgloss.Width(face) + 1
		idx.WriteString(fmt.Sprintf("%-*d", cell, i+1))
		faces.WriteString(common.CardStyle(c.Suit).Render(face))
		faces.WriteString(" ")
	}
	return idx.String() + "\n" + faces.String()
}

func cardIDs(cards []protocol.CardInfo) string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return strings.Join(ids, " ")
}

func nameOf(players []protocol.PlayerInfo, id string) string {
	for _, p := range players {
		if p.ID == id {
			return p.Username
		}
	}
	return id
}
