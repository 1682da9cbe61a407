// Package common 终端界面共用的样式
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/bluff/internal/game/card"
)

const (
	TurnIcon   = "👉"
	WinnerIcon = "🏆"
)

var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	RedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	GrayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	TurnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// CardStyle 红桃和方块用红色
func CardStyle(s card.Suit) lipgloss.Style {
	if s == card.Hearts || s == card.Diamonds {
		return RedStyle
	}
	return BlackStyle
}
