package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/palemoky/bluff/internal/game/card"
)

var (
	errUsage = errors.New("参数错误，输入 help 查看用法")
	errQuit  = errors.New("quit")
)

// suitLetters 终端里不便输入花色符号，允许用字母代替
var suitLetters = map[string]card.Suit{
	"H": card.Hearts,
	"D": card.Diamonds,
	"C": card.Clubs,
	"S": card.Spades,
}

// exec 执行一行命令，返回 errQuit 表示退出
func (m *Model) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "help", "?":
		m.showHelp = !m.showHelp
		return nil
	case "create":
		if len(args) != 1 {
			return errUsage
		}
		m.username = args[0]
		return m.client.CreateRoom(m.userID, args[0])
	case "join":
		if len(args) != 2 {
			return errUsage
		}
		m.username = args[1]
		return m.client.JoinRoom(strings.ToUpper(args[0]), m.userID, args[1])
	case "check":
		if len(args) != 1 {
			return errUsage
		}
		return m.client.CheckRoom(strings.ToUpper(args[0]))
	case "reconnect":
		if len(args) != 2 {
			return errUsage
		}
		return m.client.Reconnect(strings.ToUpper(args[0]), m.userID, args[1])
	case "play":
		if len(args) < 2 {
			return errUsage
		}
		claimed, err := card.ParseValue(strings.ToUpper(args[0]))
		if err != nil {
			return err
		}
		cards, err := parseCards(args[1:], m.state.Hand())
		if err != nil {
			return err
		}
		return m.client.PlayCards(cards, claimed)
	case "bluff":
		return m.client.CallBluff()
	case "stats":
		return m.client.GetStats()
	case "board":
		kind := "total"
		if len(args) > 0 {
			kind = strings.ToLower(args[0])
		}
		return m.client.GetLeaderboard(kind, 0, 10)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("未知命令: %s", fields[0])
	}
}

// parseCards 解析出牌参数：牌 ID（花色可用字母）或从 1 开始的手牌序号
func parseCards(tokens []string, hand []card.Card) ([]card.Card, error) {
	cards := make([]card.Card, 0, len(tokens))
	for _, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			if n < 1 || n > len(hand) {
				return nil, fmt.Errorf("手牌序号超出范围: %d", n)
			}
			cards = append(cards, hand[n-1])
			continue
		}

		id := strings.ToUpper(tok)
		for letter, suit := range suitLetters {
			if value, ok := strings.CutSuffix(id, letter); ok {
				id = value + string(suit)
				break
			}
		}
		cd, err := card.ParseID(id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, cd)
	}
	return cards, nil
}
