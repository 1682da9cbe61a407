package convert

import (
	"fmt"

	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		ID:    c.ID,
		Suit:  string(c.Suit),
		Value: string(c.Value),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card
//
// 只有 ID 时按 ID 解析；ID 总是由点数和花色重新生成。
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	suit, value := card.Suit(info.Suit), card.Value(info.Value)
	if suit == "" && value == "" {
		return card.ParseID(info.ID)
	}
	if !value.Valid() {
		return card.Card{}, fmt.Errorf("无效的点数: %q", info.Value)
	}
	if !suit.Valid() {
		return card.Card{}, fmt.Errorf("无效的花色: %q", info.Suit)
	}
	return card.New(suit, value), nil
}

// InfosToCards 将 []protocol.CardInfo 转换为 []card.Card
func InfosToCards(infos []protocol.CardInfo) ([]card.Card, error) {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		c, err := InfoToCard(info)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}
