package rule

import (
	"slices"

	"github.com/palemoky/bluff/internal/game/card"
)

// specialTransitions A/K/2 之间额外允许的接牌
var specialTransitions = map[card.Value][]card.Value{
	card.ValueA: {card.Value2, card.ValueK},
	card.ValueK: {card.ValueA, card.Value2},
	card.Value2: {card.Value3, card.ValueA},
}

// IsLegalPlacement 判断声明的点数能否接在牌堆顶之后
//
// 只看声明的点数，不看实际打出的牌：牌堆为空时任意点数都可以；
// 否则必须是堆顶点数的下一个（A 之后回到 2），或命中特殊接牌表。
func IsLegalPlacement(pile []card.Card, claimed card.Value) bool {
	if !claimed.Valid() {
		return false
	}
	if len(pile) == 0 {
		return true
	}

	last := pile[len(pile)-1].Value
	if slices.Contains(specialTransitions[last], claimed) {
		return true
	}
	return last.Next() == claimed
}

// LegalClaims 返回当前牌堆下所有合法的声明点数（按点数顺序）
func LegalClaims(pile []card.Card) []card.Value {
	legal := make([]card.Value, 0, 3)
	for _, v := range card.Values {
		if IsLegalPlacement(pile, v) {
			legal = append(legal, v)
		}
	}
	return legal
}
