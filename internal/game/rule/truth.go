package rule

import "github.com/palemoky/bluff/internal/game/card"

// TruthMode 质疑时判定声明真假的方式
type TruthMode int

const (
	// TruthAny 打出的牌中只要有一张与声明点数相同即视为真
	TruthAny TruthMode = iota
	// TruthAll 打出的牌必须全部与声明点数相同
	TruthAll
)

func (m TruthMode) String() string {
	if m == TruthAll {
		return "all"
	}
	return "any"
}

// ClaimHolds 判定最近一次声明是否属实
func ClaimHolds(cards []card.Card, claimed card.Value, mode TruthMode) bool {
	if len(cards) == 0 || claimed == "" {
		return false
	}

	matched := 0
	for _, c := range cards {
		if c.Value == claimed {
			matched++
		}
	}

	if mode == TruthAll {
		return matched == len(cards)
	}
	return matched > 0
}
