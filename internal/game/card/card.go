package card

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Suit 花色
type Suit string

// Value 点数
type Value string

// Card 一张牌，ID 由点数和花色拼接而成，在一副牌中唯一
type Card struct {
	ID    string `json:"id"`
	Suit  Suit   `json:"suit"`
	Value Value  `json:"value"`
}

const (
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
	Spades   Suit = "♠"
)

const (
	Value2  Value = "2"
	Value3  Value = "3"
	Value4  Value = "4"
	Value5  Value = "5"
	Value6  Value = "6"
	Value7  Value = "7"
	Value8  Value = "8"
	Value9  Value = "9"
	Value10 Value = "10"
	ValueJ  Value = "J"
	ValueQ  Value = "Q"
	ValueK  Value = "K"
	ValueA  Value = "A"
)

// DeckSize 一副牌的张数
const DeckSize = 52

// Suits 花色顺序（发牌顺序按花色优先）
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Values 点数的全序：2 < 3 < ... < K < A
var Values = []Value{
	Value2, Value3, Value4, Value5, Value6, Value7, Value8,
	Value9, Value10, ValueJ, ValueQ, ValueK, ValueA,
}

var valueIndex = func() map[Value]int {
	m := make(map[Value]int, len(Values))
	for i, v := range Values {
		m[v] = i
	}
	return m
}()

// Index 返回点数在全序中的位置，未知点数返回 -1
func (v Value) Index() int {
	if i, ok := valueIndex[v]; ok {
		return i
	}
	return -1
}

// Valid 是否为 13 种点数之一
func (v Value) Valid() bool {
	_, ok := valueIndex[v]
	return ok
}

// Next 返回下一个点数，A 之后回到 2
func (v Value) Next() Value {
	i := v.Index()
	if i < 0 {
		return ""
	}
	return Values[(i+1)%len(Values)]
}

// ParseValue 解析点数字符串
func ParseValue(s string) (Value, error) {
	v := Value(s)
	if !v.Valid() {
		return "", fmt.Errorf("无法识别的点数: %q", s)
	}
	return v, nil
}

// Valid 是否为四种花色之一
func (s Suit) Valid() bool {
	return slices.Contains(Suits, s)
}

// ParseID 按 ID（点数+花色，如 10♥）解析一张牌
func ParseID(id string) (Card, error) {
	for _, suit := range Suits {
		value, ok := strings.CutSuffix(id, string(suit))
		if !ok {
			continue
		}
		if !Value(value).Valid() {
			break
		}
		return New(suit, Value(value)), nil
	}
	return Card{}, fmt.Errorf("无法识别的牌: %q", id)
}

// New 创建一张牌
func New(suit Suit, value Value) Card {
	return Card{ID: string(value) + string(suit), Suit: suit, Value: value}
}

func (c Card) String() string {
	return c.ID
}

// Rand 洗牌所需的随机源，*rand.Rand 满足该接口
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand 并发安全的全局随机源
var DefaultRand Rand = globalRand{}

// Deck 一副牌
type Deck []Card

// NewDeck 按花色优先、点数其次的顺序生成 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for _, v := range Values {
			deck = append(deck, New(s, v))
		}
	}
	return deck
}

// Shuffle Fisher-Yates 原地洗牌，从最后一位向前与 [0, i] 中随机一位交换
func (d Deck) Shuffle(r Rand) Deck {
	if r == nil {
		r = DefaultRand
	}
	for i := len(d) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
	return d
}

// Clone 复制一份牌
func Clone(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return slices.Clone(cards)
}

// IDs 返回牌的 ID 列表
func IDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// IndexOf 按 ID 查找牌的位置
func IndexOf(cards []Card, id string) int {
	return slices.IndexFunc(cards, func(c Card) bool { return c.ID == id })
}

// ContainsAll 检查 hand 是否包含 cards 中所有的牌（按 ID）
func ContainsAll(hand, cards []Card) bool {
	for _, c := range cards {
		if IndexOf(hand, c.ID) < 0 {
			return false
		}
	}
	return true
}

// Remove 从 hand 中移除 cards（按 ID），返回新的手牌和实际移除的牌
func Remove(hand, cards []Card) (rest, removed []Card) {
	rest = slices.Clone(hand)
	removed = make([]Card, 0, len(cards))
	for _, c := range cards {
		if i := IndexOf(rest, c.ID); i >= 0 {
			removed = append(removed, rest[i])
			rest = slices.Delete(rest, i, i+1)
		}
	}
	return rest, removed
}
