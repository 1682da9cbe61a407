package engine

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/game/room"
	"github.com/palemoky/bluff/internal/game/rule"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Engine 对局状态机
//
// 所有方法都是同步的，调用方需持有房间锁（room.Manager.WithRoom）。
type Engine struct {
	rng    card.Rand
	truth  rule.TruthMode
	logger *zap.Logger
	now    func() time.Time
}

// Option Engine 选项
type Option func(*Engine)

// WithRand 替换随机源
func WithRand(r card.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithTruthMode 设置质疑判定方式
func WithTruthMode(mode rule.TruthMode) Option {
	return func(e *Engine) { e.truth = mode }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New 创建状态机
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		rng:    card.DefaultRand,
		truth:  rule.TruthAny,
		logger: logger.Named("engine"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TruthMode 当前质疑判定方式
func (e *Engine) TruthMode() rule.TruthMode {
	return e.truth
}

// StartGame 洗牌、翻开底牌并发牌
//
// 底牌从洗好的牌中随机抽出并移除，剩余 51 张按加入顺序轮流发出。
func (e *Engine) StartGame(r *room.Room) error {
	if r.GameStarted() {
		return apperrors.ErrGameStarted.WithRoom(r.Code)
	}
	n := len(r.Players)
	if n < MinPlayers || n > MaxPlayers {
		return apperrors.ErrInvalidPlayerCount.WithRoom(r.Code)
	}

	deck := card.NewDeck().Shuffle(e.rng)
	seedIdx := e.rng.IntN(len(deck))
	seed := deck[seedIdx]
	deck = slices.Delete(deck, seedIdx, seedIdx+1)

	for _, p := range r.Players {
		p.Hand = make([]card.Card, 0, len(deck)/n+1)
	}
	for i, c := range deck {
		p := r.Players[i%n]
		p.Hand = append(p.Hand, c)
	}
	for _, p := range r.Players {
		p.InitialCardCount = len(p.Hand)
	}

	r.ClearClaim()
	r.CurrentPile = []card.Card{seed}
	r.CurrentPlayer = r.Players[0].ID
	r.State = room.StateInProgress
	r.Touch(e.now())

	e.logger.Info("🎮 游戏开始",
		zap.String("room", r.Code),
		zap.Int("players", n),
		zap.String("seed_card", seed.ID),
		zap.String("current_player", r.CurrentPlayer))

	return nil
}

// NextPlayer 返回 currentID 之后的玩家 ID（循环）
//
// currentID 不在房间中时返回第一个玩家。
func NextPlayer(r *room.Room, currentID string) string {
	if len(r.Players) == 0 {
		return ""
	}
	idx := r.PlayerIndex(currentID)
	return r.Players[(idx+1)%len(r.Players)].ID
}

// PlayCards 出牌并声明点数，失败时不修改房间
func (e *Engine) PlayCards(r *room.Room, playerID string, cards []card.Card, claimed card.Value) error {
	if claimed == "" {
		return apperrors.ErrMissingClaim.WithRoom(r.Code).WithPlayer(playerID)
	}
	if !rule.IsLegalPlacement(r.CurrentPile, claimed) {
		return apperrors.ErrIllegalPlacement.WithRoom(r.Code).WithPlayer(playerID).WithValue(string(claimed))
	}
	if len(cards) == 0 {
		return apperrors.ErrNoCards.WithRoom(r.Code).WithPlayer(playerID)
	}

	p := r.Player(playerID)
	if p == nil {
		return apperrors.ErrPlayerNotFound.WithRoom(r.Code).WithPlayer(playerID)
	}
	if !card.ContainsAll(p.Hand, cards) {
		return apperrors.ErrNotOwned.WithRoom(r.Code).WithPlayer(playerID)
	}

	rest, removed := card.Remove(p.Hand, cards)
	if len(removed) != len(cards) {
		return apperrors.ErrDuplicateCards.WithRoom(r.Code).WithPlayer(playerID)
	}

	p.Hand = rest
	r.CurrentPile = append(r.CurrentPile, removed...)
	r.CurrentClaimedValue = claimed
	r.CurrentClaimedCards = card.Clone(removed)
	r.LastPlayerID = playerID
	r.Touch(e.now())

	e.logger.Debug("🃏 出牌",
		zap.String("room", r.Code),
		zap.String("player", playerID),
		zap.String("claimed_value", string(claimed)),
		zap.Int("card_count", len(removed)),
		zap.Int("pile_count", len(r.CurrentPile)))

	return nil
}

// Play 出牌后轮到下一位玩家
func (e *Engine) Play(r *room.Room, playerID string, cards []card.Card, claimed card.Value) error {
	if err := e.PlayCards(r, playerID, cards, claimed); err != nil {
		return err
	}
	r.CurrentPlayer = NextPlayer(r, playerID)
	return nil
}

// BluffResult 质疑结果
type BluffResult struct {
	CallerID      string
	ClaimantID    string
	ClaimedValue  card.Value
	RevealedCards []card.Card // 被质疑的实际出牌
	ClaimHeld     bool        // 声明属实，质疑者收牌
	ReceiverID    string      // 收走牌堆的玩家
	PileSize      int
}

// ResolveBluffCall 结算质疑，不改变出牌顺序
func (e *Engine) ResolveBluffCall(r *room.Room, callerID string) (BluffResult, error) {
	if !r.HasClaim() {
		return BluffResult{}, apperrors.ErrNoActiveClaim.WithRoom(r.Code).WithPlayer(callerID)
	}

	caller := r.Player(callerID)
	if caller == nil {
		return BluffResult{}, apperrors.ErrPlayerNotFound.WithRoom(r.Code).WithPlayer(callerID)
	}
	claimant := r.Player(r.LastPlayerID)
	if claimant == nil {
		return BluffResult{}, apperrors.ErrNoActiveClaim.WithRoom(r.Code).WithPlayer(callerID)
	}

	held := rule.ClaimHolds(r.CurrentClaimedCards, r.CurrentClaimedValue, e.truth)
	receiver := claimant
	if held {
		receiver = caller
	}

	result := BluffResult{
		CallerID:      caller.ID,
		ClaimantID:    claimant.ID,
		ClaimedValue:  r.CurrentClaimedValue,
		RevealedCards: card.Clone(r.CurrentClaimedCards),
		ClaimHeld:     held,
		ReceiverID:    receiver.ID,
		PileSize:      len(r.CurrentPile),
	}

	receiver.Hand = append(receiver.Hand, r.CurrentPile...)
	r.ClearClaim()
	r.Touch(e.now())

	e.logger.Info("🔍 质疑结算",
		zap.String("room", r.Code),
		zap.String("caller", result.CallerID),
		zap.String("claimant", result.ClaimantID),
		zap.String("claimed_value", string(result.ClaimedValue)),
		zap.Bool("claim_held", held),
		zap.String("receiver", result.ReceiverID),
		zap.Int("pile_count", result.PileSize),
		zap.String("truth_mode", e.truth.String()))

	return result, nil
}

// CheckGameOver 只剩一名玩家有手牌时结束对局并返回该玩家
func (e *Engine) CheckGameOver(r *room.Room) *room.Player {
	var holder *room.Player
	for _, p := range r.Players {
		if len(p.Hand) == 0 {
			continue
		}
		if holder != nil {
			return nil
		}
		holder = p
	}
	if holder == nil {
		return nil
	}

	r.State = room.StateFinished
	r.Touch(e.now())

	e.logger.Info("🏆 游戏结束",
		zap.String("room", r.Code),
		zap.String("winner", holder.ID),
		zap.String("username", holder.Username))

	return holder
}
