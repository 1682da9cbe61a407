package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
)

func apply(t *testing.T, gs *GameState, msgType protocol.MessageType, payload any) {
	t.Helper()
	require.NoError(t, gs.Apply(codec.MustNewMessage(msgType, payload)))
}

func TestGameState_TracksServerPushes(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "ABC123", HostID: "a"})
	assert.Equal(t, "ABC123", gs.RoomCode())
	assert.False(t, gs.Started())

	pile := []card.Card{card.New(card.Hearts, card.ValueK)}
	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode:      "ABC123",
		Players:       []protocol.PlayerInfo{{ID: "a", CardCount: 26}, {ID: "b", CardCount: 25}},
		CurrentPlayer: "a",
		CurrentPile:   convert.CardsToInfos(pile),
		PileCount:     1,
		GameStarted:   true,
	})
	hand := []card.Card{card.New(card.Spades, card.Value2), card.New(card.Clubs, card.ValueA)}
	apply(t, gs, protocol.MsgDealCards, protocol.DealCardsPayload{Cards: convert.CardsToInfos(hand)})

	assert.True(t, gs.Started())
	assert.True(t, gs.IsMyTurn("a"))
	assert.False(t, gs.IsMyTurn("b"))
	assert.Equal(t, 1, gs.PileCount())
	assert.Len(t, gs.Players(), 2)
	assert.Equal(t, hand, gs.Hand())
	assert.Equal(t, []card.Value{card.Value2, card.ValueA}, gs.LegalClaims())
	assert.False(t, gs.CanCallBluff("b"), "no claim yet")

	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode:            "ABC123",
		CurrentPlayer:       "b",
		CurrentPile:         convert.CardsToInfos(append(pile, hand[0])),
		CurrentClaimedValue: "A",
		LastPlayerID:        "a",
		GameStarted:         true,
	})
	value, claimant := gs.ClaimedValue()
	assert.Equal(t, card.ValueA, value)
	assert.Equal(t, "a", claimant)
	assert.True(t, gs.CanCallBluff("b"))
	assert.False(t, gs.CanCallBluff("a"))

	apply(t, gs, protocol.MsgBluffResult, protocol.BluffResultPayload{CallerID: "b", ReceiverID: "a"})
	require.NotNil(t, gs.LastBluff())
	assert.Equal(t, "a", gs.LastBluff().ReceiverID)

	apply(t, gs, protocol.MsgGameOver, protocol.GameOverPayload{RoomCode: "ABC123", Winner: protocol.WinnerInfo{ID: "b"}})
	require.NotNil(t, gs.Winner())
	assert.Equal(t, "b", gs.Winner().ID)
	assert.False(t, gs.Started())
}

func TestGameState_RoomCreatedResets(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgGameOver, protocol.GameOverPayload{Winner: protocol.WinnerInfo{ID: "x"}})
	apply(t, gs, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "NEW001"})

	assert.Nil(t, gs.Winner())
	assert.Equal(t, "NEW001", gs.RoomCode())
}

func TestGameState_IgnoresUnrelated(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	assert.NoError(t, gs.Apply(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{})))
	assert.Error(t, gs.Apply(&protocol.Message{Type: protocol.MsgDealCards, Payload: []byte(`{"cards":[{"id":"??"}]}`)}))
}

func TestGameState_SeatGranted(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{RoomCode: "ABC123"})
	apply(t, gs, protocol.MsgSeatGranted, protocol.SeatGrantedPayload{RoomCode: "ABC123", UserID: "a", ReconnectToken: "tok-1"})
	assert.Equal(t, "tok-1", gs.ReconnectToken())
	assert.Equal(t, "ABC123", gs.RoomCode())

	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{RoomCode: "ABC123", Seq: 5})
	assert.Equal(t, uint64(5), gs.Seq())

	// A seat in another room starts a fresh view.
	apply(t, gs, protocol.MsgSeatGranted, protocol.SeatGrantedPayload{RoomCode: "XYZ789", UserID: "a", ReconnectToken: "tok-2"})
	assert.Equal(t, "tok-2", gs.ReconnectToken())
	assert.Zero(t, gs.Seq())
}

func TestGameState_DropsStaleSnapshots(t *testing.T) {
	t.Parallel()

	gs := NewGameState()
	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode: "ABC123", CurrentPlayer: "b", PileCount: 3, GameStarted: true, Seq: 9,
	})
	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode: "ABC123", CurrentPlayer: "a", PileCount: 1, GameStarted: true, Seq: 8,
	})
	assert.Equal(t, "b", gs.CurrentPlayer())
	assert.Equal(t, uint64(9), gs.Seq())

	newer := []card.Card{card.New(card.Spades, card.Value2)}
	older := []card.Card{card.New(card.Spades, card.Value2), card.New(card.Clubs, card.ValueA)}
	apply(t, gs, protocol.MsgDealCards, protocol.DealCardsPayload{Cards: convert.CardsToInfos(newer), Seq: 9})
	apply(t, gs, protocol.MsgDealCards, protocol.DealCardsPayload{Cards: convert.CardsToInfos(older), Seq: 9})
	assert.Equal(t, newer, gs.Hand(), "same version is applied once")

	apply(t, gs, protocol.MsgGameState, protocol.GameStatePayload{RoomCode: "ABC123", CurrentPlayer: "a", GameStarted: true, Seq: 10})
	assert.Equal(t, "a", gs.CurrentPlayer())
}
