package model

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bluff/internal/client"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/protocol/convert"
)

type recorder struct {
	calls   []string
	cards   []card.Card
	claimed card.Value

	inbox []*protocol.Message
	err   error
}

func (r *recorder) CreateRoom(userID, username string) error {
	r.calls = append(r.calls, "create:"+userID+":"+username)
	return nil
}

func (r *recorder) JoinRoom(roomCode, userID, username string) error {
	r.calls = append(r.calls, "join:"+roomCode+":"+userID+":"+username)
	return nil
}

func (r *recorder) CheckRoom(roomCode string) error {
	r.calls = append(r.calls, "check:"+roomCode)
	return nil
}

func (r *recorder) PlayCards(cards []card.Card, claimed card.Value) error {
	r.calls = append(r.calls, "play")
	r.cards, r.claimed = cards, claimed
	return nil
}

func (r *recorder) CallBluff() error {
	r.calls = append(r.calls, "bluff")
	return nil
}

func (r *recorder) Reconnect(roomCode, userID, token string) error {
	r.calls = append(r.calls, "reconnect:"+roomCode+":"+userID+":"+token)
	return nil
}

func (r *recorder) GetStats() error {
	r.calls = append(r.calls, "stats")
	return nil
}

func (r *recorder) GetLeaderboard(leaderboardType string, _, _ int) error {
	r.calls = append(r.calls, "board:"+leaderboardType)
	return nil
}

func (r *recorder) Receive() (*protocol.Message, error) {
	if len(r.inbox) == 0 {
		if r.err == nil {
			return nil, client.ErrClosed
		}
		return nil, r.err
	}
	msg := r.inbox[0]
	r.inbox = r.inbox[1:]
	return msg, nil
}

func newTestModel(t *testing.T, hand ...card.Card) (*Model, *recorder) {
	t.Helper()

	state := client.NewGameState()
	if len(hand) > 0 {
		msg := codec.MustNewMessage(protocol.MsgDealCards, protocol.DealCardsPayload{Cards: convert.CardsToInfos(hand)})
		require.NoError(t, state.Apply(msg))
	}

	rec := &recorder{}
	return New(rec, state, "u1"), rec
}

// deliver applies msg to the shared state the way the client read pump does, then feeds it to the model.
func deliver(t *testing.T, m *Model, msg *protocol.Message) {
	t.Helper()
	require.NoError(t, m.state.Apply(msg))
	_, cmd := m.Update(ServerMessage{Msg: msg})
	assert.NotNil(t, cmd)
}

func pressEnter(m *Model, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	hand := []card.Card{card.New(card.Hearts, card.Value10), card.New(card.Spades, card.ValueQ)}

	tests := []struct {
		name    string
		tokens  []string
		want    []card.Card
		wantErr bool
	}{
		{"letter suits", []string{"10h", "QS"}, hand, false},
		{"symbol suit", []string{"10♥"}, hand[:1], false},
		{"hand index", []string{"2", "1"}, []card.Card{hand[1], hand[0]}, false},
		{"index out of range", []string{"3"}, nil, true},
		{"unknown card", []string{"1X"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseCards(tt.tokens, hand)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModel_Exec(t *testing.T) {
	t.Parallel()

	m, rec := newTestModel(t, card.New(card.Clubs, card.Value9))

	for _, line := range []string{
		"create alice", "join abc123 alice", "check abc123", "reconnect abc123 tok",
		"bluff", "stats", "board weekly", "board", "  ",
	} {
		require.NoError(t, m.exec(line), line)
	}
	assert.Equal(t, []string{
		"create:u1:alice",
		"join:ABC123:u1:alice",
		"check:ABC123",
		"reconnect:ABC123:u1:tok",
		"bluff",
		"stats",
		"board:weekly",
		"board:total",
	}, rec.calls)
	assert.Equal(t, "alice", m.username)

	require.NoError(t, m.exec("play 10 1"))
	assert.Equal(t, card.Value10, rec.claimed)
	assert.Equal(t, []card.Card{card.New(card.Clubs, card.Value9)}, rec.cards)

	require.NoError(t, m.exec("help"))
	assert.True(t, m.showHelp)

	assert.ErrorIs(t, m.exec("quit"), errQuit)
	assert.ErrorIs(t, m.exec("EXIT"), errQuit)
}

func TestModel_ExecErrors(t *testing.T) {
	t.Parallel()

	m, rec := newTestModel(t)

	for _, line := range []string{"create", "join ABC123", "reconnect ABC123", "play 10", "play Z 1", "dance"} {
		assert.Error(t, m.exec(line), line)
	}
	assert.Empty(t, rec.calls)
}

func TestModel_EnterRunsCommand(t *testing.T) {
	t.Parallel()

	m, rec := newTestModel(t)

	cmd := pressEnter(m, "stats")
	assert.False(t, isQuit(cmd))
	assert.Equal(t, []string{"stats"}, rec.calls)
	assert.Empty(t, m.input.Value())

	pressEnter(m, "dance")
	assert.Contains(t, m.err, "dance")
	assert.Contains(t, m.View(), "dance")

	// A successful command clears the previous error.
	pressEnter(m, "bluff")
	assert.Empty(t, m.err)

	assert.True(t, isQuit(pressEnter(m, "quit")))
}

func TestModel_KeysQuit(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m, _ := newTestModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		assert.True(t, isQuit(cmd), key.String())
	}
}

func TestModel_PhaseTransitions(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	assert.Equal(t, PhaseLobby, m.Phase())
	assert.Contains(t, m.View(), "u1")

	deliver(t, m, codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: "ROOM01", HostID: "u1", Username: "alice",
	}))
	assert.Equal(t, PhaseLobby, m.Phase())
	assert.Equal(t, "join ROOM01 alice", m.input.Value())

	deliver(t, m, codec.MustNewMessage(protocol.MsgSeatGranted, protocol.SeatGrantedPayload{
		RoomCode: "ROOM01", UserID: "u1", ReconnectToken: "tok-1",
	}))
	assert.Equal(t, PhaseWaiting, m.Phase())

	players := []protocol.PlayerInfo{{ID: "u1", Username: "alice"}}
	deliver(t, m, codec.MustNewMessage(protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode: "ROOM01", Players: players, Seq: 2,
	}))
	assert.Equal(t, PhaseWaiting, m.Phase())
	assert.Contains(t, m.View(), "ROOM01")

	players = append(players, protocol.PlayerInfo{ID: "u2", Username: "bob", CardCount: 26})
	players[0].CardCount = 26
	deliver(t, m, codec.MustNewMessage(protocol.MsgDealCards, protocol.DealCardsPayload{
		Cards: convert.CardsToInfos([]card.Card{card.New(card.Hearts, card.ValueA)}), Seq: 3,
	}))
	deliver(t, m, codec.MustNewMessage(protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode: "ROOM01", Players: players, CurrentPlayer: "u1", GameStarted: true, Seq: 3,
	}))
	assert.Equal(t, PhasePlaying, m.Phase())
	view := m.View()
	assert.Contains(t, view, "alice (我)")
	assert.Contains(t, view, "bob")
	assert.Contains(t, view, "A♥")
	assert.Contains(t, view, "轮到你出牌")

	deliver(t, m, codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		RoomCode: "ROOM01", Winner: protocol.WinnerInfo{ID: "u1", Username: "alice"},
	}))
	assert.Equal(t, PhaseGameOver, m.Phase())
	assert.Contains(t, m.View(), "你赢了")

	// Late snapshots do not pull the view back into the game.
	deliver(t, m, codec.MustNewMessage(protocol.MsgGameState, protocol.GameStatePayload{
		RoomCode: "ROOM01", Players: players, GameStarted: true, Seq: 4,
	}))
	assert.Equal(t, PhaseGameOver, m.Phase())

	pressEnter(m, "")
	assert.Equal(t, PhaseLobby, m.Phase())
}

func TestModel_ReconnectedEntersRoom(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	deliver(t, m, codec.MustNewMessage(protocol.MsgReconnected, protocol.ReconnectedPayload{RoomCode: "ROOM01", UserID: "u1"}))
	assert.Equal(t, PhaseWaiting, m.Phase())
	assert.Contains(t, m.notice, "ROOM01")
}

func TestModel_Panels(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)

	deliver(t, m, codec.MustNewMessage(protocol.MsgStatsResult, protocol.StatsResultPayload{
		PlayerID: "u1", PlayerName: "alice", TotalGames: 3, Wins: 2,
	}))
	assert.Contains(t, m.View(), "我的战绩")

	deliver(t, m, codec.MustNewMessage(protocol.MsgRoomExists, protocol.RoomExistsPayload{RoomCode: "NOPE01"}))
	assert.Contains(t, m.View(), "NOPE01 不存在")

	deliver(t, m, codec.NewErrorMessage(protocol.ErrCodeSeatOnline))
	assert.Contains(t, m.err, "[2102]")

	// Running the next command clears panels and errors.
	pressEnter(m, "bluff")
	assert.Empty(t, m.panel)
	assert.Empty(t, m.err)
}

func TestModel_ConnectionLost(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	require.NoError(t, m.state.Apply(codec.MustNewMessage(protocol.MsgSeatGranted, protocol.SeatGrantedPayload{
		RoomCode: "ROOM01", UserID: "u1", ReconnectToken: "tok-1",
	})))

	m.Update(ConnectionErrorMsg{Err: errors.New("eof")})
	assert.Equal(t, PhaseDisconnected, m.Phase())

	view := m.View()
	assert.Contains(t, view, "-room ROOM01 -token tok-1")
	assert.Contains(t, view, "eof")

	assert.True(t, isQuit(pressEnter(m, "")))
}

func TestModel_ListenForMessages(t *testing.T) {
	t.Parallel()

	m, rec := newTestModel(t)
	pong := codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{})
	rec.inbox = append(rec.inbox, pong)

	got := m.listenForMessages()()
	require.IsType(t, ServerMessage{}, got)
	assert.Same(t, pong, got.(ServerMessage).Msg)

	got = m.listenForMessages()()
	require.IsType(t, ConnectionErrorMsg{}, got)
	assert.ErrorIs(t, got.(ConnectionErrorMsg).Err, client.ErrClosed)
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lobby", PhaseLobby.String())
	assert.Equal(t, "disconnected", PhaseDisconnected.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
