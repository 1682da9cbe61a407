package room

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/apperrors"
	"github.com/palemoky/bluff/internal/game/card"
)

func newTestManager() *Manager {
	return NewManager(2, time.Hour, zap.NewNop())
}

func TestManager_CreateRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("host", "alice")

	assert.Len(t, code, roomCodeLength)
	assert.Regexp(t, `^[0-9A-F]{6}$`, code)
	assert.True(t, m.CheckRoom(code))

	r := m.GetRoom(code)
	require.NotNil(t, r)
	assert.Equal(t, StateLobby, r.State)
	assert.Equal(t, "host", r.HostID)
	assert.Equal(t, 2, r.MaxPlayers)
	assert.Empty(t, r.Players, "host is not seated until it joins")
	assert.Empty(t, r.CurrentPlayer)
	assert.False(t, r.GameStarted())
}

func TestManager_CreateRoom_UniqueCodes(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	seen := make(map[string]bool)
	for i := range 500 {
		code := m.CreateRoom(fmt.Sprintf("h%d", i), "u")
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Equal(t, 500, m.Count())
}

func TestManager_JoinRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("u1", "alice")

	require.NoError(t, m.JoinRoom(code, "u1", "alice", "s1"))
	require.NoError(t, m.JoinRoom(code, "u2", "bob", "s2"))

	r := m.GetRoom(code)
	require.Len(t, r.Players, 2)
	assert.Equal(t, "u1", r.Players[0].ID)
	assert.Equal(t, "s2", r.Players[1].SocketRef)
	assert.NotNil(t, r.Players[1].Hand)
	assert.Empty(t, r.Players[1].Hand)
	assert.True(t, r.IsFull())
}

func TestManager_JoinRoom_Capacity(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("u1", "alice")
	require.NoError(t, m.JoinRoom(code, "u1", "alice", "s1"))
	require.NoError(t, m.JoinRoom(code, "u2", "bob", "s2"))

	err := m.JoinRoom(code, "u3", "carol", "s3")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.Len(t, m.GetRoom(code).Players, 2)
}

func TestManager_JoinRoom_NotFound(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	err := m.JoinRoom("FFFFFF", "u1", "alice", "s1")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestManager_JoinRoom_ChecksRunBeforeJoin(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("u1", "alice")
	require.NoError(t, m.JoinRoom(code, "u1", "alice", "s1"))

	reject := func(r *Room) error {
		if r.PlayerByUsername("alice") != nil {
			return apperrors.ErrUsernameTaken.WithRoom(r.Code)
		}
		return nil
	}
	err := m.JoinRoom(code, "u2", "alice", "s2", reject)
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
	assert.Len(t, m.GetRoom(code).Players, 1)
}

func TestManager_JoinRoom_ConcurrentNeverOverfills(t *testing.T) {
	t.Parallel()

	m := NewManager(3, time.Hour, zap.NewNop())
	code := m.CreateRoom("h", "host")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.JoinRoom(code, fmt.Sprintf("u%d", i), fmt.Sprintf("n%d", i), "s"); err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, joined)
	assert.Len(t, m.GetRoom(code).Players, 3)
}

func TestManager_JoinRoomThen(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("h", "host")
	require.NoError(t, m.JoinRoom(code, "u1", "alice", "s1"))

	var seated int
	err := m.JoinRoomThen(code, "u2", "bob", "s2", func(r *Room) error {
		seated = len(r.Players)
		r.State = StateInProgress
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seated, "hook runs after the player is appended")
	assert.Equal(t, StateInProgress, m.GetRoom(code).State)
}

func TestManager_JoinRoomThen_RollsBack(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("h", "host")

	err := m.JoinRoomThen(code, "u1", "alice", "s1", func(r *Room) error {
		return apperrors.ErrInvalidPlayerCount.WithRoom(r.Code)
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPlayerCount)
	assert.Empty(t, m.GetRoom(code).Players)
}

func TestManager_VersionIncreases(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("h", "host")
	require.NoError(t, m.JoinRoom(code, "u1", "alice", "s1"))

	var versions []uint64
	for range 3 {
		require.NoError(t, m.WithRoom(code, func(r *Room) error {
			versions = append(versions, r.Snapshot().Version)
			return nil
		}))
	}
	assert.Equal(t, []uint64{2, 3, 4}, versions)
}

func TestManager_WithRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("u1", "alice")

	err := m.WithRoom(code, func(r *Room) error {
		r.CurrentPlayer = "u1"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", m.GetRoom(code).CurrentPlayer)

	err = m.WithRoom("000000", func(*Room) error {
		t.Fatal("callback must not run for unknown rooms")
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestManager_RemoveRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	code := m.CreateRoom("u1", "alice")
	r := m.GetRoom(code)

	assert.True(t, m.RemoveRoom(code))
	assert.False(t, m.RemoveRoom(code))
	assert.False(t, m.CheckRoom(code))
	assert.Nil(t, m.GetRoom(code))

	// a stale pointer must not be usable through the manager
	m.AddRoomForTest(r)
	err := m.WithRoom(code, func(*Room) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestRoom_Helpers(t *testing.T) {
	t.Parallel()

	r := NewTestRoom("ABC123", "u1", "u2")
	r.Players[0].Hand = []card.Card{card.New(card.Hearts, card.Value5)}
	r.CurrentPile = []card.Card{card.New(card.Spades, card.ValueK)}
	r.CurrentClaimedValue = card.ValueK
	r.LastPlayerID = "u2"

	assert.Equal(t, 1, r.PlayerIndex("u2"))
	assert.Equal(t, -1, r.PlayerIndex("nobody"))
	assert.Equal(t, "u2", r.PlayerByUsername("user-u2").ID)
	assert.Nil(t, r.Player("nobody"))
	assert.True(t, r.HasClaim())
	assert.Equal(t, 2, r.CardsInPlay())

	snap := r.Snapshot()
	r.Players[0].Hand[0] = card.New(card.Clubs, card.Value2)
	assert.Equal(t, "5♥", snap.Players[0].Hand[0].ID, "snapshot is a deep copy")

	r.ClearClaim()
	assert.False(t, r.HasClaim())
	assert.Empty(t, r.CurrentPile)
	assert.Empty(t, r.LastPlayerID)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lobby", StateLobby.String())
	assert.Equal(t, "in_progress", StateInProgress.String())
	assert.Equal(t, "finished", StateFinished.String())
	assert.Equal(t, "unknown", State(42).String())
}
