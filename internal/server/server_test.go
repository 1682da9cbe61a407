package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/client"
	"github.com/palemoky/bluff/internal/config"
	"github.com/palemoky/bluff/internal/game/card"
	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/server/storage"
)

const waitTimeout = 2 * time.Second

type testServer struct {
	*Server
	url   string
	redis *redis.Client
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Default()
	cfg.Security.RateLimit.MaxPerSecond = 1000
	cfg.Security.RateLimit.MaxPerMinute = 10000
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServer(cfg, zap.NewNop(), WithRedisClient(rdb))
	require.NoError(t, err)

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	t.Cleanup(s.Shutdown)

	return &testServer{Server: s, url: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws", redis: rdb}
}

func (ts *testServer) dial(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	c := client.NewClient(ts.url, opts...)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(c.Close)

	_, err := c.WaitFor(protocol.MsgConnected, waitTimeout)
	require.NoError(t, err)
	return c
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s, err := NewServer(config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServer_RejectsUnknownCodec(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.Codec = "xml"
	_, err := NewServer(cfg, nil)
	assert.Error(t, err)
}

func TestServer_EndToEnd(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	alice, bob := ts.dial(t), ts.dial(t)
	assert.NotEmpty(t, alice.ConnID())
	assert.Eventually(t, func() bool { return ts.GetOnlineCount() == 2 }, waitTimeout, 10*time.Millisecond)

	require.NoError(t, alice.CreateRoom("ua", "alice"))
	msg, err := alice.WaitFor(protocol.MsgRoomCreated, waitTimeout)
	require.NoError(t, err)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)

	require.NoError(t, alice.JoinRoom(created.RoomCode, "ua", "alice"))
	require.NoError(t, bob.JoinRoom(created.RoomCode, "ub", "bob"))

	require.Eventually(t, func() bool {
		return alice.State.Started() && bob.State.Started() &&
			len(alice.State.Hand()) == 26 && len(bob.State.Hand()) == 25
	}, waitTimeout, 10*time.Millisecond)
	assert.True(t, alice.State.IsMyTurn("ua"))
	assert.Equal(t, 1, ts.rooms.ActiveGames())

	// Out of turn play is rejected for bob only.
	require.NoError(t, bob.PlayCards(bob.State.Hand()[:1], bob.State.LegalClaims()[0]))
	msg, err = bob.WaitFor(protocol.MsgError, waitTimeout)
	require.NoError(t, err)
	errPayload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeNotYourTurn, errPayload.Code)
	assert.Equal(t, "validation", errPayload.Kind)

	require.NoError(t, alice.PlayCards(alice.State.Hand()[:2], alice.State.LegalClaims()[0]))
	require.Eventually(t, func() bool {
		return bob.State.IsMyTurn("ub") && bob.State.CanCallBluff("ub") && bob.State.PileCount() == 3
	}, waitTimeout, 10*time.Millisecond)

	require.NoError(t, bob.CallBluff())
	require.Eventually(t, func() bool {
		return alice.State.LastBluff() != nil && alice.State.PileCount() == 0
	}, waitTimeout, 10*time.Millisecond)

	total := 0
	for _, p := range alice.State.Players() {
		total += p.CardCount
	}
	assert.Equal(t, card.DeckSize, total, "cards must be conserved")
	value, _ := alice.State.ClaimedValue()
	assert.Empty(t, value)

	require.NoError(t, bob.GetStats())
	msg, err = bob.WaitFor(protocol.MsgStatsResult, waitTimeout)
	require.NoError(t, err)
	stats, err := codec.ParsePayload[protocol.StatsResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "ub", stats.PlayerID)
	assert.Equal(t, 1, stats.BluffCalls)

	// The room is mirrored to redis while it is alive.
	require.Eventually(t, func() bool {
		data, err := storage.NewRedisStore(ts.redis).LoadRoom(context.Background(), created.RoomCode)
		return err == nil && data != nil && data.State == "in_progress"
	}, waitTimeout, 10*time.Millisecond)
}

func TestServer_Reconnect(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	alice, bob := ts.dial(t), ts.dial(t)

	require.NoError(t, alice.CreateRoom("ua", "alice"))
	msg, err := alice.WaitFor(protocol.MsgRoomCreated, waitTimeout)
	require.NoError(t, err)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)
	require.NoError(t, alice.JoinRoom(created.RoomCode, "ua", "alice"))
	require.NoError(t, bob.JoinRoom(created.RoomCode, "ub", "bob"))
	require.Eventually(t, func() bool { return len(bob.State.Hand()) == 25 }, waitTimeout, 10*time.Millisecond)
	token := bob.State.ReconnectToken()
	require.NotEmpty(t, token)
	assert.NotEqual(t, token, alice.State.ReconnectToken(), "tokens are per seat")

	// While bob is still online nobody can take the seat, not even with his token.
	thief := ts.dial(t)
	require.NoError(t, thief.Reconnect(created.RoomCode, "ub", token))
	assertServerError(t, thief, protocol.ErrCodeSeatOnline)
	require.NoError(t, thief.Reconnect(created.RoomCode, "ub", "guess"))
	assertServerError(t, thief, protocol.ErrCodeInvalidToken)

	bob.Close()
	assert.Eventually(t, func() bool { return ts.GetOnlineCount() == 2 }, waitTimeout, 10*time.Millisecond)

	// Offline seat without the token stays locked.
	require.NoError(t, thief.Reconnect(created.RoomCode, "ub", ""))
	assertServerError(t, thief, protocol.ErrCodeInvalidToken)

	again := ts.dial(t)
	require.NoError(t, again.Reconnect(created.RoomCode, "ub", token))
	_, err = again.WaitFor(protocol.MsgReconnected, waitTimeout)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(again.State.Hand()) == 25 && again.State.Started()
	}, waitTimeout, 10*time.Millisecond)
}

func assertServerError(t *testing.T, c *client.Client, code int) {
	t.Helper()
	msg, err := c.WaitFor(protocol.MsgError, waitTimeout)
	require.NoError(t, err)
	p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, code, p.Code)
}

func TestServer_IPBlacklist(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.IPBlacklist = []string{"127.0.0.1"}
	})

	c := client.NewClient(ts.url)
	assert.Error(t, c.Connect(context.Background()))
	assert.Zero(t, ts.GetOnlineCount())

	resp, err := http.Get("http" + strings.TrimPrefix(ts.url, "ws"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_IPWhitelist(t *testing.T) {
	t.Parallel()

	blocked := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.IPWhitelist = []string{"10.0.0.1"}
	})
	c := client.NewClient(blocked.url)
	assert.Error(t, c.Connect(context.Background()))

	allowed := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.IPWhitelist = []string{"127.0.0.1"}
	})
	allowed.dial(t)
}

func TestServer_ProtobufCodec(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(cfg *config.Config) { cfg.Server.Codec = codec.NameProtobuf })
	c := ts.dial(t, client.WithCodec(codec.ProtoCodec{}))

	require.NoError(t, c.CheckRoom("NOPE00"))
	msg, err := c.WaitFor(protocol.MsgRoomExists, waitTimeout)
	require.NoError(t, err)
	exists, err := codec.ParsePayload[protocol.RoomExistsPayload](msg)
	require.NoError(t, err)
	assert.False(t, exists.Exists)
}

func TestServer_MaintenanceRejectsConnections(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil)
	lobby := ts.dial(t)

	ts.EnterMaintenanceMode()
	assert.True(t, ts.IsMaintenanceMode())

	msg, err := lobby.WaitFor(protocol.MsgError, waitTimeout)
	require.NoError(t, err)
	p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, p.Code)

	c := client.NewClient(ts.url)
	assert.Error(t, c.Connect(context.Background()))

	require.NoError(t, lobby.CreateRoom("u1", "alice"))
	msg, err = lobby.WaitFor(protocol.MsgError, waitTimeout)
	require.NoError(t, err)
	p, err = codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, p.Code)
}

func TestServer_MaxConnections(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxConnections = 1 })
	first := ts.dial(t)

	c := client.NewClient(ts.url)
	assert.Error(t, c.Connect(context.Background()))

	first.Close()
	assert.Eventually(t, func() bool {
		c := client.NewClient(ts.url)
		if err := c.Connect(context.Background()); err != nil {
			return false
		}
		c.Close()
		return true
	}, waitTimeout, 20*time.Millisecond)
}
