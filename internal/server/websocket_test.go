package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hspp/hspp-server-go/internal/cards"
	"github.com/hspp/hspp-server-go/internal/config"
	"github.com/hspp/hspp-server-go/internal/engine"
	"github.com/hspp/hspp-server-go/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	engine *engine.Engine
	server *httptest.Server
	gameID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var all []*cards.Card
	var deck []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("M%02d", i)
		all = append(all, &cards.Card{ID: id, Name: id, Type: cards.TypeMinion, Attack: 1, Health: 1, Cost: 1})
		deck = append(deck, id)
	}
	reg, err := cards.NewMemoryRegistry(all...)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	eng := engine.New(engine.Options{Logger: logger, Registry: reg, Game: cfg.Game})
	gameID, err := eng.StartGame(
		engine.PlayerSetup{ID: "alice", Deck: deck},
		engine.PlayerSetup{ID: "bob", Deck: deck},
	)
	require.NoError(t, err)

	srv := New(eng, cfg.Server.WebSocket, logger)
	ctx, cancel := context.WithCancel(context.Background())
	srv.StartHub(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &fixture{engine: eng, server: ts, gameID: gameID}
}

func (f *fixture) dial(t *testing.T, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?game=" + f.gameID + "&player=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	msg := WSMessage{Type: msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil skips messages until one of msgType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["games"])
}

func TestUpgradeRejections(t *testing.T) {
	f := newFixture(t)
	base := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?game=missing", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViewCommand(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "alice")

	send(t, conn, "view", nil)
	msg := readUntil(t, conn, TypeGameState)

	var view game.GameView
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, f.gameID, view.GameID)
	assert.Equal(t, "alice", view.CurrentPlayer)
	assert.Len(t, view.Players[0].Hand, 4)
	assert.NotEmpty(t, view.Players[0].Hand[0].CardID)
	assert.Empty(t, view.Players[1].Hand[0].CardID, "the opponent's hand is hidden")
}

func TestPlayMinionCommandBroadcasts(t *testing.T) {
	f := newFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")
	// A reply means bob's client is registered with the hub.
	send(t, bob, "view", nil)
	readUntil(t, bob, TypeGameState)

	send(t, alice, "view", nil)
	var view game.GameView
	require.NoError(t, json.Unmarshal(readUntil(t, alice, TypeGameState).Data, &view))
	entityID := view.Players[0].Hand[0].ID

	send(t, alice, "play_minion", map[string]int{"entity_id": entityID})
	var result game.TaskMetaView
	require.NoError(t, json.Unmarshal(readUntil(t, alice, TypeTaskResult).Data, &result))
	assert.Equal(t, "PLAY_MINION", result.Task)
	assert.Equal(t, "PLAY_MINION_SUCCESS", result.Status)

	var n engine.Notification
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeNotification).Data, &n))
	assert.Equal(t, engine.NotifyTask, n.Type)
	assert.Equal(t, "alice", n.PlayerID)
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)
	bob := f.dial(t, "bob")

	tests := []struct {
		name    string
		command string
		data    interface{}
		want    string
	}{
		{"not bob's turn", "end_turn", nil, "not the current player"},
		{"unknown command", "shuffle", nil, "unknown command"},
		{"missing card id", "draw_card", map[string]string{}, "card_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, bob, tt.command, tt.data)
			var body map[string]string
			require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeError).Data, &body))
			assert.Contains(t, body["message"], tt.want)
		})
	}
}

func TestEndTurnAndAttackCommands(t *testing.T) {
	f := newFixture(t)
	alice := f.dial(t, "alice")
	bob := f.dial(t, "bob")

	send(t, alice, "end_turn", nil)
	readUntil(t, alice, TypeOK)

	send(t, bob, "view", nil)
	var view game.GameView
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeGameState).Data, &view))
	assert.Equal(t, "bob", view.CurrentPlayer)

	// Bob's hero has no attack.
	send(t, bob, "attack", map[string]int{"source": view.Players[1].Hero.ID, "target": view.Players[0].Hero.ID})
	var result game.TaskMetaView
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeTaskResult).Data, &result))
	assert.Equal(t, "COMBAT_SOURCE_NO_ATTACK", result.Status)

	send(t, bob, "destroy_weapon", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeTaskResult).Data, &result))
	assert.Equal(t, "DESTROY_WEAPON_SUCCESS", result.Status)

	send(t, bob, "draw_card", map[string]string{"card_id": "NOPE"})
	require.NoError(t, json.Unmarshal(readUntil(t, bob, TypeTaskResult).Data, &result))
	assert.Equal(t, "DRAW_NOT_FOUND", result.Status)

	send(t, bob, "concede", nil)
	readUntil(t, bob, TypeOK)
	view, err := f.engine.GameView(f.gameID, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Winner)
}

func TestCreateGame(t *testing.T) {
	f := newFixture(t)

	body := `{"players":[{"id":"carol","class":"priest","deck":["M00","M01"]},{"id":"dave","deck":["M02"]}]}`
	resp, err := http.Post(f.server.URL+"/games", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	view, err := f.engine.GameView(created["game_id"], "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", view.CurrentPlayer)
	assert.Len(t, f.engine.Games(), 2)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"garbage", "{", http.StatusBadRequest},
		{"one player", `{"players":[{"id":"x"}]}`, http.StatusBadRequest},
		{"unknown card", `{"players":[{"id":"x","deck":["NOPE"]},{"id":"y"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(f.server.URL+"/games", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp, err = http.Get(f.server.URL + "/games")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := newHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.run(ctx)

	c := newClient(nil, "g1", "alice")
	c.send = make(chan []byte, 1)
	c.send <- []byte("backlog")
	h.register(c)
	h.notify(engine.Notification{Type: "turn_ended", GameID: "g1"})

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("slow client was not stopped")
	}

	replied := make(chan struct{})
	go func() {
		c.reply([]byte("late"))
		close(replied)
	}()
	select {
	case <-replied:
	case <-time.After(time.Second):
		t.Fatal("reply blocked on a stopped client")
	}
	assert.Len(t, c.send, 1)
}

func TestHubStopsClientsOnShutdown(t *testing.T) {
	h := newHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go h.run(ctx)

	c := newClient(nil, "g1", "alice")
	h.register(c)
	cancel()
	<-h.done

	_, open := <-c.done
	assert.False(t, open)
	assert.NotPanics(t, func() { c.reply([]byte("after shutdown")) })
	c.stop()
}
