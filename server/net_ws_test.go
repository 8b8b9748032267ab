package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wireMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	StateUpdateMessage
}

func startWSServer(t *testing.T, cfg Config) (*Game, string) {
	t.Helper()
	g := NewGame(cfg)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.HandleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		g.Close()
		srv.Close()
	})
	return g, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor 读取消息直到 match 返回 true；counts 记录途中各类型消息数量
func waitFor(t *testing.T, conn *websocket.Conn, counts map[string]int, match func(wireMessage) bool) wireMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m wireMessage
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("decode %s: %v", b, err)
		}
		if counts != nil {
			counts[m.Type]++
		}
		if match(m) {
			return m
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketSession(t *testing.T) {
	cfg := testConfig()
	cfg.TickInterval = 10 * time.Millisecond
	g, url := startWSServer(t, cfg)

	a := dial(t, url)
	welcome := waitFor(t, a, nil, func(m wireMessage) bool { return m.Type == MsgWelcome })
	if welcome.ID != "1" {
		t.Fatalf("A got id %q, want 1", welcome.ID)
	}
	b := dial(t, url)
	welcome = waitFor(t, b, nil, func(m wireMessage) bool { return m.Type == MsgWelcome })
	if welcome.ID != "2" {
		t.Fatalf("B got id %q, want 2", welcome.ID)
	}

	countsA := map[string]int{}
	waitFor(t, a, countsA, func(m wireMessage) bool { return m.Type == MsgGameStart })
	waitFor(t, b, nil, func(m wireMessage) bool { return m.Type == MsgGameStart })

	send(t, a, InputMessage{Type: MsgChooseShape, Shape: "circle"})
	for i := 0; i < 3; i++ {
		send(t, a, InputMessage{Type: MsgInput, Input: "move_right"})
	}
	// 非法消息不会断开连接
	if err := a.WriteMessage(websocket.TextMessage, []byte("garbage")); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, a, countsA, func(m wireMessage) bool {
		p, ok := m.Players["1"]
		return m.Type == MsgStateUpdate && ok && math.Abs(p.X-0.3) < 1e-9 && p.Y == 0 && m.Shapes["1"] == "circle"
	})

	// 第三个连接：获得 ID 并出现在快照中，但不会再次触发开局
	c := dial(t, url)
	countsC := map[string]int{}
	waitFor(t, c, countsC, func(m wireMessage) bool {
		_, ok := m.Players["3"]
		return m.Type == MsgStateUpdate && ok
	})

	b.Close()
	waitFor(t, a, countsA, func(m wireMessage) bool {
		_, ok := m.Players["2"]
		return m.Type == MsgStateUpdate && !ok
	})

	if countsA[MsgGameStart] != 1 {
		t.Fatalf("A saw %d game_start messages", countsA[MsgGameStart])
	}
	if countsC[MsgGameStart] != 0 || countsC[MsgWelcome] != 1 {
		t.Fatalf("late joiner counts = %v", countsC)
	}
	if g.State() != InProgress || g.PlayerCount() != 2 {
		t.Fatalf("state = %v players = %d", g.State(), g.PlayerCount())
	}
}

func TestClientConnSendAfterClose(t *testing.T) {
	c := &ClientConn{send: make(chan []byte, 1)}
	if err := c.Send([]byte("a")); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.Send([]byte("b")); err != ErrQueueFull {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := c.Send([]byte("c")); err != ErrConnClosed {
		t.Fatalf("err = %v, want ErrConnClosed", err)
	}
}
