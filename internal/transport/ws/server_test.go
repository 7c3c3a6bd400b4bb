package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/tuning"
	"farmstead.dev/internal/sim/world"
)

func startServer(t *testing.T) (*world.World, string) {
	t.Helper()
	cat, err := catalogs.Parse([]byte(`[{"id":"WOOD","name":"Wood","icon":"wood.png"}]`), nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	tu := tuning.Defaults()
	tu.TickRateHz = 100
	tu.PickupDelayTicks = 0
	w, err := world.New(world.WorldConfig{ID: "test", Seed: 1, Tuning: tu}, cat, nil)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(cancel)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", NewServer(w, nil).Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return w, "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
}

func readMsg(t *testing.T, conn *websocket.Conn, v any) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(b, v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	}
	return base.Type
}

func TestHandshakeAndInputRoundTrip(t *testing.T) {
	_, url := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: "farmer"}); err != nil {
		t.Fatalf("hello: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if typ := readMsg(t, conn, &welcome); typ != protocol.TypeWelcome || welcome.PlayerID == "" || welcome.SessionID == "" {
		t.Fatalf("unexpected welcome %s %#v", typ, welcome)
	}
	var cat protocol.CatalogMsg
	if typ := readMsg(t, conn, &cat); typ != protocol.TypeCatalog || cat.Name != "items" {
		t.Fatalf("unexpected catalog %s %#v", typ, cat)
	}

	// First VIEW.
	var v protocol.ViewMsg
	if typ := readMsg(t, conn, &v); typ != protocol.TypeView || v.PlayerID != welcome.PlayerID {
		t.Fatalf("unexpected view %s %#v", typ, v)
	}

	if err := conn.WriteJSON(protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Inputs:          []protocol.Input{{ID: "k", Kind: protocol.InputKey, Key: "5"}},
	}); err != nil {
		t.Fatalf("input: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var next protocol.ViewMsg
		if readMsg(t, conn, &next) != protocol.TypeView {
			continue
		}
		if next.Selected == 4 {
			if len(next.Events) == 0 || next.Events[0]["ref"] != "k" {
				t.Fatalf("expected ACTION_RESULT for k, got %#v", next.Events)
			}
			return
		}
	}
	t.Fatalf("selection never reached the view")
}

func TestHandshakeRejectsWrongVersion(t *testing.T) {
	_, url := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1", PlayerName: "old"})
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy close, got %v", err)
	}
}

func TestMoveReachesClient(t *testing.T) {
	_, url := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: "farmer"})
	readMsg(t, conn, nil) // WELCOME
	readMsg(t, conn, nil) // CATALOG
	readMsg(t, conn, nil) // VIEW

	deadline := time.Now().Add(3 * time.Second)
	if err := conn.WriteJSON(protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Inputs:          []protocol.Input{{Kind: protocol.InputMove, Pos: [2]float32{2, 3}}},
	}); err != nil {
		t.Fatalf("input: %v", err)
	}
	for time.Now().Before(deadline) {
		var v protocol.ViewMsg
		if readMsg(t, conn, &v) == protocol.TypeView && v.Pos == [2]float32{2, 3} {
			return
		}
	}
	t.Fatalf("move never reached the view")
}
