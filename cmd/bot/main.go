package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"farmstead.dev/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{conn: conn, log: logger}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.welcome = w
			logger.Printf("WELCOME player_id=%s tick_rate=%d items=%d", w.PlayerID, w.WorldParams.TickRateHz, w.Catalogs.Items.Count)

		case protocol.TypeView:
			var v protocol.ViewMsg
			if err := json.Unmarshal(msg, &v); err != nil {
				continue
			}
			b.handleView(&v)
		}
	}
}

// bot walks to the nearest tree and chops it down. Once the grove is gone it
// empties its first bag onto the ground.
type bot struct {
	conn    *websocket.Conn
	log     *log.Logger
	welcome protocol.WelcomeMsg
}

func (b *bot) handleView(v *protocol.ViewMsg) {
	for _, e := range v.Events {
		if typ, _ := e["type"].(string); typ == "PICKUP" || typ == "PICKUP_REJECTED" {
			b.log.Printf("%s item=%v count=%v", typ, e["item"], e["count"])
		}
	}

	pos := mgl32.Vec2(v.Pos)
	if tree, ok := nearestTree(pos, v.Trees); ok {
		target := mgl32.Vec2(tree.Pos)
		reach := b.welcome.WorldParams.ChopRange
		if reach <= 0 {
			reach = 1
		}
		if d := target.Sub(pos); d.Len() > reach {
			// Step at most half a unit per frame.
			step := d
			if step.Len() > 0.5 {
				step = step.Normalize().Mul(0.5)
			}
			b.send(v.Tick, protocol.Input{Kind: protocol.InputMove, Pos: [2]float32(pos.Add(step))})
			return
		}
		b.send(v.Tick, protocol.Input{ID: fmt.Sprintf("chop_%d", v.Tick), Kind: protocol.InputChop, Target: tree.ID})
		return
	}

	// No trees left: toss the first bag's contents one unit per frame.
	if len(b.welcome.Inventories) == 0 {
		return
	}
	bag := b.welcome.Inventories[0].ID
	for _, iv := range v.Inventories {
		if iv.ID != bag {
			continue
		}
		for i, s := range iv.Slots {
			if !s.Visible {
				continue
			}
			b.send(v.Tick, protocol.Input{ID: fmt.Sprintf("toss_%d", v.Tick), Kind: protocol.InputRemove, Inventory: bag, Slot: i})
			return
		}
	}
}

func (b *bot) send(tick uint64, inputs ...protocol.Input) {
	_ = b.conn.WriteJSON(protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Inputs:          inputs,
	})
}

func nearestTree(pos mgl32.Vec2, trees []protocol.TreeView) (protocol.TreeView, bool) {
	best, found := protocol.TreeView{}, false
	var bestD float32
	for _, t := range trees {
		d := mgl32.Vec2(t.Pos).Sub(pos).Len()
		if !found || d < bestD {
			best, bestD, found = t, d, true
		}
	}
	return best, found
}
