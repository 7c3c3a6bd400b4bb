package worldtest

import (
	"encoding/json"
	"testing"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/tuning"
	world "farmstead.dev/internal/sim/world"
)

// ConfigDir is the shipped configuration, relative to this package.
const ConfigDir = "../../../configs"

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Join() issues JoinRequest via StepOnce()
// - Step()/StepFor() issue INPUT via StepOnce()
// - Per-player Out channels carry VIEW JSON
//
// It avoids world internals so scenarios read like a client session.
type Harness struct {
	T     *testing.T
	Items *catalogs.Catalog
	W     *world.World

	DefaultPlayerID string

	sessions map[string]*session
}

type session struct {
	PlayerID string
	Out      chan []byte
	Welcome  protocol.WelcomeMsg
	lastView protocol.ViewMsg
	events   []protocol.Event
}

// LoadShipped returns the shipped item catalog and tuning.
func LoadShipped(t *testing.T) (*catalogs.Catalog, tuning.Tuning) {
	t.Helper()
	items, err := catalogs.Load(ConfigDir, nil)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	tune, err := tuning.Load(ConfigDir + "/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	return items, tune
}

func NewHarness(t *testing.T, items *catalogs.Catalog, tune tuning.Tuning, seed int64, playerName string) *Harness {
	t.Helper()

	w, err := world.New(world.WorldConfig{ID: "test", Seed: seed, Tuning: tune}, items, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	h := &Harness{
		T:        t,
		Items:    items,
		W:        w,
		sessions: map[string]*session{},
	}
	h.DefaultPlayerID = h.Join(playerName)
	return h
}

func (h *Harness) Join(name string) string {
	h.T.Helper()

	out := make(chan []byte, 64)
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	r := <-resp
	s := &session{PlayerID: r.Welcome.PlayerID, Out: out, Welcome: r.Welcome}
	h.sessions[s.PlayerID] = s
	h.drain(s)
	return s.PlayerID
}

// Step applies inputs for the default player and advances one tick.
func (h *Harness) Step(inputs ...protocol.Input) protocol.ViewMsg {
	h.T.Helper()
	return h.StepPlayer(h.DefaultPlayerID, inputs...)
}

func (h *Harness) StepPlayer(playerID string, inputs ...protocol.Input) protocol.ViewMsg {
	h.T.Helper()
	var envs []world.InputEnvelope
	if len(inputs) > 0 {
		envs = append(envs, world.InputEnvelope{PlayerID: playerID, Msg: protocol.InputMsg{
			Type:            protocol.TypeInput,
			ProtocolVersion: protocol.Version,
			Tick:            h.W.CurrentTick(),
			Inputs:          inputs,
		}})
	}
	h.W.StepOnce(nil, nil, envs)
	for _, s := range h.sessions {
		h.drain(s)
	}
	return h.View(playerID)
}

// StepFor advances n ticks without input.
func (h *Harness) StepFor(n int) protocol.ViewMsg {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.Step()
	}
	return h.View(h.DefaultPlayerID)
}

// View is the most recent VIEW frame the player received.
func (h *Harness) View(playerID string) protocol.ViewMsg {
	s := h.sessions[playerID]
	if s == nil {
		h.T.Fatalf("unknown player %s", playerID)
	}
	return s.lastView
}

// Events returns and clears every event the player has received.
func (h *Harness) Events(playerID string) []protocol.Event {
	s := h.sessions[playerID]
	if s == nil {
		return nil
	}
	ev := s.events
	s.events = nil
	return ev
}

func (h *Harness) Welcome(playerID string) protocol.WelcomeMsg {
	return h.sessions[playerID].Welcome
}

func (h *Harness) drain(s *session) {
	for {
		select {
		case b := <-s.Out:
			var v protocol.ViewMsg
			if err := json.Unmarshal(b, &v); err != nil {
				h.T.Fatalf("unmarshal view: %v", err)
			}
			s.lastView = v
			s.events = append(s.events, v.Events...)
		default:
			return
		}
	}
}
