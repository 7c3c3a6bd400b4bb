package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/inventory"
	"farmstead.dev/internal/sim/transfer"
	"farmstead.dev/internal/sim/view"
)

// Actor is anything with a position in the world. Every actor advertises
// whether it can receive items: Inventories returns nil when it cannot.
type Actor interface {
	ID() string
	Position() mgl32.Vec2
	inventory.Holder
}

// Player owns a named inventory collection, the board mirroring it and the
// drag controller that is its single input focus.
type Player struct {
	id   string
	name string
	pos  mgl32.Vec2

	bags  *inventory.Collection
	board *view.Board
	drag  *transfer.Controller

	out       chan []byte
	lastFrame []byte
	events    []protocol.Event

	// Entities already reported as PICKUP_REJECTED while in range.
	rejected map[string]bool
}

func (p *Player) ID() string                         { return p.id }
func (p *Player) Name() string                       { return p.name }
func (p *Player) Position() mgl32.Vec2               { return p.pos }
func (p *Player) Inventories() *inventory.Collection { return p.bags }
func (p *Player) Board() *view.Board                 { return p.board }
func (p *Player) Controller() *transfer.Controller   { return p.drag }
func (p *Player) addEvent(e protocol.Event)          { p.events = append(p.events, e) }

// Chest is a stationary actor holding one inventory. It does not collect.
type Chest struct {
	id  string
	pos mgl32.Vec2
	inv *inventory.Inventory
}

func newChest(id string, pos mgl32.Vec2, slots int) *Chest {
	return &Chest{id: id, pos: pos, inv: inventory.New(id, "chest", slots)}
}

func (c *Chest) ID() string                      { return c.id }
func (c *Chest) Position() mgl32.Vec2            { return c.pos }
func (c *Chest) Inventory() *inventory.Inventory { return c.inv }

// Inventories is nil: chests are filled by hand, never by pickup.
func (c *Chest) Inventories() *inventory.Collection { return nil }

func (w *World) Player(id string) *Player { return w.players[id] }

func (w *World) Chest(id string) *Chest { return w.chests[id] }

// actors returns players then chests, each sorted by id.
func (w *World) actors() []Actor {
	out := make([]Actor, 0, len(w.players)+len(w.chests))
	for _, id := range sortedKeys(w.players) {
		out = append(out, w.players[id])
	}
	for _, id := range sortedKeys(w.chests) {
		out = append(out, w.chests[id])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "farmer"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	n := w.nextPlayerNum.Add(1)
	id := fmt.Sprintf("P%d", n)

	p := &Player{
		id:       id,
		name:     normalizeName(name),
		pos:      vec2(w.tune.Layout.Spawn),
		bags:     inventory.NewCollection(id),
		board:    view.NewBoard(),
		out:      out,
		rejected: map[string]bool{},
	}
	for _, spec := range w.tune.PlayerInventories {
		inv := p.bags.Create(spec.Name, spec.Slots)
		if spec.Name == w.tune.ToolbarInventory {
			p.board.BindToolbar(inv)
		} else {
			p.board.Attach(inv)
		}
	}
	p.drag = transfer.NewController(p.board, p.board)
	w.players[id] = p
	w.log.Printf("join player=%s name=%q", id, p.name)

	return JoinResponse{Welcome: w.buildWelcome(p), Catalogs: w.buildCatalogMsgs()}
}

func (w *World) handleLeave(id string) {
	p := w.players[id]
	if p == nil {
		return
	}
	// An unfinished drag never moved anything; closing it leaves the inventories as they were.
	p.drag.EndDrag()
	delete(w.players, id)
	w.log.Printf("leave player=%s", id)
}

func (w *World) buildWelcome(p *Player) protocol.WelcomeMsg {
	refs := make([]protocol.InventoryRef, 0)
	for _, inv := range p.bags.All() {
		refs = append(refs, protocol.InventoryRef{ID: inv.ID(), Name: inv.Name(), Slots: inv.Len()})
	}
	toolbar := ""
	if inv := p.bags.Get(w.tune.ToolbarInventory); inv != nil {
		toolbar = inv.ID()
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		PlayerID:        p.id,
		WorldParams: protocol.WorldParams{
			TickRateHz:   w.tune.TickRateHz,
			PickupRadius: w.tune.PickupRadius,
			ChestReach:   w.tune.ChestReach,
			ChopRange:    w.tune.Harvest.ChopRange,
		},
		Catalogs: protocol.CatalogDigests{
			Items: protocol.DigestRef{Digest: w.items.Digest, Count: w.items.Len()},
		},
		Inventories: refs,
		Toolbar:     toolbar,
	}
}

func (w *World) buildCatalogMsgs() []protocol.CatalogMsg {
	return []protocol.CatalogMsg{{
		Type:            protocol.TypeCatalog,
		ProtocolVersion: protocol.Version,
		Name:            "items",
		Digest:          w.items.Digest,
		Part:            1,
		TotalParts:      1,
		Data:            w.items.Defs(),
	}}
}
