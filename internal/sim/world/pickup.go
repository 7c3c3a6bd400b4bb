package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/entities"
	"farmstead.dev/internal/sim/harvest"
	"farmstead.dev/internal/sim/inventory"
)

// systemPickup offers every item entity in range to each actor that can hold
// items. Actors are visited in id order so two players racing for the same
// entity resolve deterministically.
func (w *World) systemPickup(nowTick uint64) {
	for _, a := range w.actors() {
		bags := a.Inventories()
		if bags == nil {
			continue
		}
		p := w.players[a.ID()]
		inRange := map[string]bool{}
		for _, e := range w.store.Near(nowTick, a.Position(), w.tune.PickupRadius) {
			inRange[e.EntityID] = true
			w.offerPickup(nowTick, a, bags, p, e)
		}
		if p != nil {
			for id := range p.rejected {
				if !inRange[id] {
					delete(p.rejected, id)
				}
			}
		}
	}
}

func (w *World) offerPickup(nowTick uint64, a Actor, bags *inventory.Collection, p *Player, e *entities.ItemEntity) {
	def, ok := w.items.Lookup(e.Item)
	if !ok {
		if !w.missReported[e.Item] {
			w.reportCatalogMiss(nowTick, a.ID(), e.Pos, e.Item)
		}
		return
	}
	added := 0
	var full error
	for _, name := range w.tune.PickupOrder {
		inv := bags.Get(name)
		if inv == nil || added == e.Count {
			continue
		}
		n, err := inv.AddCount(def, e.Count-added)
		added += n
		if err != nil {
			full = err
		}
	}
	if added > 0 {
		item, id := e.Item, e.EntityID
		w.store.Take(nowTick, a.ID(), id, added, "PICKUP")
		w.auditEvent(nowTick, a.ID(), "PICKUP", a.Position(), "", map[string]any{
			"entity_id": id,
			"item":      item,
			"count":     added,
		})
		if p != nil {
			p.addEvent(protocol.Event{"t": nowTick, "type": "PICKUP", "item": item, "count": added})
		}
	}
	if rest := w.store.Get(e.EntityID); rest != nil && full != nil {
		if p != nil && p.rejected[rest.EntityID] {
			return
		}
		if p != nil {
			p.rejected[rest.EntityID] = true
			p.addEvent(protocol.Event{
				"t":         nowTick,
				"type":      "PICKUP_REJECTED",
				"entity_id": rest.EntityID,
				"item":      rest.Item,
				"count":     rest.Count,
				"code":      codeFor(full),
			})
		}
		w.auditEvent(nowTick, a.ID(), "PICKUP_REJECTED", a.Position(), codeFor(full), map[string]any{
			"entity_id": rest.EntityID,
			"item":      rest.Item,
			"count":     rest.Count,
		})
	}
}

func (w *World) onTreeHit(nowTick uint64, actor string, t *harvest.Tree, damage float32) {
	w.auditEvent(nowTick, actor, "TREE_CHOP", t.Pos, "", map[string]any{
		"tree_id": t.ID,
		"damage":  damage,
		"health":  t.Health,
	})
}

// onTreeFelled leaves the tree's drops where it stood.
func (w *World) onTreeFelled(nowTick uint64, actor string, t *harvest.Tree) {
	w.auditEvent(nowTick, actor, "TREE_FELLED", t.Pos, "", map[string]any{"tree_id": t.ID})
	if t.Drops == "" || t.DropCount <= 0 {
		return
	}
	w.store.Spawn(nowTick, actor, t.Drops, t.DropCount, t.Pos, mgl32.Vec2{}, "HARVEST")
}
