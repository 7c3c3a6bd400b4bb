package world

import (
	"bytes"
	"encoding/json"

	"farmstead.dev/internal/protocol"
)

// itemViewRadius bounds which world items a VIEW frame lists.
const itemViewRadius = 16

// syncBoard pulls inventory state into the player's board. Chests come and go
// from the board as the player enters and leaves their reach.
func (w *World) syncBoard(p *Player) {
	for _, inv := range p.bags.All() {
		p.board.Refresh(inv)
	}
	for _, id := range sortedKeys(w.chests) {
		c := w.chests[id]
		if c.pos.Sub(p.pos).Len() <= w.tune.ChestReach {
			p.board.Attach(c.inv)
		} else {
			p.board.Detach(c.inv.ID())
		}
	}
}

func (w *World) buildView(p *Player) protocol.ViewMsg {
	frame := p.board.Frame()
	msg := protocol.ViewMsg{
		Type:            protocol.TypeView,
		ProtocolVersion: protocol.Version,
		PlayerID:        p.id,
		Pos:             arr2(p.pos),
		Selected:        frame.Selected,
		DragState:       p.drag.State().String(),
	}
	for _, f := range frame.Inventories {
		iv := protocol.InventoryView{ID: f.ID, Slots: make([]protocol.SlotView, 0, len(f.Slots))}
		for _, s := range f.Slots {
			iv.Slots = append(iv.Slots, protocol.SlotView{Icon: s.Icon, Text: s.Text, Visible: s.Visible, Highlight: s.Highlight})
		}
		msg.Inventories = append(msg.Inventories, iv)
	}
	for _, d := range frame.Drag {
		msg.Drag = append(msg.Drag, protocol.DragIconView{Icon: d.Icon, Count: d.Count, Pos: arr2(d.Pos)})
	}
	for _, e := range w.store.Within(p.pos, itemViewRadius) {
		msg.Items = append(msg.Items, protocol.ItemView{ID: e.EntityID, Item: e.Item, Count: e.Count, Pos: arr2(e.Pos)})
	}
	for _, t := range w.grove.Trees() {
		msg.Trees = append(msg.Trees, protocol.TreeView{ID: t.ID, Pos: arr2(t.Pos), Health: t.Health})
	}
	for _, id := range sortedKeys(w.chests) {
		c := w.chests[id]
		msg.Chests = append(msg.Chests, protocol.ChestView{ID: c.id, Pos: arr2(c.pos), Inventory: c.inv.ID()})
	}
	return msg
}

// sendView sends a VIEW frame when the player's view changed or events are
// pending. Unchanged frames are not resent.
func (w *World) sendView(p *Player, nowTick uint64) {
	w.syncBoard(p)
	events := p.events
	p.events = nil
	if p.out == nil {
		return
	}

	msg := w.buildView(p)
	key, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if bytes.Equal(key, p.lastFrame) && len(events) == 0 {
		return
	}
	p.lastFrame = key

	msg.Tick = nowTick
	msg.Events = events
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	sendLatest(p.out, b)
}
