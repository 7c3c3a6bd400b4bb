// Package view projects inventories into a render-ready form. It only reads
// inventory state through Source and never mutates it.
package view

import (
	"encoding/json"
	"strconv"

	"farmstead.dev/internal/sim/slot"
)

// Source is the read-only surface of an inventory.
type Source interface {
	ID() string
	Len() int
	Slot(i int) (slot.Slot, bool)
}

type SlotView struct {
	Icon      string `json:"icon,omitempty"`
	Text      string `json:"text"`
	Visible   bool   `json:"visible"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Project renders one slot: icon and count when occupied, a cleared placeholder otherwise.
func Project(s slot.Slot) SlotView {
	if s.IsEmpty() {
		return SlotView{}
	}
	return SlotView{Icon: s.Icon, Text: strconv.Itoa(s.Count), Visible: true}
}

// InventoryView mirrors one inventory. The only state that survives a Refresh
// is the highlight marker.
type InventoryView struct {
	id        string
	slots     []SlotView
	highlight int
}

func NewInventoryView(src Source) *InventoryView {
	v := &InventoryView{id: src.ID(), highlight: -1}
	v.Refresh(src)
	return v
}

func (v *InventoryView) ID() string { return v.id }

// Refresh recomputes every slot from src.
func (v *InventoryView) Refresh(src Source) {
	n := src.Len()
	if len(v.slots) != n {
		v.slots = make([]SlotView, n)
	}
	for i := 0; i < n; i++ {
		s, ok := src.Slot(i)
		if !ok {
			v.slots[i] = SlotView{}
			continue
		}
		v.slots[i] = Project(s)
	}
	if v.highlight >= n {
		v.highlight = -1
	}
}

// SetHighlight marks slot i; -1 clears the marker.
func (v *InventoryView) SetHighlight(i int) bool {
	if i < -1 || i >= len(v.slots) {
		return false
	}
	v.highlight = i
	return true
}

func (v *InventoryView) Highlighted() int { return v.highlight }

// Slots returns a copy with the highlight marker applied.
func (v *InventoryView) Slots() []SlotView {
	out := make([]SlotView, len(v.slots))
	copy(out, v.slots)
	if v.highlight >= 0 && v.highlight < len(out) {
		out[v.highlight].Highlight = true
	}
	return out
}

// Bytes is the canonical encoding of the current view state.
func (v *InventoryView) Bytes() []byte {
	b, _ := json.Marshal(struct {
		ID    string     `json:"id"`
		Slots []SlotView `json:"slots"`
	}{v.id, v.Slots()})
	return b
}
