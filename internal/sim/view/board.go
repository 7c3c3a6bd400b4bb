package view

import "github.com/go-gl/mathgl/mgl32"

// Board is everything one player sees: a view per attached inventory, an
// optional toolbar and the drag layer.
type Board struct {
	views   map[string]*InventoryView
	order   []string
	toolbar *Toolbar
	drag    *DragLayer
}

func NewBoard() *Board {
	return &Board{views: map[string]*InventoryView{}, drag: NewDragLayer()}
}

// Attach starts mirroring src. Attaching twice refreshes the existing view.
func (b *Board) Attach(src Source) *InventoryView {
	if v := b.views[src.ID()]; v != nil {
		v.Refresh(src)
		return v
	}
	v := NewInventoryView(src)
	b.views[src.ID()] = v
	b.order = append(b.order, src.ID())
	return v
}

// Detach stops mirroring the inventory with the given id.
func (b *Board) Detach(id string) {
	if _, ok := b.views[id]; !ok {
		return
	}
	delete(b.views, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if b.toolbar != nil && b.toolbar.view.id == id {
		b.toolbar = nil
	}
}

// BindToolbar makes the view of src the toolbar.
func (b *Board) BindToolbar(src Source) *Toolbar {
	b.toolbar = NewToolbar(b.Attach(src))
	return b.toolbar
}

func (b *Board) Toolbar() *Toolbar { return b.toolbar }

func (b *Board) View(id string) *InventoryView { return b.views[id] }

// Refresh re-projects src if it is attached.
func (b *Board) Refresh(src Source) {
	if v := b.views[src.ID()]; v != nil {
		v.Refresh(src)
	}
}

func (b *Board) CreateDragIcon(icon string, count int) Handle { return b.drag.Create(icon, count) }
func (b *Board) MoveDragIcon(h Handle, pos mgl32.Vec2) bool   { return b.drag.Move(h, pos) }
func (b *Board) DestroyDragIcon(h Handle) bool                { return b.drag.Destroy(h) }

type InventoryFrame struct {
	ID    string
	Slots []SlotView
}

type Frame struct {
	Inventories []InventoryFrame
	Selected    int
	Drag        []DragIcon
}

// Frame snapshots the board in attach order.
func (b *Board) Frame() Frame {
	f := Frame{Selected: -1, Drag: b.drag.Active()}
	for _, id := range b.order {
		v := b.views[id]
		f.Inventories = append(f.Inventories, InventoryFrame{ID: id, Slots: v.Slots()})
	}
	if b.toolbar != nil {
		f.Selected = b.toolbar.Selected()
	}
	return f
}
