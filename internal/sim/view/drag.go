package view

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Handle identifies a drag icon owned by a DragLayer. Zero is never issued.
type Handle uint64

type DragIcon struct {
	Handle Handle
	Icon   string
	Count  int
	Pos    mgl32.Vec2
}

// DragLayer holds the transient icons that follow the pointer during a drag.
type DragLayer struct {
	next  Handle
	icons map[Handle]*DragIcon
}

func NewDragLayer() *DragLayer {
	return &DragLayer{icons: map[Handle]*DragIcon{}}
}

func (l *DragLayer) Create(icon string, count int) Handle {
	l.next++
	h := l.next
	l.icons[h] = &DragIcon{Handle: h, Icon: icon, Count: count}
	return h
}

func (l *DragLayer) Move(h Handle, pos mgl32.Vec2) bool {
	ic := l.icons[h]
	if ic == nil {
		return false
	}
	ic.Pos = pos
	return true
}

func (l *DragLayer) Destroy(h Handle) bool {
	if _, ok := l.icons[h]; !ok {
		return false
	}
	delete(l.icons, h)
	return true
}

func (l *DragLayer) Get(h Handle) (DragIcon, bool) {
	ic := l.icons[h]
	if ic == nil {
		return DragIcon{}, false
	}
	return *ic, true
}

// Active returns live icons ordered by handle.
func (l *DragLayer) Active() []DragIcon {
	out := make([]DragIcon, 0, len(l.icons))
	for _, ic := range l.icons {
		out = append(out, *ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
