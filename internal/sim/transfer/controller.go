// Package transfer runs the drag-and-drop session that moves items between
// inventory slots. A session spans several world ticks and is carried forward
// as explicit state; nothing blocks.
package transfer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/sim/inventory"
	"farmstead.dev/internal/sim/view"
)

var (
	ErrBusy         = errors.New("drag already in progress")
	ErrNotDragging  = errors.New("no drag in progress")
	ErrStaleSession = errors.New("source slot changed during drag")
)

type State int

const (
	Idle State = iota
	Dragging
	Dropped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Dragging:
		return "DRAGGING"
	case Dropped:
		return "DROPPED"
	case Cancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Gesture selects how much of the source stack a drag carries.
type Gesture int

const (
	MoveStack Gesture = iota
	MoveOne
)

// IconLayer owns the drag icon. view.Board implements it.
type IconLayer interface {
	CreateDragIcon(icon string, count int) view.Handle
	MoveDragIcon(h view.Handle, pos mgl32.Vec2) bool
	DestroyDragIcon(h view.Handle) bool
}

// Refresher re-projects an inventory after a mutation. view.Board implements it.
type Refresher interface {
	Refresh(src view.Source)
}

// Dropper puts a stack taken out of an inventory into the world. CanDrop is
// asked before the inventory is touched; DropStack cannot refuse.
type Dropper interface {
	CanDrop(item string) error
	DropStack(st inventory.Stack)
}

type Session struct {
	Source   *inventory.Inventory
	Slot     int
	Item     string
	Quantity int
	Icon     view.Handle
}

// Controller is a single input focus: at most one session at a time.
type Controller struct {
	icons   IconLayer
	refresh Refresher

	state   State
	session Session
	last    State
}

func NewController(icons IconLayer, refresh Refresher) *Controller {
	return &Controller{icons: icons, refresh: refresh, last: Idle}
}

func (c *Controller) State() State { return c.state }

// Session returns the active session, if any.
func (c *Controller) Session() (Session, bool) {
	if c.state == Idle {
		return Session{}, false
	}
	return c.session, true
}

// LastOutcome is Dropped or Cancelled for the most recently ended session.
func (c *Controller) LastOutcome() State { return c.last }

// BeginDrag starts a session on slot of inv. MoveStack captures the current
// count, MoveOne captures a single unit.
func (c *Controller) BeginDrag(inv *inventory.Inventory, slot int, g Gesture) error {
	if c.state != Idle {
		return ErrBusy
	}
	if inv == nil {
		return fmt.Errorf("%w: nil inventory", inventory.ErrNoSuchInventory)
	}
	s, ok := inv.Slot(slot)
	if !ok {
		return fmt.Errorf("%w: %s[%d]", inventory.ErrNoSuchSlot, inv.ID(), slot)
	}
	if s.IsEmpty() {
		return fmt.Errorf("%w: %s[%d] is empty", inventory.ErrInsufficientQuantity, inv.ID(), slot)
	}
	qty := s.Count
	if g == MoveOne {
		qty = 1
	}
	c.session = Session{Source: inv, Slot: slot, Item: s.Item, Quantity: qty}
	if c.icons != nil {
		c.session.Icon = c.icons.CreateDragIcon(s.Icon, qty)
	}
	c.state = Dragging
	return nil
}

// DragUpdate moves the drag icon. It is polled once per tick while dragging.
func (c *Controller) DragUpdate(pos mgl32.Vec2) error {
	if c.state != Dragging {
		return ErrNotDragging
	}
	if c.icons != nil {
		c.icons.MoveDragIcon(c.session.Icon, pos)
	}
	return nil
}

// Drop moves the captured quantity onto slot of target. A rejected move ends
// the session as Cancelled with no mutation; the cause is returned. Source
// and target views are refreshed either way.
func (c *Controller) Drop(target *inventory.Inventory, slot int) (State, error) {
	if c.state != Dragging {
		return c.state, ErrNotDragging
	}
	src := c.session.Source
	if err := c.checkSource(); err != nil {
		c.state = Cancelled
		return c.state, err
	}
	if target == nil {
		c.state = Cancelled
		return c.state, fmt.Errorf("%w: nil target", inventory.ErrIncompatibleDestination)
	}
	defer func() {
		if c.refresh == nil {
			return
		}
		c.refresh.Refresh(src)
		if target != src {
			c.refresh.Refresh(target)
		}
	}()
	if err := src.MoveSlot(c.session.Slot, slot, target, c.session.Quantity); err != nil {
		c.state = Cancelled
		return c.state, err
	}
	c.state = Dropped
	return c.state, nil
}

// DropInWorld takes the captured quantity out of the source and hands it to d.
func (c *Controller) DropInWorld(d Dropper) (State, error) {
	if c.state != Dragging {
		return c.state, ErrNotDragging
	}
	if err := c.checkSource(); err != nil {
		c.state = Cancelled
		return c.state, err
	}
	if d == nil {
		c.state = Cancelled
		return c.state, errors.New("no world to drop into")
	}
	if err := d.CanDrop(c.session.Item); err != nil {
		c.state = Cancelled
		return c.state, err
	}
	src := c.session.Source
	st, err := src.Remove(c.session.Slot, c.session.Quantity)
	if err != nil {
		c.state = Cancelled
		return c.state, err
	}
	d.DropStack(st)
	c.state = Dropped
	if c.refresh != nil {
		c.refresh.Refresh(src)
	}
	return c.state, nil
}

// Cancel abandons the drag without touching any inventory.
func (c *Controller) Cancel() error {
	if c.state != Dragging {
		return ErrNotDragging
	}
	c.state = Cancelled
	return nil
}

// EndDrag always returns to Idle and destroys the drag icon. A session that
// never dropped ends as Cancelled.
func (c *Controller) EndDrag() State {
	if c.state == Idle {
		return c.last
	}
	if c.state == Dragging {
		c.state = Cancelled
	}
	if c.icons != nil && c.session.Icon != 0 {
		c.icons.DestroyDragIcon(c.session.Icon)
	}
	c.last = c.state
	c.state = Idle
	c.session = Session{}
	return c.last
}

func (c *Controller) checkSource() error {
	s, ok := c.session.Source.Slot(c.session.Slot)
	if !ok || s.Item != c.session.Item {
		return fmt.Errorf("%w: %s[%d]", ErrStaleSession, c.session.Source.ID(), c.session.Slot)
	}
	return nil
}
