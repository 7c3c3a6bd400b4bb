package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/entities"
	"farmstead.dev/internal/sim/harvest"
	"farmstead.dev/internal/sim/inventory"
	"farmstead.dev/internal/sim/transfer"
)

var (
	errBadInput   = errors.New("bad input")
	errOutOfReach = errors.New("out of reach")
)

// maxInputsPerMsg bounds how many inputs one INPUT message may carry.
const maxInputsPerMsg = 64

func (w *World) applyInputs(p *Player, msg protocol.InputMsg, nowTick uint64) {
	inputs := msg.Inputs
	if len(inputs) > maxInputsPerMsg {
		inputs = inputs[:maxInputsPerMsg]
	}
	for _, in := range inputs {
		err := w.applyInput(p, in, nowTick)
		if err == nil && in.ID == "" {
			continue
		}
		ev := protocol.Event{"t": nowTick, "type": "ACTION_RESULT", "kind": in.Kind, "ok": err == nil}
		if in.ID != "" {
			ev["ref"] = in.ID
		}
		if err != nil {
			ev["code"] = codeFor(err)
			ev["message"] = err.Error()
		}
		p.addEvent(ev)
	}
}

func (w *World) applyInput(p *Player, in protocol.Input, nowTick uint64) error {
	switch in.Kind {
	case protocol.InputBeginDrag:
		inv, err := w.resolveInventory(p, in.Inventory)
		if err != nil {
			return err
		}
		g := transfer.MoveStack
		switch in.Gesture {
		case "", protocol.GestureStack:
		case protocol.GestureOne:
			g = transfer.MoveOne
		default:
			return fmt.Errorf("%w: gesture %q", errBadInput, in.Gesture)
		}
		return p.drag.BeginDrag(inv, in.Slot, g)

	case protocol.InputDrag:
		return p.drag.DragUpdate(vec2(in.Pos))

	case protocol.InputDrop:
		if p.drag.State() != transfer.Dragging {
			return transfer.ErrNotDragging
		}
		sess, _ := p.drag.Session()
		if err := w.sourceInReach(p, sess); err != nil {
			_ = p.drag.Cancel()
			w.auditMoveRejected(nowTick, p, sess, in.Inventory, in.Slot, err)
			return err
		}
		target, err := w.resolveInventory(p, in.Inventory)
		if err != nil {
			_ = p.drag.Cancel()
			w.auditMoveRejected(nowTick, p, sess, in.Inventory, in.Slot, err)
			return err
		}
		if _, err := p.drag.Drop(target, in.Slot); err != nil {
			w.auditMoveRejected(nowTick, p, sess, target.ID(), in.Slot, err)
			return err
		}
		w.auditEvent(nowTick, p.id, "MOVE_SLOT", p.pos, "DRAG", map[string]any{
			"from":      sess.Source.ID(),
			"from_slot": sess.Slot,
			"to":        target.ID(),
			"to_slot":   in.Slot,
			"item":      sess.Item,
			"count":     sess.Quantity,
		})
		return nil

	case protocol.InputDropWorld:
		if p.drag.State() != transfer.Dragging {
			return transfer.ErrNotDragging
		}
		sess, _ := p.drag.Session()
		if err := w.sourceInReach(p, sess); err != nil {
			_ = p.drag.Cancel()
			w.auditMoveRejected(nowTick, p, sess, "WORLD", -1, err)
			return err
		}
		if _, err := p.drag.DropInWorld(w.dropperFor(p, nowTick)); err != nil {
			w.auditMoveRejected(nowTick, p, sess, "WORLD", -1, err)
			return err
		}
		return nil

	case protocol.InputCancel:
		return p.drag.Cancel()

	case protocol.InputEndDrag:
		if p.drag.State() == transfer.Idle {
			return transfer.ErrNotDragging
		}
		outcome := p.drag.EndDrag()
		p.addEvent(protocol.Event{"t": nowTick, "type": "DRAG_END", "outcome": outcome.String()})
		return nil

	case protocol.InputSelectSlot:
		tb := p.board.Toolbar()
		if tb == nil || !tb.SelectSlot(in.Slot) {
			return fmt.Errorf("%w: toolbar slot %d", inventory.ErrNoSuchSlot, in.Slot)
		}
		return nil

	case protocol.InputKey:
		tb := p.board.Toolbar()
		if tb == nil || !tb.HandleKey(in.Key) {
			return fmt.Errorf("%w: key %q", errBadInput, in.Key)
		}
		return nil

	case protocol.InputMove:
		p.pos = vec2(in.Pos)
		return nil

	case protocol.InputRemove:
		return w.removeAndDrop(p, in.Inventory, in.Slot, nowTick)

	case protocol.InputChop:
		return w.grove.Chop(nowTick, p.id, p.pos, in.Target)
	}
	return fmt.Errorf("%w: kind %q", errBadInput, in.Kind)
}

// resolveInventory finds an inventory the player may touch: one of its own,
// or the inventory of a chest within reach.
func (w *World) resolveInventory(p *Player, id string) (*inventory.Inventory, error) {
	owner, name, ok := strings.Cut(id, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("%w: %q", inventory.ErrNoSuchInventory, id)
	}
	if owner == p.id {
		if inv := p.bags.Get(name); inv != nil {
			return inv, nil
		}
		return nil, fmt.Errorf("%w: %q", inventory.ErrNoSuchInventory, id)
	}
	c := w.chests[owner]
	if c == nil || c.inv.ID() != id {
		return nil, fmt.Errorf("%w: %q", inventory.ErrNoSuchInventory, id)
	}
	if c.pos.Sub(p.pos).Len() > w.tune.ChestReach {
		return nil, fmt.Errorf("%w: chest %s", errOutOfReach, c.id)
	}
	return c.inv, nil
}

// sourceInReach re-resolves the inventory a drag started on. The player may
// have walked away from a chest since BEGIN_DRAG.
func (w *World) sourceInReach(p *Player, sess transfer.Session) error {
	if sess.Source == nil {
		return fmt.Errorf("%w: no drag source", inventory.ErrNoSuchInventory)
	}
	_, err := w.resolveInventory(p, sess.Source.ID())
	return err
}

// removeAndDrop drops one unit of a slot into the world. The item is resolved
// through the catalog first; a miss drops nothing and changes nothing.
func (w *World) removeAndDrop(p *Player, invID string, slot int, nowTick uint64) error {
	inv, err := w.resolveInventory(p, invID)
	if err != nil {
		return err
	}
	s, ok := inv.Slot(slot)
	if !ok {
		return fmt.Errorf("%w: %s[%d]", inventory.ErrNoSuchSlot, inv.ID(), slot)
	}
	if s.IsEmpty() {
		return fmt.Errorf("%w: %s[%d] is empty", inventory.ErrInsufficientQuantity, inv.ID(), slot)
	}
	d := w.dropperFor(p, nowTick)
	if err := d.CanDrop(s.Item); err != nil {
		return err
	}
	st, err := inv.Remove(slot, 1)
	if err != nil {
		return err
	}
	d.DropStack(st)
	p.board.Refresh(inv)
	return nil
}

// playerDropper spawns stacks around a player. It implements transfer.Dropper.
type playerDropper struct {
	w       *World
	p       *Player
	nowTick uint64
}

func (w *World) dropperFor(p *Player, nowTick uint64) *playerDropper {
	return &playerDropper{w: w, p: p, nowTick: nowTick}
}

func (d *playerDropper) CanDrop(item string) error {
	if _, err := d.w.items.Resolve(item); err != nil {
		d.w.reportCatalogMiss(d.nowTick, d.p.id, d.p.pos, item)
		return err
	}
	return nil
}

func (d *playerDropper) DropStack(st inventory.Stack) {
	pos, impulse := entities.DropPlacement(d.w.rng, d.p.pos, d.w.tune.Drop.Offset, d.w.tune.Drop.Impulse)
	id := d.w.store.Spawn(d.nowTick, d.p.id, st.Item, st.Count, pos, impulse, "DROP")
	d.w.auditEvent(d.nowTick, d.p.id, "DROP_WORLD", d.p.pos, "", map[string]any{
		"entity_id": id,
		"item":      st.Item,
		"count":     st.Count,
	})
}

var _ transfer.Dropper = (*playerDropper)(nil)

func (w *World) auditMoveRejected(nowTick uint64, p *Player, sess transfer.Session, to string, toSlot int, cause error) {
	details := map[string]any{
		"to":      to,
		"to_slot": toSlot,
		"item":    sess.Item,
		"count":   sess.Quantity,
		"code":    codeFor(cause),
	}
	if sess.Source != nil {
		details["from"] = sess.Source.ID()
		details["from_slot"] = sess.Slot
	}
	w.auditEvent(nowTick, p.id, "MOVE_REJECTED", p.pos, cause.Error(), details)
}

func (w *World) reportCatalogMiss(nowTick uint64, actor string, pos mgl32.Vec2, item string) {
	w.auditEvent(nowTick, actor, "CATALOG_MISS", pos, "", map[string]any{"item": item})
	if w.missReported[item] {
		return
	}
	w.missReported[item] = true
	w.log.Printf("catalog miss item=%q actor=%s", item, actor)
}

func codeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, catalogs.ErrCatalogMiss):
		return protocol.ErrCatalogMiss
	case errors.Is(err, inventory.ErrInventoryFull):
		return protocol.ErrInventoryFull
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		return protocol.ErrInsufficientQuantity
	case errors.Is(err, inventory.ErrIncompatibleDestination):
		return protocol.ErrIncompatibleDestination
	case errors.Is(err, inventory.ErrNoSuchSlot),
		errors.Is(err, inventory.ErrNoSuchInventory),
		errors.Is(err, harvest.ErrNoSuchTree):
		return protocol.ErrInvalidTarget
	case errors.Is(err, harvest.ErrOutOfRange), errors.Is(err, errOutOfReach):
		return protocol.ErrOutOfRange
	case errors.Is(err, harvest.ErrCooldown):
		return protocol.ErrRateLimit
	case errors.Is(err, transfer.ErrBusy):
		return protocol.ErrConflict
	case errors.Is(err, transfer.ErrStaleSession):
		return protocol.ErrStale
	case errors.Is(err, transfer.ErrNotDragging),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, errBadInput):
		return protocol.ErrBadRequest
	}
	return protocol.ErrInternal
}
