package inventory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"farmstead.dev/internal/sim/catalogs"
)

var nextSeq atomic.Uint64

// Inventory is a fixed-size ordered sequence of slots belonging to one owner.
//
// Mutations are expected to come from the world loop only. The mutex makes a
// single mutating call atomic for hosts that do not follow that rule; it is
// never held across calls.
type Inventory struct {
	owner string
	name  string
	seq   uint64

	mu    sync.Mutex
	slots []Slot
}

func New(owner, name string, size int) *Inventory {
	if size < 0 {
		size = 0
	}
	inv := &Inventory{
		owner: owner,
		name:  name,
		seq:   nextSeq.Add(1),
		slots: make([]Slot, size),
	}
	for i := range inv.slots {
		inv.slots[i] = emptySlot()
	}
	return inv
}

func (inv *Inventory) Owner() string { return inv.owner }
func (inv *Inventory) Name() string  { return inv.name }
func (inv *Inventory) ID() string    { return inv.owner + "/" + inv.name }
func (inv *Inventory) Len() int      { return len(inv.slots) }

// Slot returns a copy of slot i.
func (inv *Inventory) Slot(i int) (Slot, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if i < 0 || i >= len(inv.slots) {
		return Slot{}, false
	}
	return inv.slots[i], true
}

// Slots returns a copy of every slot.
func (inv *Inventory) Slots() []Slot {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// Count sums the units of item across all slots.
func (inv *Inventory) Count(item string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := 0
	for _, s := range inv.slots {
		if s.Item == item {
			n += s.Count
		}
	}
	return n
}

// Add places one unit of def. It tops up the first non-full stack of the same
// item, else occupies the first empty slot. It returns the slot index used or
// ErrInventoryFull.
func (inv *Inventory) Add(def catalogs.ItemDef) (int, error) {
	if def.ID == "" {
		return -1, fmt.Errorf("%w: empty item id", catalogs.ErrCatalogMiss)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.addLocked(def)
}

// AddCount adds up to n units of def and reports how many were placed. err is
// ErrInventoryFull when fewer than n fit.
func (inv *Inventory) AddCount(def catalogs.ItemDef, n int) (int, error) {
	if n < 1 {
		return 0, ErrInvalidQuantity
	}
	if def.ID == "" {
		return 0, fmt.Errorf("%w: empty item id", catalogs.ErrCatalogMiss)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for added := 0; added < n; added++ {
		if _, err := inv.addLocked(def); err != nil {
			return added, err
		}
	}
	return n, nil
}

func (inv *Inventory) addLocked(def catalogs.ItemDef) (int, error) {
	for i := range inv.slots {
		if inv.slots[i].CanAdd(def.ID) {
			inv.slots[i].Count++
			return i, nil
		}
	}
	for i := range inv.slots {
		if inv.slots[i].IsEmpty() {
			occupy(&inv.slots[i], def.ID, def.Icon, def.StackLimit)
			inv.slots[i].Count = 1
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrInventoryFull, inv.ID())
}

// Remove takes n units out of slot index. Asking for more than the slot holds
// is rejected with ErrInsufficientQuantity and changes nothing.
func (inv *Inventory) Remove(index, n int) (Stack, error) {
	if n < 1 {
		return Stack{}, ErrInvalidQuantity
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if index < 0 || index >= len(inv.slots) {
		return Stack{}, fmt.Errorf("%w: %s[%d]", ErrNoSuchSlot, inv.ID(), index)
	}
	s := &inv.slots[index]
	if s.Count < n {
		return Stack{}, fmt.Errorf("%w: %s[%d] holds %d, want %d", ErrInsufficientQuantity, inv.ID(), index, s.Count, n)
	}
	out := Stack{Item: s.Item, Icon: s.Icon, Count: n}
	take(s, n)
	return out, nil
}

// MoveSlot transfers n units from slot from of inv to slot to of dst. The
// destination must be empty or hold the same item and must have room for all
// n units; otherwise nothing changes.
func (inv *Inventory) MoveSlot(from, to int, dst *Inventory, n int) error {
	if dst == nil {
		return fmt.Errorf("%w: nil destination", ErrIncompatibleDestination)
	}
	if n < 1 {
		return ErrInvalidQuantity
	}
	unlock := lockPair(inv, dst)
	defer unlock()

	if from < 0 || from >= len(inv.slots) {
		return fmt.Errorf("%w: %s[%d]", ErrNoSuchSlot, inv.ID(), from)
	}
	if to < 0 || to >= len(dst.slots) {
		return fmt.Errorf("%w: %s[%d]", ErrNoSuchSlot, dst.ID(), to)
	}
	if inv == dst && from == to {
		return nil
	}

	src := &inv.slots[from]
	dstSlot := &dst.slots[to]
	if src.Count < n {
		return fmt.Errorf("%w: %s[%d] holds %d, want %d", ErrInsufficientQuantity, inv.ID(), from, src.Count, n)
	}
	if !dstSlot.IsEmpty() && dstSlot.Item != src.Item {
		return fmt.Errorf("%w: %s[%d] holds %s", ErrIncompatibleDestination, dst.ID(), to, dstSlot.Item)
	}
	if room := dstSlot.Room(src.Item, src.Limit); room < n {
		return fmt.Errorf("%w: %s[%d] has room for %d, want %d", ErrIncompatibleDestination, dst.ID(), to, room, n)
	}

	if dstSlot.IsEmpty() {
		occupy(dstSlot, src.Item, src.Icon, src.Limit)
	}
	dstSlot.Count += n
	take(src, n)
	return nil
}

// lockPair locks a and b in creation order so concurrent cross moves cannot deadlock.
func lockPair(a, b *Inventory) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if b.seq < a.seq {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
