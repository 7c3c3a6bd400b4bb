// Package slot holds the plain value types shared by inventories and their
// views. Nothing here can reach an inventory.
package slot

import "farmstead.dev/internal/sim/catalogs"

// Slot is a single storage cell. Count == 0 iff Item == "".
type Slot struct {
	Item  string
	Icon  string
	Count int
	Limit int
}

// Stack is a quantity of one item taken out of a slot.
type Stack struct {
	Item  string
	Icon  string
	Count int
}

// Empty is a cleared slot with the default stack limit.
func Empty() Slot { return Slot{Limit: catalogs.DefaultStackLimit} }

func (s Slot) IsEmpty() bool { return s.Item == "" && s.Count == 0 }

// CanAdd reports whether one more unit of item fits on top of this stack.
func (s Slot) CanAdd(item string) bool {
	return s.Item == item && s.Count < s.Limit
}

// Room is how many units of item the slot can still take.
func (s Slot) Room(item string, limit int) int {
	if s.IsEmpty() {
		return limit
	}
	if s.Item != item {
		return 0
	}
	return s.Limit - s.Count
}
