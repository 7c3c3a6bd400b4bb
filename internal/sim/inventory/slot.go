package inventory

import (
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/slot"
)

type (
	Slot  = slot.Slot
	Stack = slot.Stack
)

func emptySlot() Slot { return slot.Empty() }

func occupy(s *Slot, item, icon string, limit int) {
	s.Item = item
	s.Icon = icon
	if limit <= 0 {
		limit = catalogs.DefaultStackLimit
	}
	s.Limit = limit
}

func take(s *Slot, n int) {
	s.Count -= n
	if s.Count == 0 {
		*s = emptySlot()
	}
}
