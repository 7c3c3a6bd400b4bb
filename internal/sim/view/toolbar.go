package view

// MaxToolbarKeys is the number of numeric keys (1..9) bound to toolbar slots.
const MaxToolbarKeys = 9

// Toolbar highlights exactly one slot of an inventory view. Selection carries
// no inventory semantics.
type Toolbar struct {
	view     *InventoryView
	selected int
}

func NewToolbar(v *InventoryView) *Toolbar {
	t := &Toolbar{view: v, selected: -1}
	t.SelectSlot(0)
	return t
}

func (t *Toolbar) Size() int { return len(t.view.slots) }

// SelectSlot moves the highlight to index. Out-of-range indices are ignored.
func (t *Toolbar) SelectSlot(index int) bool {
	if index < 0 || index >= t.Size() {
		return false
	}
	t.selected = index
	return t.view.SetHighlight(index)
}

func (t *Toolbar) Selected() int { return t.selected }

// HandleKey maps "1".."9" to slots 0..8.
func (t *Toolbar) HandleKey(key string) bool {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return false
	}
	idx := int(key[0] - '1')
	if idx >= MaxToolbarKeys {
		return false
	}
	return t.SelectSlot(idx)
}
