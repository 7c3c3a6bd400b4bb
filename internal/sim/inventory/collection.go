package inventory

import (
	"errors"
	"fmt"

	"farmstead.dev/internal/sim/catalogs"
)

// Holder is the capability advertised by actors that can receive items.
type Holder interface {
	Inventories() *Collection
}

// Collection is one owner's named inventories in creation order.
type Collection struct {
	owner  string
	byName map[string]*Inventory
	order  []string
}

func NewCollection(owner string) *Collection {
	return &Collection{owner: owner, byName: map[string]*Inventory{}}
}

func (c *Collection) Owner() string { return c.owner }

// Create adds a named inventory. Creating an existing name returns the existing one.
func (c *Collection) Create(name string, size int) *Inventory {
	if inv := c.byName[name]; inv != nil {
		return inv
	}
	inv := New(c.owner, name, size)
	c.byName[name] = inv
	c.order = append(c.order, name)
	return inv
}

func (c *Collection) Get(name string) *Inventory {
	if c == nil {
		return nil
	}
	return c.byName[name]
}

func (c *Collection) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Collection) All() []*Inventory {
	out := make([]*Inventory, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.byName[n])
	}
	return out
}

// Add adds one unit of def to the named inventory.
func (c *Collection) Add(name string, def catalogs.ItemDef) (int, error) {
	inv := c.Get(name)
	if inv == nil {
		return -1, fmt.Errorf("%w: %s/%s", ErrNoSuchInventory, c.owner, name)
	}
	return inv.Add(def)
}

// AddFirst adds one unit of def to the first of names that accepts it.
func (c *Collection) AddFirst(names []string, def catalogs.ItemDef) (*Inventory, int, error) {
	for _, name := range names {
		inv := c.Get(name)
		if inv == nil {
			continue
		}
		idx, err := inv.Add(def)
		if err == nil {
			return inv, idx, nil
		}
		if !errors.Is(err, ErrInventoryFull) {
			return nil, -1, err
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrInventoryFull, c.owner)
}
