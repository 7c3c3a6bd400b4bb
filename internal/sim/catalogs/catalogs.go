package catalogs

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

// DefaultStackLimit applies to definitions that do not declare a limit and to empty slots.
const DefaultStackLimit = 99

var (
	ErrCatalogMiss           = errors.New("catalog miss")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrInvalidDef            = errors.New("invalid item definition")
	ErrFrozen                = errors.New("catalog is frozen")
)

type ItemDef struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Icon       string `json:"icon,omitempty"`
	StackLimit int    `json:"stack_limit,omitempty"`
}

// Catalog maps item ids to their definitions. It is built once at startup and
// read-only after Freeze.
type Catalog struct {
	defs   map[string]ItemDef
	order  []string
	frozen bool
	log    *log.Logger

	Digest string
}

func New(logger *log.Logger) *Catalog {
	return &Catalog{
		defs: map[string]ItemDef{},
		log:  logger,
	}
}

// Register adds def. The first registration of an id wins; later ones are
// rejected with ErrDuplicateRegistration and logged.
func (c *Catalog) Register(def ItemDef) error {
	if c.frozen {
		return ErrFrozen
	}
	if def.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDef)
	}
	if def.StackLimit == 0 {
		def.StackLimit = DefaultStackLimit
	}
	if def.StackLimit < 0 {
		return fmt.Errorf("%w: %s: stack_limit %d", ErrInvalidDef, def.ID, def.StackLimit)
	}
	if _, ok := c.defs[def.ID]; ok {
		c.logf("catalog: ignoring duplicate item %q", def.ID)
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

// Freeze makes the catalog immutable.
func (c *Catalog) Freeze() { c.frozen = true }

func (c *Catalog) Frozen() bool { return c.frozen }

// Lookup returns the definition for id. A miss is a normal outcome.
func (c *Catalog) Lookup(id string) (ItemDef, bool) {
	if c == nil {
		return ItemDef{}, false
	}
	d, ok := c.defs[id]
	return d, ok
}

// Resolve is Lookup for callers that propagate errors.
func (c *Catalog) Resolve(id string) (ItemDef, error) {
	d, ok := c.Lookup(id)
	if !ok {
		return ItemDef{}, fmt.Errorf("%w: %q", ErrCatalogMiss, id)
	}
	return d, nil
}

// IDs returns item ids in registration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Defs returns all definitions sorted by id.
func (c *Catalog) Defs() []ItemDef {
	out := make([]ItemDef, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) Len() int { return len(c.defs) }

func (c *Catalog) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}
