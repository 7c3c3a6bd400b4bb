// Package harvest implements choppable trees. A chop lands after a short
// delay; a tree at zero health is felled and leaves its drops behind.
package harvest

import (
	"errors"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/sim/schedule"
)

var (
	ErrNoSuchTree = errors.New("no such tree")
	ErrOutOfRange = errors.New("out of range")
	ErrCooldown   = errors.New("chop on cooldown")
)

type Tree struct {
	ID        string
	Pos       mgl32.Vec2
	Health    float32
	Drops     string
	DropCount int

	lastChop uint64
	chopped  bool
	felled   bool
}

func (t *Tree) Felled() bool { return t.felled }

type Rules struct {
	Range         float32
	CooldownTicks uint64
	DelayTicks    uint64
	Damage        float32
}

// Hooks are called from inside the scheduled damage.
type Hooks struct {
	// Felled runs once when a tree's health reaches zero.
	Felled func(nowTick uint64, actor string, t *Tree)
	// Hit runs for every landed chop, including the felling one.
	Hit func(nowTick uint64, actor string, t *Tree, damage float32)
}

type Grove struct {
	trees map[string]*Tree
	rules Rules
	queue *schedule.Queue
	hooks Hooks
}

func NewGrove(rules Rules, queue *schedule.Queue, hooks Hooks) *Grove {
	return &Grove{trees: map[string]*Tree{}, rules: rules, queue: queue, hooks: hooks}
}

func (g *Grove) Plant(t *Tree) {
	if t == nil || t.ID == "" {
		return
	}
	g.trees[t.ID] = t
}

func (g *Grove) Get(id string) *Tree { return g.trees[id] }

// Trees returns standing trees sorted by id.
func (g *Grove) Trees() []*Tree {
	out := make([]*Tree, 0, len(g.trees))
	for _, t := range g.trees {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Chop validates range and cooldown, then schedules the damage.
func (g *Grove) Chop(nowTick uint64, actor string, actorPos mgl32.Vec2, treeID string) error {
	t := g.trees[treeID]
	if t == nil || t.felled {
		return ErrNoSuchTree
	}
	if t.Pos.Sub(actorPos).Len() > g.rules.Range {
		return ErrOutOfRange
	}
	if t.chopped && nowTick < t.lastChop+g.rules.CooldownTicks {
		return ErrCooldown
	}
	t.chopped = true
	t.lastChop = nowTick
	g.queue.After(nowTick, g.rules.DelayTicks, func(fire uint64) {
		g.land(fire, actor, t)
	})
	return nil
}

func (g *Grove) land(nowTick uint64, actor string, t *Tree) {
	if t.felled {
		return
	}
	t.Health -= g.rules.Damage
	if g.hooks.Hit != nil {
		g.hooks.Hit(nowTick, actor, t, g.rules.Damage)
	}
	if t.Health > 0 {
		return
	}
	t.felled = true
	delete(g.trees, t.ID)
	if g.hooks.Felled != nil {
		g.hooks.Felled(nowTick, actor, t)
	}
}
