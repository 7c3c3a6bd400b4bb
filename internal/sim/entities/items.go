// Package entities keeps the world-space representations of dropped items.
package entities

import (
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const EntityTTLTicksDefault = 9000 // 5 minutes at 30Hz

// ItemEntity is a stack lying in the world.
type ItemEntity struct {
	EntityID    string
	Item        string
	Count       int
	Pos         mgl32.Vec2
	Impulse     mgl32.Vec2
	CreatedTick uint64
	PickupTick  uint64
	ExpiresTick uint64
}

func (e *ItemEntity) ID() string { return e.EntityID }

// AuditFunc receives one record per spawn/despawn.
type AuditFunc func(nowTick uint64, actor, action string, pos mgl32.Vec2, reason string, details map[string]any)

// Physics is the external body simulation. Launch is called once per spawn.
type Physics interface {
	Launch(entityID string, pos, impulse mgl32.Vec2)
}

type Store struct {
	items map[string]*ItemEntity

	TTLTicks         uint64
	PickupDelayTicks uint64

	NewID   func() string
	Audit   AuditFunc
	Physics Physics
}

func NewStore() *Store {
	return &Store{
		items:    map[string]*ItemEntity{},
		TTLTicks: EntityTTLTicksDefault,
		NewID:    func() string { return "IT-" + uuid.NewString() },
	}
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Get(id string) *ItemEntity { return s.items[id] }

// Spawn places count units of item at pos and launches them with impulse.
// It returns the new entity id, or "" for an empty stack.
func (s *Store) Spawn(nowTick uint64, actor, item string, count int, pos, impulse mgl32.Vec2, reason string) string {
	if item == "" || count <= 0 || s.NewID == nil {
		return ""
	}
	id := s.NewID()
	e := &ItemEntity{
		EntityID:    id,
		Item:        item,
		Count:       count,
		Pos:         pos,
		Impulse:     impulse,
		CreatedTick: nowTick,
		PickupTick:  nowTick + s.PickupDelayTicks,
	}
	if s.TTLTicks > 0 {
		e.ExpiresTick = nowTick + s.TTLTicks
	}
	s.items[id] = e
	if s.Physics != nil {
		s.Physics.Launch(id, pos, impulse)
	}
	if s.Audit != nil {
		s.Audit(nowTick, actor, "ITEM_SPAWN", pos, reason, map[string]any{
			"entity_id": id,
			"item":      item,
			"count":     count,
		})
	}
	return id
}

func (s *Store) Remove(nowTick uint64, actor, id, reason string) {
	e := s.items[id]
	if e == nil {
		return
	}
	delete(s.items, id)
	if s.Audit != nil {
		s.Audit(nowTick, actor, "ITEM_DESPAWN", e.Pos, reason, map[string]any{
			"entity_id": id,
			"item":      e.Item,
			"count":     e.Count,
		})
	}
}

// Take reduces an entity by n units, removing it when nothing is left.
func (s *Store) Take(nowTick uint64, actor, id string, n int, reason string) {
	e := s.items[id]
	if e == nil || n <= 0 {
		return
	}
	if n >= e.Count {
		s.Remove(nowTick, actor, id, reason)
		return
	}
	e.Count -= n
}

// Near returns entities within radius of pos that can be picked up at nowTick, sorted by id.
func (s *Store) Near(nowTick uint64, pos mgl32.Vec2, radius float32) []*ItemEntity {
	out := make([]*ItemEntity, 0)
	for _, e := range s.items {
		if nowTick < e.PickupTick {
			continue
		}
		if e.Pos.Sub(pos).Len() <= radius {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Within returns every entity within radius of pos regardless of pickup delay, sorted by id.
func (s *Store) Within(pos mgl32.Vec2, radius float32) []*ItemEntity {
	out := make([]*ItemEntity, 0)
	for _, e := range s.items {
		if e.Pos.Sub(pos).Len() <= radius {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

func SortedExpired(items map[string]*ItemEntity, nowTick uint64) []string {
	out := make([]string, 0)
	for id, e := range items {
		if e.ExpiresTick != 0 && nowTick >= e.ExpiresTick {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) CleanupExpired(nowTick uint64) {
	for _, id := range SortedExpired(s.items, nowTick) {
		s.Remove(nowTick, "WORLD", id, "EXPIRE")
	}
}

// RandomUnit returns a random direction with both components drawn from [-1, 1].
func RandomUnit(rng *rand.Rand) mgl32.Vec2 {
	for i := 0; i < 8; i++ {
		v := mgl32.Vec2{float32(rng.Float64()*2 - 1), float32(rng.Float64()*2 - 1)}
		if l := v.Len(); l > 1e-3 && !math.IsNaN(float64(l)) {
			return v.Mul(1 / l)
		}
	}
	return mgl32.Vec2{1, 0}
}

// DropPlacement computes where a dropped stack appears relative to origin and
// the impulse it leaves with.
func DropPlacement(rng *rand.Rand, origin mgl32.Vec2, offset, impulse float32) (pos, push mgl32.Vec2) {
	dir := RandomUnit(rng)
	return origin.Add(dir.Mul(offset)), dir.Mul(impulse)
}
