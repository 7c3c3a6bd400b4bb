package world

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/entities"
	"farmstead.dev/internal/sim/harvest"
	"farmstead.dev/internal/sim/inventory"
	"farmstead.dev/internal/sim/schedule"
	"farmstead.dev/internal/sim/tuning"
)

type WorldConfig struct {
	ID     string
	Seed   int64
	Tuning tuning.Tuning
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome  protocol.WelcomeMsg
	Catalogs []protocol.CatalogMsg
}

type InputEnvelope struct {
	PlayerID string
	Msg      protocol.InputMsg
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg   WorldConfig
	tune  tuning.Tuning
	items *catalogs.Catalog
	log   *log.Logger
	rng   *rand.Rand

	tick atomic.Uint64

	players map[string]*Player
	chests  map[string]*Chest

	store *entities.Store
	grove *harvest.Grove
	queue *schedule.Queue

	// Item ids whose catalog miss was already reported.
	missReported map[string]bool

	inbox chan InputEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextPlayerNum atomic.Uint64

	// Optional (may be nil). Implemented in internal/persistence/*.
	auditLogger AuditLogger

	metrics atomic.Value
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Tick    uint64         `json:"tick"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"` // e.g. "MOVE_SLOT"
	Pos     [2]float32     `json:"pos"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func New(cfg WorldConfig, items *catalogs.Catalog, logger *log.Logger) (*World, error) {
	if items == nil {
		return nil, fmt.Errorf("world: nil item catalog")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	t := cfg.Tuning

	w := &World{
		cfg:          cfg,
		tune:         t,
		items:        items,
		log:          logger,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		players:      map[string]*Player{},
		chests:       map[string]*Chest{},
		store:        entities.NewStore(),
		queue:        schedule.NewQueue(),
		missReported: map[string]bool{},
		inbox:        make(chan InputEnvelope, 1024),
		join:         make(chan JoinRequest, 64),
		leave:        make(chan string, 64),
		stop:         make(chan struct{}),
	}
	w.store.TTLTicks = uint64(t.Drop.TTLTicks)
	w.store.PickupDelayTicks = uint64(t.PickupDelayTicks)
	w.store.Audit = w.auditEvent

	w.grove = harvest.NewGrove(harvest.Rules{
		Range:         t.Harvest.ChopRange,
		CooldownTicks: uint64(t.Harvest.ChopCooldownTicks),
		DelayTicks:    uint64(t.Harvest.ChopDelayTicks),
		Damage:        t.Harvest.ChopDamage,
	}, w.queue, harvest.Hooks{
		Hit:    w.onTreeHit,
		Felled: w.onTreeFelled,
	})

	for _, c := range t.Layout.Chests {
		slots := c.Slots
		if slots <= 0 {
			slots = 21
		}
		w.chests[c.ID] = newChest(c.ID, vec2(c.Pos), slots)
	}
	for _, tr := range t.Layout.Trees {
		w.grove.Plant(&harvest.Tree{
			ID:        tr.ID,
			Pos:       vec2(tr.Pos),
			Health:    t.Harvest.TreeHealth,
			Drops:     tr.Drops,
			DropCount: tr.DropCount,
		})
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

// SetAuditLogger must be called before Run.
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

// SetPhysics hands every spawned item to p. Must be called before Run.
func (w *World) SetPhysics(p entities.Physics) { w.store.Physics = p }

func (w *World) Inbox() chan<- InputEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest    { return w.join }
func (w *World) Leave() chan<- string        { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.tune.TickRateHz
}

// Items is the frozen catalog the world resolves item ids against.
func (w *World) Items() *catalogs.Catalog { return w.items }

// SpawnItem places a world item entity. It is the entry point for anything
// outside the player loop that produces items (harvest, tests, admin tools).
func (w *World) SpawnItem(nowTick uint64, actor, item string, count int, pos, impulse mgl32.Vec2, reason string) string {
	return w.store.Spawn(nowTick, actor, item, count, pos, impulse, reason)
}

func vec2(p [2]float32) mgl32.Vec2 { return mgl32.Vec2{p[0], p[1]} }

func arr2(v mgl32.Vec2) [2]float32 { return [2]float32{v[0], v[1]} }

var _ inventory.Holder = (*Player)(nil)
