package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	// Player inventories in creation order. The first pickup_order entry that
	// accepts an item receives it.
	PlayerInventories []InventorySpec `yaml:"player_inventories"`
	ToolbarInventory  string          `yaml:"toolbar_inventory"`
	PickupOrder       []string        `yaml:"pickup_order"`

	PickupRadius     float32 `yaml:"pickup_radius"`
	PickupDelayTicks int     `yaml:"pickup_delay_ticks"`
	ChestReach       float32 `yaml:"chest_reach"`

	Drop    DropTuning    `yaml:"drop"`
	Harvest HarvestTuning `yaml:"harvest"`
	Layout  Layout        `yaml:"layout"`
}

type InventorySpec struct {
	Name  string `yaml:"name"`
	Slots int    `yaml:"slots"`
}

type DropTuning struct {
	// Spawn offset from the dropping actor along a random unit vector.
	Offset float32 `yaml:"offset"`
	// Impulse magnitude applied once at spawn along the same vector.
	Impulse  float32 `yaml:"impulse"`
	TTLTicks int     `yaml:"ttl_ticks"`
}

type HarvestTuning struct {
	ChopRange         float32 `yaml:"chop_range"`
	ChopCooldownTicks int     `yaml:"chop_cooldown_ticks"`
	ChopDelayTicks    int     `yaml:"chop_delay_ticks"`
	ChopDamage        float32 `yaml:"chop_damage"`
	TreeHealth        float32 `yaml:"tree_health"`
}

type Layout struct {
	Spawn  [2]float32 `yaml:"spawn"`
	Chests []ChestSpec `yaml:"chests"`
	Trees  []TreeSpec  `yaml:"trees"`
}

type ChestSpec struct {
	ID    string     `yaml:"id"`
	Pos   [2]float32 `yaml:"pos"`
	Slots int        `yaml:"slots"`
}

type TreeSpec struct {
	ID        string     `yaml:"id"`
	Pos       [2]float32 `yaml:"pos"`
	Drops     string     `yaml:"drops"`
	DropCount int        `yaml:"drop_count"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      30,
		PlayerInventories: []InventorySpec{
			{Name: "backpack", Slots: 21},
			{Name: "toolbar", Slots: 9},
		},
		ToolbarInventory: "toolbar",
		PickupOrder:      []string{"backpack"},
		PickupRadius:     0.5,
		PickupDelayTicks: 15,
		ChestReach:       1.5,
		Drop: DropTuning{
			Offset:   1,
			Impulse:  2,
			TTLTicks: 9000,
		},
		Harvest: HarvestTuning{
			ChopRange:         1,
			ChopCooldownTicks: 30,
			ChopDelayTicks:    9,
			ChopDamage:        10,
			TreeHealth:        100,
		},
	}
}

// Load reads tuning.yaml on top of Defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return errors.New("tick_rate_hz must be positive")
	}
	names := map[string]bool{}
	for _, s := range t.PlayerInventories {
		if s.Name == "" {
			return errors.New("player_inventories: empty name")
		}
		if s.Slots < 0 {
			return fmt.Errorf("player_inventories: %s: negative slots", s.Name)
		}
		if names[s.Name] {
			return fmt.Errorf("player_inventories: duplicate %s", s.Name)
		}
		names[s.Name] = true
	}
	if t.ToolbarInventory != "" && !names[t.ToolbarInventory] {
		return fmt.Errorf("toolbar_inventory: unknown inventory %s", t.ToolbarInventory)
	}
	for _, n := range t.PickupOrder {
		if !names[n] {
			return fmt.Errorf("pickup_order: unknown inventory %s", n)
		}
	}
	if t.PickupRadius < 0 || t.ChestReach < 0 || t.Drop.Offset < 0 || t.Drop.Impulse < 0 {
		return errors.New("distances and impulses must not be negative")
	}
	ids := map[string]bool{}
	for _, c := range t.Layout.Chests {
		if c.ID == "" || ids[c.ID] {
			return fmt.Errorf("layout.chests: bad or duplicate id %q", c.ID)
		}
		ids[c.ID] = true
	}
	for _, tr := range t.Layout.Trees {
		if tr.ID == "" || ids[tr.ID] {
			return fmt.Errorf("layout.trees: bad or duplicate id %q", tr.ID)
		}
		ids[tr.ID] = true
	}
	return nil
}
