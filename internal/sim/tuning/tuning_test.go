package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := `
tick_rate_hz: 20
player_inventories:
  - name: backpack
    slots: 12
  - name: toolbar
    slots: 6
pickup_order: [toolbar, backpack]
drop:
  impulse: 3.5
layout:
  chests:
    - id: C1
      pos: [2, 3]
      slots: 8
  trees:
    - id: T1
      pos: [5, 5]
      drops: WOOD
      drop_count: 3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tu, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.TickRateHz != 20 || tu.PlayerInventories[0].Slots != 12 || tu.PickupOrder[0] != "toolbar" {
		t.Fatalf("overrides not applied: %#v", tu)
	}
	if tu.Drop.Impulse != 3.5 || tu.Drop.Offset != 1 {
		t.Fatalf("drop tuning should merge with defaults: %#v", tu.Drop)
	}
	if tu.Harvest.TreeHealth != 100 {
		t.Fatalf("unset sections keep defaults, got %#v", tu.Harvest)
	}
	if len(tu.Layout.Chests) != 1 || tu.Layout.Chests[0].Pos != [2]float32{2, 3} {
		t.Fatalf("unexpected chests %#v", tu.Layout.Chests)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"tick":      "tick_rate_hz: 0\n",
		"pickup":    "pickup_order: [satchel]\n",
		"duplicate": "layout:\n  chests:\n    - id: X\n  trees:\n    - id: X\n",
		"yaml":      "tick_rate_hz: [\n",
	}
	for name, raw := range cases {
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := Load(path)
		if err == nil || !strings.HasPrefix(err.Error(), "tuning.yaml:") {
			t.Fatalf("%s: expected tuning.yaml error, got %v", name, err)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	tu, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if tu.TickRateHz != Defaults().TickRateHz {
		t.Fatalf("missing file should still return defaults")
	}
}
