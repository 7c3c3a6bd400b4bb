package inventory

import (
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"farmstead.dev/internal/sim/catalogs"
)

var (
	wood  = catalogs.ItemDef{ID: "WOOD", Icon: "icons/wood", StackLimit: 10}
	stone = catalogs.ItemDef{ID: "STONE", Icon: "icons/stone", StackLimit: 10}
)

func fill(t *testing.T, inv *Inventory, def catalogs.ItemDef, n int) {
	t.Helper()
	if added, err := inv.AddCount(def, n); err != nil || added != n {
		t.Fatalf("AddCount(%s,%d): added=%d err=%v", def.ID, n, added, err)
	}
}

func checkInvariants(t *testing.T, inv *Inventory) {
	t.Helper()
	for i, s := range inv.Slots() {
		if (s.Count == 0) != (s.Item == "") {
			t.Fatalf("%s[%d]: empty invariant broken: %#v", inv.ID(), i, s)
		}
		if s.Count < 0 || s.Count > s.Limit {
			t.Fatalf("%s[%d]: stack bound broken: %#v", inv.ID(), i, s)
		}
		if s.Count == 0 && s.Icon != "" {
			t.Fatalf("%s[%d]: icon not cleared: %#v", inv.ID(), i, s)
		}
	}
}

func TestAdd_StacksIntoFirstSlot(t *testing.T) {
	inv := New("P1", "backpack", 3)
	for i := 0; i < 2; i++ {
		idx, err := inv.Add(wood)
		if err != nil || idx != 0 {
			t.Fatalf("Add #%d: idx=%d err=%v", i, idx, err)
		}
	}
	s, _ := inv.Slot(0)
	if s.Item != "WOOD" || s.Count != 2 || s.Icon != "icons/wood" || s.Limit != 10 {
		t.Fatalf("unexpected slot 0: %#v", s)
	}
	checkInvariants(t, inv)
}

func TestAdd_FullStackSpillsToNextSlot(t *testing.T) {
	inv := New("P1", "backpack", 3)
	fill(t, inv, wood, 10)

	idx, err := inv.Add(wood)
	if err != nil || idx != 1 {
		t.Fatalf("Add: idx=%d err=%v", idx, err)
	}
	s0, _ := inv.Slot(0)
	s1, _ := inv.Slot(1)
	if s0.Count != 10 || s1.Item != "WOOD" || s1.Count != 1 {
		t.Fatalf("unexpected slots: %#v %#v", s0, s1)
	}
}

func TestAdd_PrefersExistingStackOverEarlierEmpty(t *testing.T) {
	inv := New("P1", "backpack", 3)
	fill(t, inv, stone, 1)
	fill(t, inv, wood, 1)
	if _, err := inv.Remove(0, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	idx, err := inv.Add(wood)
	if err != nil || idx != 1 {
		t.Fatalf("expected wood to stack onto slot 1, idx=%d err=%v", idx, err)
	}
}

func TestAdd_FullInventoryIsObservable(t *testing.T) {
	inv := New("P1", "backpack", 1)
	fill(t, inv, wood, 10)

	before := inv.Slots()
	if _, err := inv.Add(wood); !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("expected ErrInventoryFull, got %v", err)
	}
	if _, err := inv.Add(stone); !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("expected ErrInventoryFull, got %v", err)
	}
	if !reflect.DeepEqual(before, inv.Slots()) {
		t.Fatalf("rejected add mutated inventory")
	}

	added, err := New("P1", "toolbar", 1).AddCount(wood, 12)
	if added != 10 || !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("AddCount partial: added=%d err=%v", added, err)
	}
}

func TestAdd_EmptyIdentityIsCatalogMiss(t *testing.T) {
	inv := New("P1", "backpack", 1)
	if _, err := inv.Add(catalogs.ItemDef{}); !errors.Is(err, catalogs.ErrCatalogMiss) {
		t.Fatalf("expected ErrCatalogMiss, got %v", err)
	}
}

func TestRemove_StrictPolicy(t *testing.T) {
	inv := New("P1", "backpack", 2)
	fill(t, inv, wood, 2)

	if _, err := inv.Remove(0, 3); !errors.Is(err, ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity, got %v", err)
	}
	if s, _ := inv.Slot(0); s.Count != 2 {
		t.Fatalf("over-request must not change the slot, got %#v", s)
	}
	if _, err := inv.Remove(0, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := inv.Remove(5, 1); !errors.Is(err, ErrNoSuchSlot) {
		t.Fatalf("expected ErrNoSuchSlot, got %v", err)
	}
	if _, err := inv.Remove(1, 1); !errors.Is(err, ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity on empty slot, got %v", err)
	}

	st, err := inv.Remove(0, 2)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if st != (Stack{Item: "WOOD", Icon: "icons/wood", Count: 2}) {
		t.Fatalf("unexpected stack: %#v", st)
	}
	s, _ := inv.Slot(0)
	if !s.IsEmpty() || s.Icon != "" || s.Limit != catalogs.DefaultStackLimit {
		t.Fatalf("slot should be cleared, got %#v", s)
	}
}

func TestMoveSlot_PartialStack(t *testing.T) {
	src := New("P1", "backpack", 2)
	dst := New("C1", "chest", 2)
	fill(t, src, stone, 5)

	if err := src.MoveSlot(0, 0, dst, 3); err != nil {
		t.Fatalf("MoveSlot: %v", err)
	}
	s, _ := src.Slot(0)
	d, _ := dst.Slot(0)
	if s.Item != "STONE" || s.Count != 2 {
		t.Fatalf("unexpected source: %#v", s)
	}
	if d.Item != "STONE" || d.Count != 3 || d.Limit != 10 || d.Icon != "icons/stone" {
		t.Fatalf("unexpected destination: %#v", d)
	}
}

func TestMoveSlot_RejectsOverflowInFull(t *testing.T) {
	src := New("P1", "backpack", 1)
	dst := New("C1", "chest", 1)
	fill(t, src, stone, 5)
	fill(t, dst, stone, 9)

	err := src.MoveSlot(0, 0, dst, 3)
	if !errors.Is(err, ErrIncompatibleDestination) {
		t.Fatalf("expected ErrIncompatibleDestination, got %v", err)
	}
	s, _ := src.Slot(0)
	d, _ := dst.Slot(0)
	if s.Count != 5 || d.Count != 9 {
		t.Fatalf("rejected move changed counts: src=%d dst=%d", s.Count, d.Count)
	}
}

func TestMoveSlot_Rejections(t *testing.T) {
	src := New("P1", "backpack", 2)
	dst := New("C1", "chest", 1)
	fill(t, src, stone, 2)
	fill(t, dst, wood, 1)

	cases := []struct {
		name     string
		from, to int
		n        int
		want     error
	}{
		{"different item", 0, 0, 1, ErrIncompatibleDestination},
		{"too many", 0, 0, 3, ErrInsufficientQuantity},
		{"empty source", 1, 0, 1, ErrInsufficientQuantity},
		{"bad source index", 7, 0, 1, ErrNoSuchSlot},
		{"bad destination index", 0, 4, 1, ErrNoSuchSlot},
		{"zero quantity", 0, 0, 0, ErrInvalidQuantity},
	}
	for _, tc := range cases {
		beforeSrc, beforeDst := src.Slots(), dst.Slots()
		if err := src.MoveSlot(tc.from, tc.to, dst, tc.n); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !reflect.DeepEqual(beforeSrc, src.Slots()) || !reflect.DeepEqual(beforeDst, dst.Slots()) {
			t.Fatalf("%s: rejected move mutated state", tc.name)
		}
	}
	if err := src.MoveSlot(0, 0, nil, 1); !errors.Is(err, ErrIncompatibleDestination) {
		t.Fatalf("expected ErrIncompatibleDestination for nil destination, got %v", err)
	}
}

func TestMoveSlot_WithinInventory(t *testing.T) {
	inv := New("P1", "backpack", 3)
	fill(t, inv, wood, 4)

	if err := inv.MoveSlot(0, 0, inv, 4); err != nil {
		t.Fatalf("self move should be a no-op, got %v", err)
	}
	if err := inv.MoveSlot(0, 2, inv, 4); err != nil {
		t.Fatalf("MoveSlot: %v", err)
	}
	s0, _ := inv.Slot(0)
	s2, _ := inv.Slot(2)
	if !s0.IsEmpty() || s2.Count != 4 {
		t.Fatalf("unexpected slots after move: %#v %#v", s0, s2)
	}
	checkInvariants(t, inv)
}

func TestRandomOperations_KeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := New("P1", "backpack", 4)
	b := New("C1", "chest", 3)
	invs := []*Inventory{a, b}
	defs := []catalogs.ItemDef{wood, stone, {ID: "SEED", StackLimit: 3}}

	for step := 0; step < 2000; step++ {
		switch rng.Intn(3) {
		case 0:
			_, _ = invs[rng.Intn(2)].Add(defs[rng.Intn(len(defs))])
		case 1:
			inv := invs[rng.Intn(2)]
			_, _ = inv.Remove(rng.Intn(inv.Len()), 1+rng.Intn(3))
		case 2:
			from, to := invs[rng.Intn(2)], invs[rng.Intn(2)]
			fi, ti := rng.Intn(from.Len()), rng.Intn(to.Len())
			sumBefore := slotCount(from, fi) + slotCount(to, ti)
			srcBefore := slotCount(from, fi)
			n := 1 + rng.Intn(4)
			err := from.MoveSlot(fi, ti, to, n)
			sumAfter := slotCount(from, fi) + slotCount(to, ti)
			if sumBefore != sumAfter {
				t.Fatalf("step %d: conservation broken %d -> %d", step, sumBefore, sumAfter)
			}
			if err == nil && !(from == to && fi == ti) && srcBefore-slotCount(from, fi) != n {
				t.Fatalf("step %d: moved amount mismatch", step)
			}
		}
		checkInvariants(t, a)
		checkInvariants(t, b)
	}
}

func slotCount(inv *Inventory, i int) int {
	s, _ := inv.Slot(i)
	return s.Count
}

func TestMoveSlot_ConcurrentCrossMoves(t *testing.T) {
	a := New("P1", "backpack", 1)
	b := New("C1", "chest", 1)
	big := catalogs.ItemDef{ID: "SEED", StackLimit: 1000}
	fill(t, a, big, 500)
	fill(t, b, big, 500)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = a.MoveSlot(0, 0, b, 1)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = b.MoveSlot(0, 0, a, 1)
			}
		}()
	}
	wg.Wait()

	if total := a.Count("SEED") + b.Count("SEED"); total != 1000 {
		t.Fatalf("expected 1000 seeds total, got %d", total)
	}
	checkInvariants(t, a)
	checkInvariants(t, b)
}

func TestCollection(t *testing.T) {
	c := NewCollection("P1")
	tool := c.Create("toolbar", 1)
	c.Create("backpack", 2)
	if again := c.Create("toolbar", 5); again != tool || again.Len() != 1 {
		t.Fatalf("Create must return the existing inventory with its fixed size")
	}
	if names := c.Names(); len(names) != 2 || names[0] != "toolbar" || names[1] != "backpack" {
		t.Fatalf("unexpected names %#v", names)
	}

	fill(t, tool, wood, 10)
	inv, idx, err := c.AddFirst([]string{"toolbar", "missing", "backpack"}, wood)
	if err != nil || inv.Name() != "backpack" || idx != 0 {
		t.Fatalf("AddFirst: inv=%v idx=%d err=%v", inv, idx, err)
	}
	if _, err := c.Add("missing", wood); !errors.Is(err, ErrNoSuchInventory) {
		t.Fatalf("expected ErrNoSuchInventory, got %v", err)
	}

	full := NewCollection("P2")
	full.Create("toolbar", 0)
	if _, _, err := full.AddFirst([]string{"toolbar"}, wood); !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("expected ErrInventoryFull, got %v", err)
	}
}
