package main

import (
	"bytes"
	"strings"
	"testing"

	persistlog "farmstead.dev/internal/persistence/log"
	"farmstead.dev/internal/sim/world"
)

func writeAudits(t *testing.T, dir string, entries ...world.AuditEntry) []string {
	t.Helper()
	l := persistlog.NewAuditLogger(dir, nil)
	for _, e := range entries {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, err := persistlog.ListFiles(persistlog.AuditDir(dir), "audit")
	if err != nil || len(files) == 0 {
		t.Fatalf("list: %v %v", files, err)
	}
	return files
}

func TestScanFiltersAndSummarizes(t *testing.T) {
	files := writeAudits(t, t.TempDir(),
		world.AuditEntry{Tick: 1, Actor: "P1", Action: "PICKUP", Details: map[string]any{"item": "WOOD", "count": 3}},
		world.AuditEntry{Tick: 2, Actor: "P2", Action: "PICKUP", Details: map[string]any{"item": "WOOD", "count": 2}},
		world.AuditEntry{Tick: 3, Actor: "P1", Action: "MOVE_SLOT"},
		world.AuditEntry{Tick: 9, Actor: "P1", Action: "DROP_WORLD"},
	)

	sum := newSummary()
	f := filter{Actor: "P1", Actions: []string{"PICKUP", "MOVE_SLOT", "DROP_WORLD"}, ToTick: 5}
	if err := scan(files, f, func(e world.AuditEntry) error {
		sum.add(e)
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if sum.entries != 2 || sum.first != 1 || sum.last != 3 {
		t.Fatalf("unexpected summary %#v", sum)
	}
	if sum.items["WOOD"] != 3 {
		t.Fatalf("picked WOOD=%d want 3", sum.items["WOOD"])
	}

	var out bytes.Buffer
	sum.print(&out)
	if !strings.Contains(out.String(), "audit entries=2 ticks=1..3 actors=1") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestFilterMatch(t *testing.T) {
	e := world.AuditEntry{Tick: 10, Actor: "P1", Action: "PICKUP"}
	if !(filter{}).match(e) {
		t.Fatalf("empty filter should match")
	}
	if (filter{FromTick: 11}).match(e) || (filter{ToTick: 9}).match(e) {
		t.Fatalf("tick bounds not applied")
	}
	if (filter{Actions: []string{"MOVE_SLOT"}}).match(e) {
		t.Fatalf("action filter not applied")
	}
}

func TestSortedByCount(t *testing.T) {
	got := sortedByCount(map[string]int{"B": 2, "A": 2, "C": 5})
	if strings.Join(got, ",") != "C,A,B" {
		t.Fatalf("got %v", got)
	}
}
