package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"farmstead.dev/internal/persistence/indexdb"
	persistlog "farmstead.dev/internal/persistence/log"
	"farmstead.dev/internal/sim/world"
)

func main() {
	var (
		worldDir = flag.String("world_dir", "./data/worlds/farm_1", "world data directory containing audit/")
		actor    = flag.String("actor", "", "only entries by this actor (optional)")
		action   = flag.String("action", "", "only entries with this action, comma separated (optional)")
		fromTick = flag.Uint64("from_tick", 0, "first tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "last tick (inclusive, optional)")
		list     = flag.Bool("list", false, "print matching entries as JSON lines")
		indexTo  = flag.String("index", "", "load matching entries into this sqlite file and print action counts (optional)")
	)
	flag.Parse()

	files, err := persistlog.ListFiles(persistlog.AuditDir(*worldDir), "audit")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list audits:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no audit files found in", persistlog.AuditDir(*worldDir))
		os.Exit(1)
	}

	f := filter{Actor: strings.TrimSpace(*actor), FromTick: *fromTick, ToTick: *toTick}
	for _, a := range strings.Split(*action, ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Actions = append(f.Actions, strings.ToUpper(a))
		}
	}

	var idx *indexdb.SQLiteIndex
	if *indexTo != "" {
		idx, err = indexdb.OpenSQLite(*indexTo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open index:", err)
			os.Exit(1)
		}
		defer idx.Close()
	}

	sum := newSummary()
	err = scan(files, f, func(e world.AuditEntry) error {
		sum.add(e)
		if *list {
			b, _ := json.Marshal(e)
			fmt.Println(string(b))
		}
		return idx.WriteAudit(e)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		os.Exit(1)
	}
	sum.print(os.Stdout)

	if idx != nil {
		ctx := context.Background()
		if err := idx.Sync(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "sync index:", err)
			os.Exit(1)
		}
		counts, err := idx.CountByAction(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "count:", err)
			os.Exit(1)
		}
		if st := idx.Stats(); st.DropAuditTotal > 0 {
			fmt.Printf("index dropped=%d entries\n", st.DropAuditTotal)
		}
		for _, c := range counts {
			fmt.Printf("indexed %-20s %d\n", c.Action, c.Count)
		}
	}
}

type filter struct {
	Actor    string
	Actions  []string
	FromTick uint64
	ToTick   uint64
}

func (f filter) match(e world.AuditEntry) bool {
	if f.Actor != "" && e.Actor != f.Actor {
		return false
	}
	if e.Tick < f.FromTick {
		return false
	}
	if f.ToTick != 0 && e.Tick > f.ToTick {
		return false
	}
	if len(f.Actions) == 0 {
		return true
	}
	for _, a := range f.Actions {
		if a == e.Action {
			return true
		}
	}
	return false
}

func scan(files []string, f filter, fn func(world.AuditEntry) error) error {
	for _, path := range files {
		err := persistlog.ReadAuditFile(path, func(e world.AuditEntry) error {
			if !f.match(e) {
				return nil
			}
			return fn(e)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type summary struct {
	entries  int
	first    uint64
	last     uint64
	byAction map[string]int
	byActor  map[string]int
	items    map[string]int64
}

func newSummary() *summary {
	return &summary{byAction: map[string]int{}, byActor: map[string]int{}, items: map[string]int64{}}
}

func (s *summary) add(e world.AuditEntry) {
	if s.entries == 0 || e.Tick < s.first {
		s.first = e.Tick
	}
	if e.Tick > s.last {
		s.last = e.Tick
	}
	s.entries++
	s.byAction[e.Action]++
	s.byActor[e.Actor]++
	if e.Action == "PICKUP" {
		item, _ := e.Details["item"].(string)
		if n, ok := e.Details["count"].(float64); ok && item != "" {
			s.items[item] += int64(n)
		}
	}
}

func (s *summary) print(out io.Writer) {
	fmt.Fprintf(out, "audit entries=%d ticks=%d..%d actors=%d\n", s.entries, s.first, s.last, len(s.byActor))
	for _, k := range sortedByCount(s.byAction) {
		fmt.Fprintf(out, "action %-20s %d\n", k, s.byAction[k])
	}
	items := make([]string, 0, len(s.items))
	for k := range s.items {
		items = append(items, k)
	}
	sort.Strings(items)
	for _, k := range items {
		fmt.Fprintf(out, "picked %-20s %d\n", k, s.items[k])
	}
}

func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
