package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"farmstead.dev/internal/persistence/indexdb"
)

var errUsage = errors.New("usage")

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	actor := fs.String("actor", "", "actor id (audits query)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "actions"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}

	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := runQuery(context.Background(), os.Stdout, idx, q, *actor, *limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, w io.Writer, idx *indexdb.SQLiteIndex, q, actor string, limit int) error {
	switch q {
	case "actions":
		counts, err := idx.CountByAction(ctx)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		for _, c := range counts {
			printJSON(w, c)
		}
	case "audits":
		if strings.TrimSpace(actor) == "" {
			return fmt.Errorf("%w: missing -actor", errUsage)
		}
		entries, err := idx.AuditsByActor(ctx, actor, limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		for _, e := range entries {
			printJSON(w, e)
		}
	case "catalogs":
		for _, name := range []string{"items", "tuning"} {
			d, err := idx.CatalogDigest(ctx, name)
			if err != nil {
				return fmt.Errorf("query %s: %w", name, err)
			}
			printJSON(w, map[string]string{"name": name, "digest": d})
		}
	default:
		return fmt.Errorf("%w: unknown query %s (want actions|audits|catalogs)", errUsage, q)
	}
	return nil
}
