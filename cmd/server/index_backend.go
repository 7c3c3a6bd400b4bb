package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"farmstead.dev/internal/persistence/indexdb"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/tuning"
	"farmstead.dev/internal/sim/world"
)

type runtimeIndex interface {
	world.AuditLogger
	Close() error
	UpsertCatalogs(items *catalogs.Catalog, tune tuning.Tuning) error
	Stats() indexdb.Stats
	CountByAction(ctx context.Context) ([]indexdb.ActionCount, error)
	AuditsByActor(ctx context.Context, actor string, limit int) ([]world.AuditEntry, error)
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("FS_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		idx, err := indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported FS_INDEX_BACKEND: %s", backend)
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
