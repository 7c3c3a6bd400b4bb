package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "farmstead.dev/internal/persistence/log"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/tuning"
	"farmstead.dev/internal/sim/world"
	"farmstead.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "farm_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (drop directions)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite audit index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	items, err := catalogs.Load(*configDir, log.New(os.Stdout, "[catalog] ", log.LstdFlags))
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	// Optional read-model index (the JSONL audit log stays authoritative).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(items, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	w, err := world.New(world.WorldConfig{
		ID:     *worldID,
		Seed:   *seed,
		Tuning: tune,
	}, items, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	var sink world.AuditLogger
	if idx != nil {
		sink = idx
	}
	auditLog := persistlog.NewAuditLogger(worldDir, sink)
	defer auditLog.Close()
	w.SetAuditLogger(auditLog)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeWorldMetrics(rw, *worldID, w)
		if idx != nil {
			writeIndexMetrics(rw, *worldID, idx)
		}
	})

	enableAdminHTTP := envBool("FS_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("FS_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Digest  string             `json:"items_digest"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: *worldID,
				Tick:    w.CurrentTick(),
				Digest:  items.Digest,
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		if idx != nil {
			auditLimit := envInt("FS_ADMIN_AUDIT_LIMIT", 200)
			mux.HandleFunc("/admin/v1/audits", func(rw http.ResponseWriter, r *http.Request) {
				if !isLoopbackRemote(r.RemoteAddr) {
					http.Error(rw, "forbidden", http.StatusForbidden)
					return
				}
				ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
				defer cancel2()
				rw.Header().Set("Content-Type", "application/json")

				actor := strings.TrimSpace(r.URL.Query().Get("actor"))
				if actor == "" {
					counts, err := idx.CountByAction(ctx2)
					if err != nil {
						http.Error(rw, err.Error(), http.StatusServiceUnavailable)
						return
					}
					_ = json.NewEncoder(rw).Encode(map[string]any{"counts": counts})
					return
				}
				entries, err := idx.AuditsByActor(ctx2, actor, auditLimit)
				if err != nil {
					http.Error(rw, err.Error(), http.StatusServiceUnavailable)
					return
				}
				_ = json.NewEncoder(rw).Encode(map[string]any{"actor": actor, "entries": entries})
			})
		}
	} else {
		logger.Printf("admin endpoints disabled (FS_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, log.New(os.Stdout, "[ws] ", log.LstdFlags)).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s world=%s items=%d digest=%s", *addr, *worldID, items.Len(), items.Digest)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func writeWorldMetrics(rw http.ResponseWriter, worldID string, w *world.World) {
	m := w.Metrics()
	tick := w.CurrentTick()
	if m.Tick != 0 {
		tick = m.Tick
	}

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP farmstead_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_tick gauge\n")
	fmt.Fprintf(rw, "farmstead_world_tick{world=%q} %d\n", worldID, tick)

	fmt.Fprintf(rw, "# HELP farmstead_world_players Connected players.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_players gauge\n")
	fmt.Fprintf(rw, "farmstead_world_players{world=%q} %d\n", worldID, m.Players)

	fmt.Fprintf(rw, "# HELP farmstead_world_items Item entities lying in the world.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_items gauge\n")
	fmt.Fprintf(rw, "farmstead_world_items{world=%q} %d\n", worldID, m.Items)

	fmt.Fprintf(rw, "# HELP farmstead_world_trees Standing trees.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_trees gauge\n")
	fmt.Fprintf(rw, "farmstead_world_trees{world=%q} %d\n", worldID, m.Trees)

	fmt.Fprintf(rw, "# HELP farmstead_world_scheduled Pending delayed actions.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_scheduled gauge\n")
	fmt.Fprintf(rw, "farmstead_world_scheduled{world=%q} %d\n", worldID, m.Scheduled)

	fmt.Fprintf(rw, "# HELP farmstead_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "farmstead_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "farmstead_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "farmstead_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	fmt.Fprintf(rw, "# HELP farmstead_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_world_step_ms gauge\n")
	fmt.Fprintf(rw, "farmstead_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)
}

func writeIndexMetrics(rw http.ResponseWriter, worldID string, idx runtimeIndex) {
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP farmstead_index_queue_depth Audit index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "farmstead_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)

	fmt.Fprintf(rw, "# HELP farmstead_index_queue_capacity Audit index writer queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "farmstead_index_queue_capacity{world=%q} %d\n", worldID, s.QueueCapacity)

	fmt.Fprintf(rw, "# HELP farmstead_index_dropped_audits_total Audits dropped because the index fell behind.\n")
	fmt.Fprintf(rw, "# TYPE farmstead_index_dropped_audits_total counter\n")
	fmt.Fprintf(rw, "farmstead_index_dropped_audits_total{world=%q} %d\n", worldID, s.DropAuditTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
