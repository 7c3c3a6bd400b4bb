package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"farmstead.dev/internal/persistence/indexdb"
	"farmstead.dev/internal/sim/catalogs"
	"farmstead.dev/internal/sim/tuning"
	"farmstead.dev/internal/sim/world"
)

func TestListWorlds(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"worlds/farm_1/audit", "worlds/farm_2"} {
		if err := os.MkdirAll(filepath.Join(dir, p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	cases := []struct {
		world string
		want  string
	}{
		{"", "farm_1\nfarm_2\n"},
		{"farm_1", "audit\n"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := listWorlds(&buf, dir, tc.world); err != nil {
			t.Fatalf("listWorlds(%q): %v", tc.world, err)
		}
		if buf.String() != tc.want {
			t.Fatalf("listWorlds(%q)=%q want %q", tc.world, buf.String(), tc.want)
		}
	}
	if err := listWorlds(&bytes.Buffer{}, dir, "missing"); err == nil {
		t.Fatalf("expected error for a missing world")
	}
}

func TestAdminURL(t *testing.T) {
	cases := []struct {
		base, path, actor, want string
	}{
		{"http://127.0.0.1:8080/", "/admin/v1/state", "", "http://127.0.0.1:8080/admin/v1/state"},
		{" http://h ", "/admin/v1/audits", "P1", "http://h/admin/v1/audits?actor=P1"},
		{"http://h", "/admin/v1/audits", "a b", "http://h/admin/v1/audits?actor=a+b"},
	}
	for _, tc := range cases {
		if got := adminURL(tc.base, tc.path, tc.actor); got != tc.want {
			t.Fatalf("adminURL(%q,%q,%q)=%q want %q", tc.base, tc.path, tc.actor, got, tc.want)
		}
	}
}

func TestGetAndPrint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte(`{"tick":42}` + "\n"))
	})
	mux.HandleFunc("/admin/v1/audits", func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "forbidden", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/admin/v1/state", "{\"tick\":42}\n", false},
		{"/admin/v1/audits", "forbidden\n", true},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		err := getAndPrint(&buf, adminURL(srv.URL, tc.path, ""))
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.path, err, tc.wantErr)
		}
		if buf.String() != tc.want {
			t.Fatalf("%s: body %q want %q", tc.path, buf.String(), tc.want)
		}
	}
}

func TestRunQuery(t *testing.T) {
	ctx := context.Background()
	idx, err := indexdb.OpenSQLite(filepath.Join(t.TempDir(), "world.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	for _, e := range []world.AuditEntry{
		{Tick: 1, Actor: "P1", Action: "PICKUP"},
		{Tick: 2, Actor: "P1", Action: "MOVE_SLOT"},
		{Tick: 3, Actor: "P2", Action: "PICKUP"},
	} {
		if err := idx.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := idx.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	cat, err := catalogs.Parse([]byte(`[{"id":"WOOD"}]`), nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := idx.UpsertCatalogs(cat, tuning.Defaults()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cases := []struct {
		q, actor string
		contains string
		usage    bool
	}{
		{q: "actions", contains: `{"action":"PICKUP","count":2}`},
		{q: "audits", actor: "P1", contains: `"action":"MOVE_SLOT"`},
		{q: "catalogs", contains: `"digest":"` + cat.Digest + `"`},
		{q: "audits", usage: true},
		{q: "nope", usage: true},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		err := runQuery(ctx, &buf, idx, tc.q, tc.actor, 10)
		if tc.usage {
			if !errors.Is(err, errUsage) {
				t.Fatalf("%s: expected usage error, got %v", tc.q, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.q, err)
		}
		if !strings.Contains(buf.String(), tc.contains) {
			t.Fatalf("%s: output %q lacks %q", tc.q, buf.String(), tc.contains)
		}
	}
}
