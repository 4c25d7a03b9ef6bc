package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gestorlab/despacho/internal/db"
	"github.com/gestorlab/despacho/internal/migrations"
)

// newTestServer opens a migrated throwaway database.
func newTestServer(t *testing.T) *server {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = database.Close() })
	return &server{db: database}
}

func mustExec(t *testing.T, database *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := database.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestLoadSnapshotResolvesResponsibleStaffAtBoundary(t *testing.T) {
	srv := newTestServer(t)

	mustExec(t, srv.db, `
		INSERT INTO staff (id, name, base_salary, capacity_hours_month)
		VALUES ('s-1', 'Marta López', 3200, 160)
	`)
	mustExec(t, srv.db, `
		INSERT INTO clients (id, name, responsible_staff) VALUES
			('c-id', 'Cliente Por Id', 's-1'),
			('c-name', 'Cliente Por Nombre', 'Marta López'),
			('c-legacy', 'Cliente Huérfano', 'Contador Que Se Fue')
	`)

	snap, err := srv.loadSnapshot()
	if err != nil {
		t.Fatalf("loadSnapshot returned error: %v", err)
	}

	refs := make(map[string]struct {
		staffID string
		legacy  string
	})
	for _, c := range snap.Clients {
		refs[c.ID] = struct {
			staffID string
			legacy  string
		}{c.Responsible.StaffID, c.Responsible.LegacyName}
	}

	if got := refs["c-id"]; got.staffID != "s-1" || got.legacy != "" {
		t.Fatalf("id-based responsible resolved to %+v", got)
	}
	if got := refs["c-name"]; got.staffID != "s-1" || got.legacy != "Marta López" {
		t.Fatalf("name-based responsible resolved to %+v", got)
	}
	if got := refs["c-legacy"]; got.staffID != "" || got.legacy != "Contador Que Se Fue" {
		t.Fatalf("unmatched responsible resolved to %+v", got)
	}
}

func TestLoadSnapshotAttachesOverridesInPositionOrder(t *testing.T) {
	srv := newTestServer(t)

	mustExec(t, srv.db, `
		INSERT INTO task_definitions (id, name, area, default_time_minutes, default_frequency_year, multiplier_logic)
		VALUES
			('t-1', 'Registro contable', 'accounting', 4, 12, 'documentCount'),
			('t-2', 'Nómina', 'hr', 10, 12, 'employeeCount')
	`)
	mustExec(t, srv.db, `INSERT INTO clients (id, name) VALUES ('c-1', 'Cliente Uno')`)
	mustExec(t, srv.db, `
		INSERT INTO client_tasks (client_id, task_id, multiplier, frequency_year, assigned_staff_id, position)
		VALUES
			('c-1', 't-2', NULL, 6, 's-x', 2),
			('c-1', 't-1', 10, NULL, NULL, 1)
	`)

	snap, err := srv.loadSnapshot()
	if err != nil {
		t.Fatalf("loadSnapshot returned error: %v", err)
	}

	if len(snap.Clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(snap.Clients))
	}
	overrides := snap.Clients[0].Tasks
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}

	if overrides[0].TaskID != "t-1" || overrides[1].TaskID != "t-2" {
		t.Fatalf("overrides not in position order: %+v", overrides)
	}
	if overrides[0].Multiplier == nil || *overrides[0].Multiplier != 10 {
		t.Fatalf("expected multiplier 10 on first override, got %+v", overrides[0])
	}
	if overrides[0].FrequencyPerYear != nil {
		t.Fatalf("expected nil frequency on first override, got %v", *overrides[0].FrequencyPerYear)
	}
	if overrides[1].FrequencyPerYear == nil || *overrides[1].FrequencyPerYear != 6 {
		t.Fatalf("expected frequency 6 on second override, got %+v", overrides[1])
	}
	if overrides[1].AssignedStaffID != "s-x" {
		t.Fatalf("expected assigned staff s-x, got %q", overrides[1].AssignedStaffID)
	}
}
