package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end check of the dashboard pipeline: rows in sqlite → snapshot
// → per-staff stats.
func TestStaffStatsRowsFromDatabaseSnapshot(t *testing.T) {
	srv := newTestServer(t)

	mustExec(t, srv.db, `
		INSERT INTO staff (id, name, base_salary, capacity_hours_month)
		VALUES ('s-1', 'Marta López', 3200, 160)
	`)
	mustExec(t, srv.db, `
		INSERT INTO task_definitions (id, name, area, default_time_minutes, default_frequency_year, multiplier_logic)
		VALUES ('t-1', 'Registro contable', 'accounting', 4, 12, 'documentCount')
	`)
	// The second client names the staff member by her legacy free-text
	// name; her workload must include it anyway.
	mustExec(t, srv.db, `
		INSERT INTO clients (id, name, monthly_fee, document_count, responsible_staff)
		VALUES
			('c-1', 'Cliente Uno', 300, 100, 's-1'),
			('c-2', 'Cliente Dos', 150, 50, 'Marta López')
	`)
	mustExec(t, srv.db, `INSERT INTO area_costs (area, hourly_cost) VALUES ('accounting', 22)`)

	snap, err := srv.loadSnapshot()
	require.NoError(t, err)

	rows := staffStatsRows(snap)
	require.Len(t, rows, 1)

	stats := rows[0].Stats
	assert.Equal(t, 2, stats.ClientCount, "legacy-named client must join the portfolio")

	// c-1: 4*100*12 = 4800 min/yr; c-2: 4*50*12 = 2400 min/yr.
	// 7200 min/yr = 10 h/month.
	assert.InDelta(t, 10, stats.AllocatedHoursMonth, 1e-9)
	assert.InDelta(t, 6.25, stats.CapacityUtilizationPercent, 1e-9)

	// Revenue (300+150)*12 = 5400; cost 120 h/yr at 20/h = 2400.
	assert.InDelta(t, 5400, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 2400, stats.TotalCost, 1e-9)
	assert.InDelta(t, (5400-2400)/5400.0*100, stats.ProfitabilityPercent, 1e-9)
}
