package costing

import (
	"math"
	"testing"
)

func TestStaffHourlyCost_FullyLoadedAndRounded(t *testing.T) {
	s := Staff{
		BaseSalary:            2400,
		SocialChargesPercent:  30,
		MealAllowance:         160,
		OtherMonthlyCosts:     80,
		CapacityHoursPerMonth: 160,
	}

	// (2400 + 720 + 160 + 80) / 160 = 21
	nearlyEqual(t, "hourly cost", StaffHourlyCost(s), 21)

	s.OtherMonthlyCosts = 81.5 // 3361.5/160 = 21.009375 -> 21.01
	nearlyEqual(t, "rounded hourly cost", StaffHourlyCost(s), 21.01)
}

func TestStaffHourlyCost_ZeroCapacityIsZeroNotPanic(t *testing.T) {
	nearlyEqual(t, "hourly cost", StaffHourlyCost(Staff{BaseSalary: 2000}), 0)
}

func TestClientProfitability_UsesOwnerRateWithAreaFallback(t *testing.T) {
	tasks := catalogFixture()
	staff := []Staff{
		{ID: "s-resp", Name: "Marta", BaseSalary: 3200, CapacityHoursPerMonth: 160}, // 20/h
	}
	areaCosts := AreaCosts{AreaAccounting: 18, AreaHR: 25, AreaAdministrative: 15}
	client := Client{
		MonthlyFee:    300,
		DocumentCount: 30, // t-bank: 4*30*12 = 1440 min = 24 h, owned by s-resp
		EmployeeCount: 4,  // t-payroll: 10*4*12 = 480 min = 8 h, assignee unknown
		Responsible:   StaffRef{StaffID: "s-resp"},
		Tasks: []ClientTaskOverride{
			{TaskID: "t-payroll", AssignedStaffID: "s-gone"},
		},
	}

	p := ComputeClientProfitability(client, tasks, areaCosts, staff)

	nearlyEqual(t, "annual minutes", p.AnnualMinutes, 1920)
	nearlyEqual(t, "annual hours", p.AnnualHours, 32)
	// 24h * 20 (staff) + 8h * 25 (HR area fallback) = 680
	nearlyEqual(t, "annual cost", p.AnnualCost, 680)
	nearlyEqual(t, "annual revenue", p.AnnualRevenue, 3600)
	nearlyEqual(t, "profitability", p.ProfitabilityPercent, (3600.0-680)/3600*100)
}

func TestClientProfitability_SupportCostedAtResponsibleRate(t *testing.T) {
	staff := []Staff{{ID: "s-resp", BaseSalary: 1600, CapacityHoursPerMonth: 160}} // 10/h
	client := Client{
		MonthlyFee:      100,
		Responsible:     StaffRef{StaffID: "s-resp"},
		CallTimeBalance: 60, // 720 min/year = 12 h
	}

	p := ComputeClientProfitability(client, nil, AreaCosts{AreaAdministrative: 40}, staff)

	nearlyEqual(t, "annual cost", p.AnnualCost, 120)

	// With an unmatched responsible the administrative rate applies.
	client.Responsible = StaffRef{LegacyName: "Alguien"}
	p = ComputeClientProfitability(client, nil, AreaCosts{AreaAdministrative: 40}, staff)
	nearlyEqual(t, "fallback annual cost", p.AnnualCost, 480)
}

func TestClientProfitability_UnbilledClientReportsZeroPercent(t *testing.T) {
	tasks := catalogFixture()
	client := Client{
		MonthlyFee:    0,
		DocumentCount: 50,
	}

	p := ComputeClientProfitability(client, tasks, AreaCosts{AreaAccounting: 20}, nil)

	if p.AnnualCost <= 0 {
		t.Fatalf("fixture should carry a nonzero cost, got %v", p.AnnualCost)
	}
	nearlyEqual(t, "profitability", p.ProfitabilityPercent, 0)
	if math.IsNaN(p.ProfitabilityPercent) || math.IsInf(p.ProfitabilityPercent, 0) {
		t.Fatalf("profitability must be finite, got %v", p.ProfitabilityPercent)
	}
}

func TestStaffStats_UtilizationReportsOverAllocation(t *testing.T) {
	member := Staff{ID: "s-1", Name: "Marta", CapacityHoursPerMonth: 160, BaseSalary: 3200}
	// 144000 annual minutes = 2400 h/year = 200 h/month.
	tasks := []TaskDefinition{{
		ID:                      "t-big",
		Area:                    AreaAccounting,
		DefaultTimeMinutes:      1000,
		DefaultFrequencyPerYear: 12,
		MultiplierLogic:         LogicEstablishments,
	}}
	clients := []Client{{
		ID:             "c-1",
		MonthlyFee:     500,
		Establishments: 12,
		Responsible:    StaffRef{StaffID: "s-1"},
	}}

	stats := ComputeStaffStats(member, clients, tasks, AreaCosts{}, []Staff{member})

	nearlyEqual(t, "allocated hours/month", stats.AllocatedHoursMonth, 200)
	nearlyEqual(t, "capacity utilization", stats.CapacityUtilizationPercent, 125)
	if stats.ClientCount != 1 {
		t.Fatalf("client count = %d, want 1", stats.ClientCount)
	}
	nearlyEqual(t, "total revenue", stats.TotalRevenue, 6000)
}

func TestStaffStats_PortfolioExcludesAssigneeOnlyClients(t *testing.T) {
	member := Staff{ID: "s-1", CapacityHoursPerMonth: 160}
	tasks := catalogFixture()
	clients := []Client{
		{
			ID:          "c-mine",
			MonthlyFee:  200,
			Responsible: StaffRef{StaffID: "s-1"},
		},
		{
			ID:            "c-other",
			MonthlyFee:    900,
			EmployeeCount: 2,
			Responsible:   StaffRef{StaffID: "s-2"},
			Tasks: []ClientTaskOverride{
				{TaskID: "t-payroll", AssignedStaffID: "s-1"},
			},
		},
	}

	stats := ComputeStaffStats(member, clients, tasks, AreaCosts{}, []Staff{member})

	if stats.ClientCount != 1 {
		t.Fatalf("client count = %d, want 1", stats.ClientCount)
	}
	nearlyEqual(t, "total revenue", stats.TotalRevenue, 2400)
	// Assigned task minutes still count toward allocation: 10*2*12 = 240
	// min/year = 20 min/month.
	nearlyEqual(t, "allocated hours/month", stats.AllocatedHoursMonth, 240.0/12/60)
}
