package costing

import "testing"

func catalogFixture() []TaskDefinition {
	return []TaskDefinition{
		{
			ID:                      "t-bank",
			Name:                    "Conciliación bancaria",
			Area:                    AreaAccounting,
			Type:                    TypeObligation,
			DefaultTimeMinutes:      4,
			DefaultFrequencyPerYear: 12,
			MultiplierLogic:         LogicDocumentCount,
		},
		{
			ID:                      "t-payroll",
			Name:                    "Nómina",
			Area:                    AreaHR,
			Type:                    TypeObligation,
			DefaultTimeMinutes:      10,
			DefaultFrequencyPerYear: 12,
			MultiplierLogic:         LogicEmployeeCount,
		},
		{
			ID:                      "t-advice",
			Name:                    "Asesoría puntual",
			Area:                    AreaConsulting,
			Type:                    TypeExtra,
			DefaultTimeMinutes:      60,
			DefaultFrequencyPerYear: 1,
			MultiplierLogic:         LogicManual,
		},
	}
}

func TestAggregate_DocumentCountScenario(t *testing.T) {
	client := Client{DocumentCount: 85}

	got := AggregateAnnualMinutes(catalogFixture()[:1], client, "")

	nearlyEqual(t, "annual minutes", got, 4*85*12) // 4080
}

func TestAggregate_OverrideScenario(t *testing.T) {
	client := Client{
		DocumentCount: 85,
		Tasks: []ClientTaskOverride{
			{TaskID: "t-bank", Multiplier: floatPtr(10), FrequencyPerYear: floatPtr(1)},
		},
	}

	got := AggregateAnnualMinutes(catalogFixture()[:1], client, "")

	nearlyEqual(t, "annual minutes", got, 40)
}

func TestAggregate_ZeroMultiplierOrFrequencyContributesNothing(t *testing.T) {
	tasks := catalogFixture()
	client := Client{
		DocumentCount: 0, // zero multiplier source
		EmployeeCount: 12,
		Tasks: []ClientTaskOverride{
			{TaskID: "t-payroll", FrequencyPerYear: floatPtr(0)}, // zero frequency
		},
	}

	nearlyEqual(t, "annual minutes", AggregateAnnualMinutes(tasks, client, ""), 0)
}

func TestAggregate_DuplicateOverridesFirstOccurrenceWins(t *testing.T) {
	client := Client{
		Tasks: []ClientTaskOverride{
			{TaskID: "t-bank", Multiplier: floatPtr(2), FrequencyPerYear: floatPtr(1)},
			{TaskID: "t-bank", Multiplier: floatPtr(100), FrequencyPerYear: floatPtr(100)},
		},
	}

	got := AggregateAnnualMinutes(catalogFixture()[:1], client, "")

	nearlyEqual(t, "annual minutes", got, 4*2*1)
}

func TestAggregate_FiltersByAssignmentOwner(t *testing.T) {
	tasks := catalogFixture()
	client := Client{
		DocumentCount: 10,
		EmployeeCount: 5,
		Responsible:   StaffRef{StaffID: "s-resp"},
		Tasks: []ClientTaskOverride{
			{TaskID: "t-payroll", AssignedStaffID: "s-assignee"},
		},
	}

	// t-bank (4*10*12 = 480) owned by the responsible, t-payroll
	// (10*5*12 = 600) by the assignee.
	nearlyEqual(t, "responsible minutes", AggregateAnnualMinutes(tasks, client, "s-resp"), 480)
	nearlyEqual(t, "assignee minutes", AggregateAnnualMinutes(tasks, client, "s-assignee"), 600)
	nearlyEqual(t, "whole-client minutes", AggregateAnnualMinutes(tasks, client, ""), 1080)
}

func TestAggregate_SupportOverheadGoesToResponsibleOnly(t *testing.T) {
	tasks := catalogFixture()
	client := Client{
		EmployeeCount:   5,
		Responsible:     StaffRef{StaffID: "s-resp"},
		CallTimeBalance: 30, // 360 minutes/year
		TravelCount:     2,  // 120 minutes/year
		Tasks: []ClientTaskOverride{
			{TaskID: "t-payroll", AssignedStaffID: "s-assignee"},
		},
	}

	nearlyEqual(t, "support minutes", SupportMinutes(client), 480)
	nearlyEqual(t, "responsible minutes", AggregateAnnualMinutes(tasks, client, "s-resp"), 480)
	nearlyEqual(t, "assignee minutes", AggregateAnnualMinutes(tasks, client, "s-assignee"), 600)
	nearlyEqual(t, "whole-client minutes", AggregateAnnualMinutes(tasks, client, ""), 1080)
}

func TestAggregate_PerStaffMinutesSumToClientTotal(t *testing.T) {
	tasks := catalogFixture()
	client := Client{
		DocumentCount:   40,
		EmployeeCount:   8,
		Responsible:     StaffRef{LegacyName: "Contador Antiguo"}, // unmatched legacy name
		CallTimeBalance: 15,
		TravelCount:     1,
		Tasks: []ClientTaskOverride{
			{TaskID: "t-payroll", AssignedStaffID: "s-2"},
			{TaskID: "t-advice", Multiplier: floatPtr(1), AssignedStaffID: "s-3"},
		},
	}

	total := AggregateAnnualMinutes(tasks, client, "")

	var sum float64
	for _, id := range []string{"s-1", "s-2", "s-3"} {
		sum += AggregateAnnualMinutes(tasks, client, id)
	}
	// Unassigned bucket: contributions whose owner resolves to nobody.
	for _, c := range ClientContributions(tasks, client) {
		if !c.Owner.Resolved() {
			sum += c.AnnualMinutes
		}
	}

	nearlyEqual(t, "per-staff sum", sum, total)
	if total <= 0 {
		t.Fatalf("fixture should produce a positive total, got %v", total)
	}
}
