package costing

import "testing"

func TestResolveMultiplier_ClientAttributeSuppliesDefault(t *testing.T) {
	task := TaskDefinition{
		DefaultTimeMinutes:      4,
		DefaultFrequencyPerYear: 12,
		MultiplierLogic:         LogicDocumentCount,
	}
	client := Client{DocumentCount: 85}

	resolved := ResolveMultiplier(task, nil, client)

	nearlyEqual(t, "multiplier", resolved.Multiplier, 85)
	nearlyEqual(t, "frequency", resolved.Frequency, 12)
}

func TestResolveMultiplier_OverrideIsAuthoritative(t *testing.T) {
	task := TaskDefinition{
		DefaultTimeMinutes:      4,
		DefaultFrequencyPerYear: 12,
		MultiplierLogic:         LogicDocumentCount,
	}
	client := Client{DocumentCount: 85}
	override := &ClientTaskOverride{Multiplier: floatPtr(10), FrequencyPerYear: floatPtr(1)}

	resolved := ResolveMultiplier(task, override, client)

	nearlyEqual(t, "multiplier", resolved.Multiplier, 10)
	nearlyEqual(t, "frequency", resolved.Frequency, 1)
}

func TestResolveMultiplier_ExplicitZeroOverrideWins(t *testing.T) {
	task := TaskDefinition{MultiplierLogic: LogicEmployeeCount, DefaultFrequencyPerYear: 12}
	client := Client{EmployeeCount: 30}
	override := &ClientTaskOverride{Multiplier: floatPtr(0)}

	resolved := ResolveMultiplier(task, override, client)

	nearlyEqual(t, "multiplier", resolved.Multiplier, 0)
	nearlyEqual(t, "frequency", resolved.Frequency, 12)
}

func TestResolveMultiplier_ManualAndUntaggedDefaultToZero(t *testing.T) {
	client := Client{EmployeeCount: 30, DocumentCount: 99}

	manual := ResolveMultiplier(TaskDefinition{MultiplierLogic: LogicManual, DefaultFrequencyPerYear: 1}, nil, client)
	untagged := ResolveMultiplier(TaskDefinition{DefaultFrequencyPerYear: 1}, nil, client)

	nearlyEqual(t, "manual multiplier", manual.Multiplier, 0)
	nearlyEqual(t, "untagged multiplier", untagged.Multiplier, 0)
}

func TestResolveMultiplier_IsIdempotent(t *testing.T) {
	task := TaskDefinition{DefaultFrequencyPerYear: 6, MultiplierLogic: LogicBanks}
	client := Client{Banks: 3}
	override := &ClientTaskOverride{FrequencyPerYear: floatPtr(4)}

	first := ResolveMultiplier(task, override, client)
	for i := 0; i < 5; i++ {
		if got := ResolveMultiplier(task, override, client); got != first {
			t.Fatalf("resolution changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestResolveMultiplier_InvalidNumbersCoerceToZero(t *testing.T) {
	nan := 0.0
	nan = nan / nan

	task := TaskDefinition{MultiplierLogic: LogicEmployeeCount, DefaultFrequencyPerYear: -3}
	client := Client{EmployeeCount: nan}

	resolved := ResolveMultiplier(task, nil, client)

	nearlyEqual(t, "multiplier from NaN attribute", resolved.Multiplier, 0)
	nearlyEqual(t, "negative default frequency", resolved.Frequency, 0)
}
