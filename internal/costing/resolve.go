package costing

// Resolved is the effective quantity and yearly frequency to apply for
// one task on one client.
type Resolved struct {
	Multiplier float64
	Frequency  float64
}

// ResolveMultiplier determines the multiplier and frequency for a task
// on a client. An override multiplier is authoritative, including an
// explicit 0. Without one, manual (or untagged) tasks default to 0 and
// contribute nothing until overridden; every other logic reads the
// matching client attribute. Missing or invalid numbers coerce to 0,
// never to an error.
func ResolveMultiplier(task TaskDefinition, override *ClientTaskOverride, client Client) Resolved {
	var multiplier float64
	switch {
	case override != nil && override.Multiplier != nil:
		multiplier = nonNegative(*override.Multiplier)
	case task.MultiplierLogic == LogicManual || task.MultiplierLogic == "":
		multiplier = 0
	default:
		multiplier = nonNegative(client.multiplierSource(task.MultiplierLogic))
	}

	frequency := nonNegative(task.DefaultFrequencyPerYear)
	if override != nil && override.FrequencyPerYear != nil {
		frequency = nonNegative(*override.FrequencyPerYear)
	}

	return Resolved{Multiplier: multiplier, Frequency: frequency}
}

// overrideFor finds the client's override for a task id. Duplicate ids
// should be rejected at data entry; if legacy data carries them anyway,
// the first occurrence wins.
func overrideFor(client Client, taskID string) *ClientTaskOverride {
	for i := range client.Tasks {
		if client.Tasks[i].TaskID == taskID {
			return &client.Tasks[i]
		}
	}
	return nil
}
