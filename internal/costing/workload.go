package costing

// Minutes of support overhead per on-site visit.
const travelMinutesPerVisit = 60

// Contribution is one slice of a client's annual workload: either a
// catalog task scaled by the client's multiplier and frequency, or the
// client's operational support overhead. Owner is who the minutes are
// attributed to; an unresolved owner lands in the unassigned bucket and
// is costed at the area fallback rate.
type Contribution struct {
	// Task is nil for the support overhead entry.
	Task          *TaskDefinition
	Owner         StaffRef
	AnnualMinutes float64
}

// SupportMinutes is the client's yearly non-task overhead: the monthly
// call-time balance annualized plus one hour per monthly visit. It is
// attributed to the responsible staff only, never to task assignees.
func SupportMinutes(client Client) float64 {
	return nonNegative(client.CallTimeBalance)*12 + nonNegative(client.TravelCount)*travelMinutesPerVisit
}

// ClientContributions walks the catalog against one client and returns
// every non-zero workload slice, support overhead last. Tasks whose
// resolved multiplier is 0 are skipped rather than emitted as zero
// rows.
func ClientContributions(tasks []TaskDefinition, client Client) []Contribution {
	contributions := make([]Contribution, 0, len(tasks)+1)

	for i := range tasks {
		task := tasks[i]
		override := overrideFor(client, task.ID)
		resolved := ResolveMultiplier(task, override, client)
		if resolved.Multiplier <= 0 {
			continue
		}

		owner := client.Responsible
		if override != nil && override.AssignedStaffID != "" {
			owner = StaffRef{StaffID: override.AssignedStaffID}
		}

		minutes := nonNegative(task.DefaultTimeMinutes) * resolved.Multiplier * resolved.Frequency
		contributions = append(contributions, Contribution{
			Task:          &task,
			Owner:         owner,
			AnnualMinutes: minutes,
		})
	}

	if support := SupportMinutes(client); support > 0 {
		contributions = append(contributions, Contribution{
			Owner:         client.Responsible,
			AnnualMinutes: support,
		})
	}

	return contributions
}

// AggregateAnnualMinutes accumulates the client's annual workload in
// minutes. With an empty targetStaffID every contribution counts
// (whole-client totals, support overhead included); with a staff id
// only contributions owned by that member count, which gives them the
// support overhead exactly for the clients they are responsible for.
func AggregateAnnualMinutes(tasks []TaskDefinition, client Client, targetStaffID string) float64 {
	var total float64
	for _, c := range ClientContributions(tasks, client) {
		if targetStaffID != "" && c.Owner.StaffID != targetStaffID {
			continue
		}
		total += c.AnnualMinutes
	}
	return total
}
