package costing

// StaffHourlyCost computes a staff member's fully loaded hourly cost:
// salary plus social charges plus meal allowance plus other monthly
// costs, spread over the monthly capacity. Rounded to 2 decimals. This
// is the source of truth for the denormalized Staff.HourlyCost field,
// which may be stale until recalculated.
func StaffHourlyCost(s Staff) float64 {
	if s.CapacityHoursPerMonth <= 0 {
		return 0
	}
	monthly := s.BaseSalary + s.BaseSalary*s.SocialChargesPercent/100 + s.MealAllowance + s.OtherMonthlyCosts
	return round2(monthly / s.CapacityHoursPerMonth)
}

// ClientProfitability is the yearly workload, cost and margin picture
// for one client.
type ClientProfitability struct {
	AnnualMinutes        float64
	AnnualHours          float64
	AnnualCost           float64
	AnnualRevenue        float64
	ProfitabilityPercent float64
}

// ComputeClientProfitability prices every workload contribution at the
// owning staff member's hourly cost, falling back to the task's area
// rate when the owner is unresolvable (support overhead falls back to
// the administrative rate). An unbilled client reports 0%
// profitability, never an error.
func ComputeClientProfitability(client Client, tasks []TaskDefinition, areaCosts AreaCosts, staff []Staff) ClientProfitability {
	var minutes, cost float64
	for _, c := range ClientContributions(tasks, client) {
		minutes += c.AnnualMinutes

		area := AreaAdministrative
		if c.Task != nil {
			area = c.Task.Area
		}
		cost += c.AnnualMinutes / 60 * hourlyRate(c.Owner, area, areaCosts, staff)
	}

	revenue := nonNegative(client.MonthlyFee) * 12

	p := ClientProfitability{
		AnnualMinutes: minutes,
		AnnualHours:   minutes / 60,
		AnnualCost:    cost,
		AnnualRevenue: revenue,
	}
	if revenue > 0 {
		p.ProfitabilityPercent = (revenue - cost) / revenue * 100
	}
	return p
}

// hourlyRate resolves a contribution owner to a cost rate. Unknown
// staff ids and unmatched legacy names both degrade to the area rate;
// a missing area rate degrades to 0.
func hourlyRate(owner StaffRef, area Area, areaCosts AreaCosts, staff []Staff) float64 {
	if owner.Resolved() {
		for _, s := range staff {
			if s.ID == owner.StaffID {
				return StaffHourlyCost(s)
			}
		}
	}
	return nonNegative(areaCosts[area])
}

// StaffStats summarizes one staff member's allocation and the
// profitability of their portfolio (clients where they are the
// responsible staff).
type StaffStats struct {
	AllocatedHoursMonth        float64
	CapacityUtilizationPercent float64
	ClientCount                int
	TotalRevenue               float64
	TotalCost                  float64
	ProfitabilityPercent       float64
}

// ComputeStaffStats aggregates a member's allocated hours across every
// client (tasks they are assigned to plus support overhead for clients
// they are responsible for) and sums portfolio revenue and cost.
// Over-allocation is reported as a utilization above 100%, not clamped.
func ComputeStaffStats(member Staff, clients []Client, tasks []TaskDefinition, areaCosts AreaCosts, staff []Staff) StaffStats {
	var stats StaffStats

	var annualMinutes float64
	for _, client := range clients {
		annualMinutes += AggregateAnnualMinutes(tasks, client, member.ID)

		if client.Responsible.StaffID != member.ID {
			continue
		}
		stats.ClientCount++
		p := ComputeClientProfitability(client, tasks, areaCosts, staff)
		stats.TotalRevenue += p.AnnualRevenue
		stats.TotalCost += p.AnnualCost
	}

	stats.AllocatedHoursMonth = annualMinutes / 12 / 60
	if member.CapacityHoursPerMonth > 0 {
		stats.CapacityUtilizationPercent = stats.AllocatedHoursMonth / member.CapacityHoursPerMonth * 100
	}
	if stats.TotalRevenue > 0 {
		stats.ProfitabilityPercent = (stats.TotalRevenue - stats.TotalCost) / stats.TotalRevenue * 100
	}
	return stats
}
