// Package costing turns the firm's task catalog, client overrides and
// staff cost data into workload, profitability and fee-suggestion
// figures. Every function is a pure computation over the snapshot it is
// handed; nothing here reads the database or logs.
package costing

import "math"

// Area is the practice area a task belongs to.
type Area string

const (
	AreaAccounting     Area = "accounting"
	AreaHR             Area = "hr"
	AreaAdministrative Area = "administrative"
	AreaConsulting     Area = "consulting"
	AreaTaxation       Area = "taxation"
	AreaManagement     Area = "management"
)

// Areas lists every practice area in display order.
var Areas = []Area{
	AreaAccounting,
	AreaHR,
	AreaAdministrative,
	AreaConsulting,
	AreaTaxation,
	AreaManagement,
}

// TaskType classifies a catalog task. Informational only; no
// computation branches on it.
type TaskType string

const (
	TypeObligation TaskType = "obligation"
	TypeNeed       TaskType = "need"
	TypeExtra      TaskType = "extra"
)

// MultiplierLogic names the client attribute that supplies a task's
// default multiplier when the client has no explicit override.
type MultiplierLogic string

const (
	LogicManual         MultiplierLogic = "manual"
	LogicEmployeeCount  MultiplierLogic = "employeeCount"
	LogicDocumentCount  MultiplierLogic = "documentCount"
	LogicEstablishments MultiplierLogic = "establishments"
	LogicBanks          MultiplierLogic = "banks"
)

// TaskDefinition is a catalog entry describing a recurring unit of work.
type TaskDefinition struct {
	ID                      string
	Name                    string
	Area                    Area
	Type                    TaskType
	DefaultTimeMinutes      float64
	DefaultFrequencyPerYear float64
	MultiplierLogic         MultiplierLogic
}

// ClientTaskOverride replaces a task's multiplier, frequency and/or
// assigned staff for one client. Nil pointer fields mean "use the
// catalog default".
type ClientTaskOverride struct {
	TaskID           string
	Multiplier       *float64
	FrequencyPerYear *float64
	AssignedStaffID  string
}

// StaffRef is the resolved form of a responsible-staff value, which in
// legacy data may be either a staff id or a free-text name. It is built
// once at the load boundary by ResolveStaffRef; afterwards every
// ownership comparison is id equality.
type StaffRef struct {
	// StaffID is the matched staff id, empty when the legacy name
	// matched nobody.
	StaffID string
	// LegacyName holds the original free-text value when the source was
	// not an id. Non-empty LegacyName with empty StaffID marks an
	// unmatched pre-migration record.
	LegacyName string
}

// Resolved reports whether the reference points at a known staff member.
func (r StaffRef) Resolved() bool { return r.StaffID != "" }

// ResolveStaffRef normalizes a raw responsible-staff value against the
// staff list: a value equal to a staff id resolves directly, a value
// equal to a staff name resolves to that member while keeping the
// literal text, and anything else is carried as an unmatched legacy
// name.
func ResolveStaffRef(raw string, staff []Staff) StaffRef {
	if raw == "" {
		return StaffRef{}
	}
	for _, s := range staff {
		if s.ID == raw {
			return StaffRef{StaffID: raw}
		}
	}
	for _, s := range staff {
		if s.Name == raw {
			return StaffRef{StaffID: s.ID, LegacyName: raw}
		}
	}
	return StaffRef{LegacyName: raw}
}

// Client is the engine's read-only view of a client record.
type Client struct {
	ID   string
	Name string

	MonthlyFee float64
	Turnover   float64

	// Multiplier sources.
	EmployeeCount  float64
	DocumentCount  float64
	Establishments float64
	Banks          float64

	Responsible StaffRef

	// CallTimeBalance is ad-hoc support in minutes per month;
	// TravelCount is on-site visits per month.
	CallTimeBalance float64
	TravelCount     float64

	Tasks []ClientTaskOverride
}

// multiplierSource returns the client attribute named by logic, or 0
// for manual/unknown logic.
func (c Client) multiplierSource(logic MultiplierLogic) float64 {
	switch logic {
	case LogicEmployeeCount:
		return c.EmployeeCount
	case LogicDocumentCount:
		return c.DocumentCount
	case LogicEstablishments:
		return c.Establishments
	case LogicBanks:
		return c.Banks
	default:
		return 0
	}
}

// Staff is the engine's read-only view of a staff record. HourlyCost is
// a denormalized cache maintained elsewhere; StaffHourlyCost is the
// source of truth and the engine always recomputes.
type Staff struct {
	ID                    string
	Name                  string
	BaseSalary            float64
	SocialChargesPercent  float64
	MealAllowance         float64
	OtherMonthlyCosts     float64
	CapacityHoursPerMonth float64
	HourlyCost            float64
	Areas                 []Area
}

// AreaCosts maps each practice area to the fallback hourly rate used
// when a task's owner cannot be resolved to a staff member.
type AreaCosts map[Area]float64

// TurnoverBracket is a banded range of annual client turnover with the
// fee fractions applying at its lower and upper bounds.
type TurnoverBracket struct {
	ID          string
	MinTurnover float64
	MaxTurnover float64
	MinPercent  float64
	MaxPercent  float64
}

// nonNegative is the single coercion point for count-like inputs:
// NaN, ±Inf and negative values all become 0 so that no downstream
// computation can produce a negative or non-finite contribution.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// round2 rounds to 2 decimal places (money).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
