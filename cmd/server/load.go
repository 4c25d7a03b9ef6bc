package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/gestorlab/despacho/internal/costing"
)

// snapshot is one consistent read of everything the costing engine
// needs. Responsible-staff values are normalized into costing.StaffRef
// here, at the load boundary, so downstream comparisons are id-only.
type snapshot struct {
	Tasks     []costing.TaskDefinition
	Staff     []costing.Staff
	Clients   []costing.Client
	AreaCosts costing.AreaCosts
	Brackets  []costing.TurnoverBracket
}

func (s *server) loadSnapshot() (snapshot, error) {
	staff, err := s.listStaffRecords()
	if err != nil {
		return snapshot{}, err
	}
	tasks, err := s.listTaskDefinitions(true)
	if err != nil {
		return snapshot{}, err
	}
	clients, err := s.listClientRecords(staff)
	if err != nil {
		return snapshot{}, err
	}
	areaCosts, err := s.loadAreaCosts()
	if err != nil {
		return snapshot{}, err
	}
	brackets, err := s.listBrackets()
	if err != nil {
		return snapshot{}, err
	}

	return snapshot{
		Tasks:     tasks,
		Staff:     staff,
		Clients:   clients,
		AreaCosts: areaCosts,
		Brackets:  brackets,
	}, nil
}

func (s *server) listStaffRecords() ([]costing.Staff, error) {
	rows, err := s.db.Query(`
		SELECT id, name, base_salary, social_charges_percent, meal_allowance,
			other_monthly_costs, capacity_hours_month, hourly_cost, areas
		FROM staff
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	staff := make([]costing.Staff, 0)
	for rows.Next() {
		var member costing.Staff
		var areas string
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.BaseSalary,
			&member.SocialChargesPercent,
			&member.MealAllowance,
			&member.OtherMonthlyCosts,
			&member.CapacityHoursPerMonth,
			&member.HourlyCost,
			&areas,
		); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		member.Areas = splitAreas(areas)
		staff = append(staff, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff: %w", err)
	}

	return staff, nil
}

func splitAreas(raw string) []costing.Area {
	areas := make([]costing.Area, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			areas = append(areas, costing.Area(part))
		}
	}
	return areas
}

func joinAreas(areas []costing.Area) string {
	parts := make([]string, len(areas))
	for i, a := range areas {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func (s *server) listTaskDefinitions(activeOnly bool) ([]costing.TaskDefinition, error) {
	query := `
		SELECT id, name, area, type, default_time_minutes, default_frequency_year, multiplier_logic
		FROM task_definitions
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY area, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query task definitions: %w", err)
	}
	defer rows.Close()

	tasks := make([]costing.TaskDefinition, 0)
	for rows.Next() {
		var task costing.TaskDefinition
		if err := rows.Scan(
			&task.ID,
			&task.Name,
			&task.Area,
			&task.Type,
			&task.DefaultTimeMinutes,
			&task.DefaultFrequencyPerYear,
			&task.MultiplierLogic,
		); err != nil {
			return nil, fmt.Errorf("scan task definition: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task definitions: %w", err)
	}

	return tasks, nil
}

func (s *server) listClientRecords(staff []costing.Staff) ([]costing.Client, error) {
	rows, err := s.db.Query(`
		SELECT id, name, monthly_fee, turnover, employee_count, document_count,
			establishments, banks, responsible_staff, call_time_balance, travel_count
		FROM clients
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]costing.Client, 0)
	index := make(map[string]int)
	for rows.Next() {
		var client costing.Client
		var responsible string
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.MonthlyFee,
			&client.Turnover,
			&client.EmployeeCount,
			&client.DocumentCount,
			&client.Establishments,
			&client.Banks,
			&responsible,
			&client.CallTimeBalance,
			&client.TravelCount,
		); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client.Responsible = costing.ResolveStaffRef(responsible, staff)
		index[client.ID] = len(clients)
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	if err := s.attachClientTasks(clients, index); err != nil {
		return nil, err
	}

	return clients, nil
}

func (s *server) attachClientTasks(clients []costing.Client, index map[string]int) error {
	rows, err := s.db.Query(`
		SELECT client_id, task_id, multiplier, frequency_year, assigned_staff_id
		FROM client_tasks
		ORDER BY client_id, position, id
	`)
	if err != nil {
		return fmt.Errorf("query client tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clientID string
		var override costing.ClientTaskOverride
		var multiplier, frequency sql.NullFloat64
		var assigned sql.NullString
		if err := rows.Scan(&clientID, &override.TaskID, &multiplier, &frequency, &assigned); err != nil {
			return fmt.Errorf("scan client task: %w", err)
		}
		if multiplier.Valid {
			v := multiplier.Float64
			override.Multiplier = &v
		}
		if frequency.Valid {
			v := frequency.Float64
			override.FrequencyPerYear = &v
		}
		if assigned.Valid {
			override.AssignedStaffID = assigned.String
		}

		i, ok := index[clientID]
		if !ok {
			continue
		}
		clients[i].Tasks = append(clients[i].Tasks, override)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate client tasks: %w", err)
	}

	return nil
}

func (s *server) loadAreaCosts() (costing.AreaCosts, error) {
	rows, err := s.db.Query(`SELECT area, hourly_cost FROM area_costs`)
	if err != nil {
		return nil, fmt.Errorf("query area costs: %w", err)
	}
	defer rows.Close()

	costs := make(costing.AreaCosts)
	for rows.Next() {
		var area costing.Area
		var hourly float64
		if err := rows.Scan(&area, &hourly); err != nil {
			return nil, fmt.Errorf("scan area cost: %w", err)
		}
		costs[area] = hourly
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate area costs: %w", err)
	}

	return costs, nil
}

func (s *server) listBrackets() ([]costing.TurnoverBracket, error) {
	rows, err := s.db.Query(`
		SELECT id, min_turnover, max_turnover, min_percent, max_percent
		FROM turnover_brackets
		ORDER BY min_turnover
	`)
	if err != nil {
		return nil, fmt.Errorf("query turnover brackets: %w", err)
	}
	defer rows.Close()

	brackets := make([]costing.TurnoverBracket, 0)
	for rows.Next() {
		var b costing.TurnoverBracket
		if err := rows.Scan(&b.ID, &b.MinTurnover, &b.MaxTurnover, &b.MinPercent, &b.MaxPercent); err != nil {
			return nil, fmt.Errorf("scan turnover bracket: %w", err)
		}
		brackets = append(brackets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turnover brackets: %w", err)
	}

	return brackets, nil
}
