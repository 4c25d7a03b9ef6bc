package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestorlab/despacho/internal/costing"
)

type staffViewData struct {
	baseViewData
	Staff []costing.Staff
	Areas []costing.Area
}

func (s *server) handleStaffForm(w http.ResponseWriter, r *http.Request) {
	staff, err := s.listStaffRecords()
	if err != nil {
		http.Error(w, "failed to load staff", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "staff.html", staffViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Staff: staff,
		Areas: costing.Areas,
	})
}

func (s *server) handleStaffCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	member, err := parseStaffForm(r)
	if err != nil {
		http.Redirect(w, r, "/staff?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	member.ID = uuid.NewString()

	if err := s.insertStaff(member); err != nil {
		http.Error(w, "failed to create staff member", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/staff?success=Empleado+creado+correctamente", http.StatusSeeOther)
}

func (s *server) insertStaff(member costing.Staff) error {
	// hourly_cost is a cache; the calculator is the source of truth and
	// every save refreshes it.
	_, err := s.db.Exec(`
		INSERT INTO staff (
			id, name, base_salary, social_charges_percent, meal_allowance,
			other_monthly_costs, capacity_hours_month, hourly_cost, areas, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)
	`,
		member.ID,
		member.Name,
		member.BaseSalary,
		member.SocialChargesPercent,
		member.MealAllowance,
		member.OtherMonthlyCosts,
		member.CapacityHoursPerMonth,
		costing.StaffHourlyCost(member),
		joinAreas(member.Areas),
	)
	if err != nil {
		return fmt.Errorf("insert staff member: %w", err)
	}
	return nil
}

func (s *server) handleStaffUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid staff id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	member, err := parseStaffForm(r)
	if err != nil {
		http.Redirect(w, r, "/staff?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	member.ID = id

	active := r.FormValue("active") == "1"

	affected, err := s.updateStaff(member, active)
	if err != nil {
		http.Error(w, "failed to update staff member", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/staff?success=Empleado+actualizado+correctamente", http.StatusSeeOther)
}

func (s *server) updateStaff(member costing.Staff, active bool) (int64, error) {
	result, err := s.db.Exec(`
		UPDATE staff
		SET
			name = ?,
			base_salary = ?,
			social_charges_percent = ?,
			meal_allowance = ?,
			other_monthly_costs = ?,
			capacity_hours_month = ?,
			hourly_cost = ?,
			areas = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		member.Name,
		member.BaseSalary,
		member.SocialChargesPercent,
		member.MealAllowance,
		member.OtherMonthlyCosts,
		member.CapacityHoursPerMonth,
		costing.StaffHourlyCost(member),
		joinAreas(member.Areas),
		active,
		member.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update staff member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update staff member: %w", err)
	}
	return affected, nil
}

func parseStaffForm(r *http.Request) (costing.Staff, error) {
	member := costing.Staff{
		Name: strings.TrimSpace(r.FormValue("name")),
	}

	if member.Name == "" {
		return member, fmt.Errorf("name es requerido")
	}

	var err error
	if member.BaseSalary, err = parseNonNegativeFloat(r.FormValue("base_salary"), "base_salary"); err != nil {
		return member, err
	}
	if member.SocialChargesPercent, err = parsePercent(r.FormValue("social_charges_percent"), "social_charges_percent"); err != nil {
		return member, err
	}
	if member.MealAllowance, err = parseNonNegativeFloat(r.FormValue("meal_allowance"), "meal_allowance"); err != nil {
		return member, err
	}
	if member.OtherMonthlyCosts, err = parseNonNegativeFloat(r.FormValue("other_monthly_costs"), "other_monthly_costs"); err != nil {
		return member, err
	}
	if member.CapacityHoursPerMonth, err = parsePositiveFloat(r.FormValue("capacity_hours_month"), "capacity_hours_month"); err != nil {
		return member, err
	}

	for _, raw := range r.Form["areas"] {
		area := costing.Area(raw)
		if !validArea(area) {
			return member, fmt.Errorf("area no es válida")
		}
		member.Areas = append(member.Areas, area)
	}

	return member, nil
}
