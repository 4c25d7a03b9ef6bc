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

type catalogRow struct {
	costing.TaskDefinition
	Active bool
}

type catalogViewData struct {
	baseViewData
	Tasks []catalogRow
	Areas []costing.Area
}

func (s *server) handleCatalogForm(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.listCatalogRows()
	if err != nil {
		http.Error(w, "failed to load task catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "catalog.html", catalogViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Tasks: tasks,
		Areas: costing.Areas,
	})
}

func (s *server) handleCatalogCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	task, err := parseTaskForm(r)
	if err != nil {
		http.Redirect(w, r, "/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	task.ID = uuid.NewString()

	_, err = s.db.Exec(`
		INSERT INTO task_definitions (id, name, area, type, default_time_minutes, default_frequency_year, multiplier_logic, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)
	`, task.ID, task.Name, task.Area, task.Type, task.DefaultTimeMinutes, task.DefaultFrequencyPerYear, task.MultiplierLogic)
	if err != nil {
		http.Error(w, "failed to create task definition", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/catalog?success=Tarea+creada+correctamente", http.StatusSeeOther)
}

func (s *server) handleCatalogUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	task, err := parseTaskForm(r)
	if err != nil {
		http.Redirect(w, r, "/catalog?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	active := r.FormValue("active") == "1"

	result, err := s.db.Exec(`
		UPDATE task_definitions
		SET
			name = ?,
			area = ?,
			type = ?,
			default_time_minutes = ?,
			default_frequency_year = ?,
			multiplier_logic = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, task.Name, task.Area, task.Type, task.DefaultTimeMinutes, task.DefaultFrequencyPerYear, task.MultiplierLogic, active, id)
	if err != nil {
		http.Error(w, "failed to update task definition", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update task definition", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/catalog?success=Tarea+actualizada+correctamente", http.StatusSeeOther)
}

func parseTaskForm(r *http.Request) (costing.TaskDefinition, error) {
	task := costing.TaskDefinition{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Area:            costing.Area(r.FormValue("area")),
		Type:            costing.TaskType(r.FormValue("type")),
		MultiplierLogic: costing.MultiplierLogic(r.FormValue("multiplier_logic")),
	}

	if task.Name == "" {
		return task, fmt.Errorf("name es requerido")
	}
	if !validArea(task.Area) {
		return task, fmt.Errorf("area no es válida")
	}
	switch task.Type {
	case costing.TypeObligation, costing.TypeNeed, costing.TypeExtra:
	default:
		return task, fmt.Errorf("type no es válido")
	}
	switch task.MultiplierLogic {
	case costing.LogicManual, costing.LogicEmployeeCount, costing.LogicDocumentCount,
		costing.LogicEstablishments, costing.LogicBanks:
	default:
		return task, fmt.Errorf("multiplier_logic no es válido")
	}

	var err error
	if task.DefaultTimeMinutes, err = parsePositiveFloat(r.FormValue("default_time_minutes"), "default_time_minutes"); err != nil {
		return task, err
	}
	if task.DefaultFrequencyPerYear, err = parseNonNegativeFloat(r.FormValue("default_frequency_year"), "default_frequency_year"); err != nil {
		return task, err
	}

	return task, nil
}

func validArea(area costing.Area) bool {
	for _, a := range costing.Areas {
		if a == area {
			return true
		}
	}
	return false
}

func (s *server) listCatalogRows() ([]catalogRow, error) {
	rows, err := s.db.Query(`
		SELECT id, name, area, type, default_time_minutes, default_frequency_year, multiplier_logic, active
		FROM task_definitions
		ORDER BY area, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query task catalog: %w", err)
	}
	defer rows.Close()

	tasks := make([]catalogRow, 0)
	for rows.Next() {
		var row catalogRow
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Area,
			&row.Type,
			&row.DefaultTimeMinutes,
			&row.DefaultFrequencyPerYear,
			&row.MultiplierLogic,
			&row.Active,
		); err != nil {
			return nil, fmt.Errorf("scan task catalog row: %w", err)
		}
		tasks = append(tasks, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task catalog: %w", err)
	}

	return tasks, nil
}
