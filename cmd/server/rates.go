package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestorlab/despacho/internal/costing"
)

type areaCostRow struct {
	Area       costing.Area
	HourlyCost float64
}

type areaCostsViewData struct {
	baseViewData
	Rates []areaCostRow
}

type bracketsViewData struct {
	baseViewData
	Brackets []costing.TurnoverBracket
}

func (s *server) handleAreaCostsForm(w http.ResponseWriter, r *http.Request) {
	costs, err := s.loadAreaCosts()
	if err != nil {
		http.Error(w, "failed to load area costs", http.StatusInternalServerError)
		return
	}

	rates := make([]areaCostRow, 0, len(costing.Areas))
	for _, area := range costing.Areas {
		rates = append(rates, areaCostRow{Area: area, HourlyCost: costs[area]})
	}

	s.renderTemplate(w, "admin_rates.html", areaCostsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Rates: rates,
	})
}

// handleAreaCostsSubmit saves the whole rate table at once: one form
// field per practice area.
func (s *server) handleAreaCostsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	for _, area := range costing.Areas {
		value, err := parseNonNegativeFloat(r.FormValue(string(area)), string(area))
		if err != nil {
			http.Redirect(w, r, "/admin/rates?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		if _, err := s.db.Exec(`
			INSERT INTO area_costs (area, hourly_cost)
			VALUES (?, ?)
			ON CONFLICT(area) DO UPDATE SET hourly_cost = excluded.hourly_cost, updated_at = CURRENT_TIMESTAMP
		`, area, value); err != nil {
			http.Error(w, "failed to save area costs", http.StatusInternalServerError)
			return
		}
	}

	http.Redirect(w, r, "/admin/rates?success=Tarifas+guardadas+correctamente", http.StatusSeeOther)
}

func (s *server) handleBracketsForm(w http.ResponseWriter, r *http.Request) {
	brackets, err := s.listBrackets()
	if err != nil {
		http.Error(w, "failed to load turnover brackets", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_brackets.html", bracketsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Brackets: brackets,
	})
}

func (s *server) handleBracketCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	bracket, err := parseBracketForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/brackets?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	bracket.ID = uuid.NewString()

	_, err = s.db.Exec(`
		INSERT INTO turnover_brackets (id, min_turnover, max_turnover, min_percent, max_percent)
		VALUES (?, ?, ?, ?, ?)
	`, bracket.ID, bracket.MinTurnover, bracket.MaxTurnover, bracket.MinPercent, bracket.MaxPercent)
	if err != nil {
		http.Error(w, "failed to create turnover bracket", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/brackets?success=Tramo+creado+correctamente", http.StatusSeeOther)
}

func (s *server) handleBracketUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid bracket id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	bracket, err := parseBracketForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/brackets?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE turnover_brackets
		SET min_turnover = ?, max_turnover = ?, min_percent = ?, max_percent = ?
		WHERE id = ?
	`, bracket.MinTurnover, bracket.MaxTurnover, bracket.MinPercent, bracket.MaxPercent, id)
	if err != nil {
		http.Error(w, "failed to update turnover bracket", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update turnover bracket", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/brackets?success=Tramo+actualizado+correctamente", http.StatusSeeOther)
}

func (s *server) handleBracketDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid bracket id", http.StatusBadRequest)
		return
	}

	result, err := s.db.Exec(`DELETE FROM turnover_brackets WHERE id = ?`, id)
	if err != nil {
		http.Error(w, "failed to delete turnover bracket", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to delete turnover bracket", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/brackets?success=Tramo+eliminado+correctamente", http.StatusSeeOther)
}

func parseBracketForm(r *http.Request) (costing.TurnoverBracket, error) {
	var bracket costing.TurnoverBracket

	var err error
	if bracket.MinTurnover, err = parseNonNegativeFloat(r.FormValue("min_turnover"), "min_turnover"); err != nil {
		return bracket, err
	}
	if bracket.MaxTurnover, err = parseNonNegativeFloat(r.FormValue("max_turnover"), "max_turnover"); err != nil {
		return bracket, err
	}
	if bracket.MinTurnover >= bracket.MaxTurnover {
		return bracket, fmt.Errorf("min_turnover debe ser menor a max_turnover")
	}

	// Percents are fractions of turnover, e.g. 0.08 = 8%.
	if bracket.MinPercent, err = parseNonNegativeFloat(r.FormValue("min_percent"), "min_percent"); err != nil {
		return bracket, err
	}
	if bracket.MaxPercent, err = parseNonNegativeFloat(r.FormValue("max_percent"), "max_percent"); err != nil {
		return bracket, err
	}
	if bracket.MinPercent > bracket.MaxPercent {
		return bracket, fmt.Errorf("min_percent debe ser menor o igual a max_percent")
	}

	return bracket, nil
}
