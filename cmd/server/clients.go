package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gestorlab/despacho/internal/costing"
)

type clientListItem struct {
	ID          string
	Name        string
	MonthlyFee  float64
	Turnover    float64
	Responsible string
}

type clientsViewData struct {
	baseViewData
	Query   string
	Clients []clientListItem
	Staff   []costing.Staff
}

type clientDetailViewData struct {
	baseViewData
	Client        costing.Client
	Notes         string
	Staff         []costing.Staff
	Catalog       []costing.TaskDefinition
	Profitability costing.ClientProfitability
	Contributions []costing.Contribution
	FeeSuggestion *costing.FeeSuggestion
	// LegacyResponsible flags pre-migration rows whose responsible
	// staff matched nobody; these land in the area-cost fallback.
	LegacyResponsible bool
}

func (s *server) handleClientsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	clients, err := s.searchClients(query)
	if err != nil {
		http.Error(w, "failed to load clients", http.StatusInternalServerError)
		return
	}

	staff, err := s.listStaffRecords()
	if err != nil {
		http.Error(w, "failed to load staff", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "clients.html", clientsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:   query,
		Clients: clients,
		Staff:   staff,
	})
}

func (s *server) searchClients(query string) ([]clientListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, name, monthly_fee, turnover, responsible_staff
		FROM clients
		WHERE (? = '' OR name LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY name, id
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]clientListItem, 0)
	for rows.Next() {
		var item clientListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.MonthlyFee, &item.Turnover, &item.Responsible); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

func (s *server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	client, err := parseClientForm(r)
	if err != nil {
		http.Redirect(w, r, "/clients?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	client.ID = uuid.NewString()

	_, err = s.db.Exec(`
		INSERT INTO clients (
			id, name, monthly_fee, turnover, employee_count, document_count,
			establishments, banks, responsible_staff, call_time_balance, travel_count, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		client.ID,
		client.Name,
		client.MonthlyFee,
		client.Turnover,
		client.EmployeeCount,
		client.DocumentCount,
		client.Establishments,
		client.Banks,
		r.FormValue("responsible_staff"),
		client.CallTimeBalance,
		client.TravelCount,
		strings.TrimSpace(r.FormValue("notes")),
	)
	if err != nil {
		http.Error(w, "failed to create client", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/clients/"+client.ID+"?success=Cliente+creado+correctamente", http.StatusSeeOther)
}

func (s *server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	client, err := parseClientForm(r)
	if err != nil {
		http.Redirect(w, r, "/clients/"+id+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE clients
		SET
			name = ?,
			monthly_fee = ?,
			turnover = ?,
			employee_count = ?,
			document_count = ?,
			establishments = ?,
			banks = ?,
			responsible_staff = ?,
			call_time_balance = ?,
			travel_count = ?,
			notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		client.Name,
		client.MonthlyFee,
		client.Turnover,
		client.EmployeeCount,
		client.DocumentCount,
		client.Establishments,
		client.Banks,
		r.FormValue("responsible_staff"),
		client.CallTimeBalance,
		client.TravelCount,
		strings.TrimSpace(r.FormValue("notes")),
		id,
	)
	if err != nil {
		http.Error(w, "failed to update client", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update client", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/clients/"+id+"?success=Cliente+actualizado+correctamente", http.StatusSeeOther)
}

func (s *server) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	snap, err := s.loadSnapshot()
	if err != nil {
		http.Error(w, "failed to load client data", http.StatusInternalServerError)
		return
	}

	var client *costing.Client
	for i := range snap.Clients {
		if snap.Clients[i].ID == id {
			client = &snap.Clients[i]
			break
		}
	}
	if client == nil {
		http.NotFound(w, r)
		return
	}

	var notes string
	if err := s.db.QueryRow(`SELECT COALESCE(notes, '') FROM clients WHERE id = ?`, id).Scan(&notes); err != nil {
		http.Error(w, "failed to load client data", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "client_detail.html", clientDetailViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Client:            *client,
		Notes:             notes,
		Staff:             snap.Staff,
		Catalog:           snap.Tasks,
		Profitability:     costing.ComputeClientProfitability(*client, snap.Tasks, snap.AreaCosts, snap.Staff),
		Contributions:     costing.ClientContributions(snap.Tasks, *client),
		FeeSuggestion:     costing.SuggestFee(client.Turnover, snap.Brackets),
		LegacyResponsible: client.Responsible.LegacyName != "" && !client.Responsible.Resolved(),
	})
}

func (s *server) handleClientTaskAdd(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	override, err := parseOverrideForm(r)
	if err != nil {
		http.Redirect(w, r, "/clients/"+clientID+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	if err := s.insertClientTask(clientID, override); err != nil {
		if errors.Is(err, errDuplicateTask) {
			http.Redirect(w, r, "/clients/"+clientID+"?error=La+tarea+ya+est%C3%A1+asignada+a+este+cliente", http.StatusSeeOther)
			return
		}
		http.Error(w, "failed to add client task", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/clients/"+clientID+"?success=Tarea+asignada+correctamente", http.StatusSeeOther)
}

var errDuplicateTask = errors.New("duplicate client task")

// insertClientTask adds one override row. Duplicate task ids are
// rejected here rather than silently shadowing each other later.
func (s *server) insertClientTask(clientID string, override costing.ClientTaskOverride) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM client_tasks WHERE client_id = ? AND task_id = ? LIMIT 1)
	`, clientID, override.TaskID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check client task existence: %w", err)
	}
	if exists {
		return errDuplicateTask
	}

	var multiplier, frequency sql.NullFloat64
	if override.Multiplier != nil {
		multiplier = sql.NullFloat64{Float64: *override.Multiplier, Valid: true}
	}
	if override.FrequencyPerYear != nil {
		frequency = sql.NullFloat64{Float64: *override.FrequencyPerYear, Valid: true}
	}
	var assigned sql.NullString
	if override.AssignedStaffID != "" {
		assigned = sql.NullString{String: override.AssignedStaffID, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO client_tasks (client_id, task_id, multiplier, frequency_year, assigned_staff_id, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM client_tasks WHERE client_id = ?))
	`, clientID, override.TaskID, multiplier, frequency, assigned, clientID)
	if err != nil {
		return fmt.Errorf("insert client task: %w", err)
	}

	return nil
}

func (s *server) handleClientTaskDelete(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	taskID := chi.URLParam(r, "taskID")
	if clientID == "" || taskID == "" {
		http.Error(w, "invalid client task", http.StatusBadRequest)
		return
	}

	result, err := s.db.Exec(`DELETE FROM client_tasks WHERE client_id = ? AND task_id = ?`, clientID, taskID)
	if err != nil {
		http.Error(w, "failed to delete client task", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to delete client task", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/clients/"+clientID+"?success=Tarea+retirada+correctamente", http.StatusSeeOther)
}

func parseClientForm(r *http.Request) (costing.Client, error) {
	client := costing.Client{
		Name: strings.TrimSpace(r.FormValue("name")),
	}

	if client.Name == "" {
		return client, fmt.Errorf("name es requerido")
	}

	var err error
	if client.MonthlyFee, err = parseNonNegativeFloat(r.FormValue("monthly_fee"), "monthly_fee"); err != nil {
		return client, err
	}
	if client.Turnover, err = parseNonNegativeFloat(r.FormValue("turnover"), "turnover"); err != nil {
		return client, err
	}
	if client.EmployeeCount, err = parseNonNegativeFloat(r.FormValue("employee_count"), "employee_count"); err != nil {
		return client, err
	}
	if client.DocumentCount, err = parseNonNegativeFloat(r.FormValue("document_count"), "document_count"); err != nil {
		return client, err
	}
	if client.Establishments, err = parseNonNegativeFloat(r.FormValue("establishments"), "establishments"); err != nil {
		return client, err
	}
	if client.Banks, err = parseNonNegativeFloat(r.FormValue("banks"), "banks"); err != nil {
		return client, err
	}
	if client.CallTimeBalance, err = parseNonNegativeFloat(r.FormValue("call_time_balance"), "call_time_balance"); err != nil {
		return client, err
	}
	if client.TravelCount, err = parseNonNegativeFloat(r.FormValue("travel_count"), "travel_count"); err != nil {
		return client, err
	}

	return client, nil
}

func parseOverrideForm(r *http.Request) (costing.ClientTaskOverride, error) {
	override := costing.ClientTaskOverride{
		TaskID:          strings.TrimSpace(r.FormValue("task_id")),
		AssignedStaffID: strings.TrimSpace(r.FormValue("assigned_staff_id")),
	}

	if override.TaskID == "" {
		return override, fmt.Errorf("task_id es requerido")
	}

	var err error
	if override.Multiplier, err = parseOptionalFloat(r.FormValue("multiplier"), "multiplier"); err != nil {
		return override, err
	}
	if override.FrequencyPerYear, err = parseOptionalFloat(r.FormValue("frequency_year"), "frequency_year"); err != nil {
		return override, err
	}

	return override, nil
}
