package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type insurancePolicy struct {
	ID            int64
	ClientID      string
	Insurer       string
	PolicyNumber  string
	AnnualPremium float64
	RenewalDate   string
	Notes         string
	Active        bool
}

type policiesViewData struct {
	baseViewData
	Policies []insurancePolicy
}

type ledgerEntry struct {
	ID        int64
	EntryDate string
	Concept   string
	Amount    float64
	Kind      string
	Notes     string
}

type ledgerViewData struct {
	baseViewData
	Entries []ledgerEntry
	Balance float64
}

func (s *server) handlePoliciesForm(w http.ResponseWriter, r *http.Request) {
	policies, err := s.listPolicies()
	if err != nil {
		http.Error(w, "failed to load insurance policies", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_policies.html", policiesViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Policies: policies,
	})
}

func (s *server) handlePolicyCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	policy, err := parsePolicyForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/policies?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO insurance_policies (client_id, insurer, policy_number, annual_premium, renewal_date, notes, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nullIfEmpty(policy.ClientID), policy.Insurer, policy.PolicyNumber, policy.AnnualPremium, policy.RenewalDate, policy.Notes, policy.Active)
	if err != nil {
		http.Error(w, "failed to create insurance policy", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/policies?success=P%C3%B3liza+creada+correctamente", http.StatusSeeOther)
}

func (s *server) handlePolicyUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid policy id", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	policy, err := parsePolicyForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/policies?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	result, err := s.db.Exec(`
		UPDATE insurance_policies
		SET
			client_id = ?,
			insurer = ?,
			policy_number = ?,
			annual_premium = ?,
			renewal_date = ?,
			notes = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullIfEmpty(policy.ClientID), policy.Insurer, policy.PolicyNumber, policy.AnnualPremium, policy.RenewalDate, policy.Notes, policy.Active, id)
	if err != nil {
		http.Error(w, "failed to update insurance policy", http.StatusInternalServerError)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		http.Error(w, "failed to update insurance policy", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/admin/policies?success=P%C3%B3liza+actualizada+correctamente", http.StatusSeeOther)
}

func parsePolicyForm(r *http.Request) (insurancePolicy, error) {
	policy := insurancePolicy{
		ClientID:     strings.TrimSpace(r.FormValue("client_id")),
		Insurer:      strings.TrimSpace(r.FormValue("insurer")),
		PolicyNumber: strings.TrimSpace(r.FormValue("policy_number")),
		RenewalDate:  strings.TrimSpace(r.FormValue("renewal_date")),
		Notes:        strings.TrimSpace(r.FormValue("notes")),
		Active:       r.FormValue("active") == "1",
	}

	if policy.Insurer == "" {
		return policy, fmt.Errorf("insurer es requerido")
	}
	if policy.PolicyNumber == "" {
		return policy, fmt.Errorf("policy_number es requerido")
	}

	var err error
	policy.AnnualPremium, err = parseNonNegativeFloat(r.FormValue("annual_premium"), "annual_premium")
	if err != nil {
		return policy, err
	}

	return policy, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *server) listPolicies() ([]insurancePolicy, error) {
	rows, err := s.db.Query(`
		SELECT id, COALESCE(client_id, ''), insurer, policy_number, annual_premium,
			COALESCE(renewal_date, ''), COALESCE(notes, ''), active
		FROM insurance_policies
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query insurance policies: %w", err)
	}
	defer rows.Close()

	policies := make([]insurancePolicy, 0)
	for rows.Next() {
		var p insurancePolicy
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Insurer, &p.PolicyNumber, &p.AnnualPremium, &p.RenewalDate, &p.Notes, &p.Active); err != nil {
			return nil, fmt.Errorf("scan insurance policy: %w", err)
		}
		policies = append(policies, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insurance policies: %w", err)
	}

	return policies, nil
}

func (s *server) handleLedgerForm(w http.ResponseWriter, r *http.Request) {
	entries, balance, err := s.listLedgerEntries()
	if err != nil {
		http.Error(w, "failed to load cash ledger", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_ledger.html", ledgerViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Entries: entries,
		Balance: balance,
	})
}

func (s *server) handleLedgerCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	entry, err := parseLedgerForm(r)
	if err != nil {
		http.Redirect(w, r, "/admin/ledger?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO ledger_entries (entry_date, concept, amount, kind, notes)
		VALUES (?, ?, ?, ?, ?)
	`, entry.EntryDate, entry.Concept, entry.Amount, entry.Kind, entry.Notes)
	if err != nil {
		http.Error(w, "failed to create ledger entry", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/ledger?success=Movimiento+registrado+correctamente", http.StatusSeeOther)
}

func parseLedgerForm(r *http.Request) (ledgerEntry, error) {
	entry := ledgerEntry{
		EntryDate: strings.TrimSpace(r.FormValue("entry_date")),
		Concept:   strings.TrimSpace(r.FormValue("concept")),
		Kind:      r.FormValue("kind"),
		Notes:     strings.TrimSpace(r.FormValue("notes")),
	}

	if entry.Concept == "" {
		return entry, fmt.Errorf("concept es requerido")
	}
	if entry.Kind != "in" && entry.Kind != "out" {
		return entry, fmt.Errorf("kind debe ser in o out")
	}
	if entry.EntryDate == "" {
		entry.EntryDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", entry.EntryDate); err != nil {
		return entry, fmt.Errorf("entry_date debe tener formato AAAA-MM-DD")
	}

	var err error
	entry.Amount, err = parsePositiveFloat(r.FormValue("amount"), "amount")
	if err != nil {
		return entry, err
	}

	return entry, nil
}

func (s *server) listLedgerEntries() ([]ledgerEntry, float64, error) {
	rows, err := s.db.Query(`
		SELECT id, entry_date, concept, amount, kind, COALESCE(notes, '')
		FROM ledger_entries
		ORDER BY entry_date DESC, id DESC
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]ledgerEntry, 0)
	var balance float64
	for rows.Next() {
		var e ledgerEntry
		if err := rows.Scan(&e.ID, &e.EntryDate, &e.Concept, &e.Amount, &e.Kind, &e.Notes); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		if e.Kind == "in" {
			balance += e.Amount
		} else {
			balance -= e.Amount
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, balance, nil
}
