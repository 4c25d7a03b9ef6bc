package main

import (
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestorlab/despacho/internal/config"
	"github.com/gestorlab/despacho/internal/costing"
	"github.com/gestorlab/despacho/internal/db"
	"github.com/gestorlab/despacho/internal/migrations"
	"github.com/gestorlab/despacho/internal/seed"
)

type server struct {
	auth *authService
	db   *sql.DB
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

type staffStatsRow struct {
	Staff costing.Staff
	Stats costing.StaffStats
}

type dashboardViewData struct {
	baseViewData
	Rows []staffStatsRow
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	} else if err := migrations.Status(database, "migrations"); err != nil {
		log.Fatalf("failed to check migration status: %v", err)
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("startup seed inserted %d rows", stats.Inserts)
	}

	auth := newAuthService(database, cfg.SessionSecret)
	srv := &server{auth: auth, db: database}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleDashboard)
	r.Get("/login", srv.handleLoginForm)
	r.Post("/login", srv.handleLoginSubmit)
	r.Post("/logout", srv.handleLogout)

	r.Get("/catalog", srv.handleCatalogForm)
	r.Post("/catalog", srv.handleCatalogCreate)
	r.Post("/catalog/{id}", srv.handleCatalogUpdate)

	r.Get("/clients", srv.handleClientsList)
	r.Post("/clients", srv.handleClientCreate)
	r.Get("/clients/{id}", srv.handleClientDetail)
	r.Post("/clients/{id}", srv.handleClientUpdate)
	r.Post("/clients/{id}/tasks", srv.handleClientTaskAdd)
	r.Post("/clients/{id}/tasks/{taskID}/delete", srv.handleClientTaskDelete)

	r.Get("/staff", srv.handleStaffForm)
	r.Post("/staff", srv.handleStaffCreate)
	r.Post("/staff/{id}", srv.handleStaffUpdate)

	r.Get("/admin/rates", srv.handleAreaCostsForm)
	r.Post("/admin/rates", srv.handleAreaCostsSubmit)
	r.Get("/admin/brackets", srv.handleBracketsForm)
	r.Post("/admin/brackets", srv.handleBracketCreate)
	r.Post("/admin/brackets/{id}", srv.handleBracketUpdate)
	r.Post("/admin/brackets/{id}/delete", srv.handleBracketDelete)

	r.Get("/admin/policies", srv.handlePoliciesForm)
	r.Post("/admin/policies", srv.handlePolicyCreate)
	r.Post("/admin/policies/{id}", srv.handlePolicyUpdate)
	r.Get("/admin/ledger", srv.handleLedgerForm)
	r.Post("/admin/ledger", srv.handleLedgerCreate)

	r.Get("/quotes", srv.handleQuotesList)
	r.Get("/quotes/new", srv.handleQuoteSuggest)
	r.Post("/quotes", srv.handleQuoteSave)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot()
	if err != nil {
		http.Error(w, "failed to load dashboard data", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "dashboard.html", dashboardViewData{Rows: staffStatsRows(snap)})
}

// staffStatsRows recomputes every staff member's stats from one
// snapshot. Pure apart from the snapshot itself.
func staffStatsRows(snap snapshot) []staffStatsRow {
	rows := make([]staffStatsRow, 0, len(snap.Staff))
	for _, member := range snap.Staff {
		rows = append(rows, staffStatsRow{
			Staff: member,
			Stats: costing.ComputeStaffStats(member, snap.Clients, snap.Tasks, snap.AreaCosts, snap.Staff),
		})
	}
	return rows
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Credenciales inválidas. Intenta de nuevo."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS,
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/static" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser numérico", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s debe ser mayor o igual a 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser numérico", field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s debe ser mayor a 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s debe estar entre 0 y 100", field)
	}
	return value, nil
}

// parseOptionalFloat returns nil for an empty form field, which means
// "use the catalog default".
func parseOptionalFloat(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
