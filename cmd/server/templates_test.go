package main

import (
	"net/http/httptest"
	"strings"
	"testing"
)

// Every page must parse from the embedded FS and execute against its
// zero-value view data; a missing or broken template file would turn
// every GET into a 500.
func TestRenderTemplateRendersEveryPage(t *testing.T) {
	srv := &server{}
	pages := map[string]any{
		"login.html":          loginViewData{},
		"dashboard.html":      dashboardViewData{},
		"catalog.html":        catalogViewData{},
		"clients.html":        clientsViewData{},
		"client_detail.html":  clientDetailViewData{},
		"staff.html":          staffViewData{},
		"admin_rates.html":    areaCostsViewData{},
		"admin_brackets.html": bracketsViewData{},
		"admin_policies.html": policiesViewData{},
		"admin_ledger.html":   ledgerViewData{},
		"quotes.html":         quotesViewData{},
		"quote_new.html":      quoteSuggestViewData{},
	}

	for page, data := range pages {
		rec := httptest.NewRecorder()
		srv.renderTemplate(rec, page, data)

		if rec.Code != 200 {
			t.Fatalf("%s: status = %d, body = %q", page, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "</html>") {
			t.Fatalf("%s: layout not rendered, body = %q", page, rec.Body.String())
		}
	}
}

func TestRenderTemplateShowsMessages(t *testing.T) {
	srv := &server{}
	rec := httptest.NewRecorder()
	srv.renderTemplate(rec, "login.html", loginViewData{
		baseViewData: baseViewData{ErrorMessage: "Credenciales inválidas. Intenta de nuevo."},
	})

	if !strings.Contains(rec.Body.String(), "Credenciales inválidas") {
		t.Fatalf("error message not rendered, body = %q", rec.Body.String())
	}
}
