package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gestorlab/despacho/internal/costing"
)

type quoteListItem struct {
	CreatedAt          string
	ProspectName       string
	Turnover           float64
	SuggestedPercent   float64
	SuggestedFeeMonth  float64
	SuggestedFeeAnnual float64
}

type quotesViewData struct {
	baseViewData
	Query  string
	Quotes []quoteListItem
}

type quoteSuggestViewData struct {
	baseViewData
	Turnover   float64
	Suggestion *costing.FeeSuggestion
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		http.Error(w, "failed to load quotes", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "quotes.html", quotesViewData{
		baseViewData: baseViewData{
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:  query,
		Quotes: quotes,
	})
}

func (s *server) listQuotes(query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			created_at,
			COALESCE(prospect_name, ''),
			turnover,
			suggested_percent,
			suggested_fee_month,
			suggested_fee_annual
		FROM quotes
		WHERE (? = '' OR COALESCE(prospect_name, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		if err := rows.Scan(
			&item.CreatedAt,
			&item.ProspectName,
			&item.Turnover,
			&item.SuggestedPercent,
			&item.SuggestedFeeMonth,
			&item.SuggestedFeeAnnual,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// handleQuoteSuggest previews the bracket engine's fee suggestion for a
// prospect turnover. A turnover outside every bracket renders the page
// with no suggestion rather than failing.
func (s *server) handleQuoteSuggest(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("turnover"))

	data := quoteSuggestViewData{}
	if raw != "" {
		turnover, err := parseNonNegativeFloat(raw, "turnover")
		if err != nil {
			data.ErrorMessage = err.Error()
		} else {
			brackets, err := s.listBrackets()
			if err != nil {
				http.Error(w, "failed to load turnover brackets", http.StatusInternalServerError)
				return
			}
			data.Turnover = turnover
			data.Suggestion = costing.SuggestFee(turnover, brackets)
			if data.Suggestion == nil {
				data.ErrorMessage = "Ningún tramo cubre esa facturación; revisa la tabla de tramos."
			}
		}
	}

	s.renderTemplate(w, "quote_new.html", data)
}

// handleQuoteSave snapshots the suggestion: the stored percent and fee
// never change even if the bracket table is edited later.
func (s *server) handleQuoteSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	turnover, err := parseNonNegativeFloat(r.FormValue("turnover"), "turnover")
	if err != nil {
		http.Redirect(w, r, "/quotes/new?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	brackets, err := s.listBrackets()
	if err != nil {
		http.Error(w, "failed to load turnover brackets", http.StatusInternalServerError)
		return
	}

	suggestion := costing.SuggestFee(turnover, brackets)
	if suggestion == nil {
		http.Redirect(w, r, "/quotes/new?error=Ning%C3%BAn+tramo+cubre+esa+facturaci%C3%B3n", http.StatusSeeOther)
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO quotes (prospect_name, turnover, bracket_id, suggested_percent, suggested_fee_annual, suggested_fee_month, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(r.FormValue("prospect_name")),
		turnover,
		suggestion.Bracket.ID,
		suggestion.SuggestedPercent,
		suggestion.SuggestedFeeAnnual,
		suggestion.SuggestedFeeMonth,
		strings.TrimSpace(r.FormValue("notes")),
	)
	if err != nil {
		http.Error(w, "failed to save quote", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/quotes?success=Cotizaci%C3%B3n+guardada+correctamente", http.StatusSeeOther)
}
