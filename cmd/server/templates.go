package main

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed web/templates
var templatesFS embed.FS

// templateFuncs keeps money and percent formatting out of the handlers.
// Percent fields on brackets and quotes are stored as fractions.
var templateFuncs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f €", v) },
	"pct":   func(fraction float64) string { return fmt.Sprintf("%.2f %%", fraction*100) },
	"hours": func(v float64) string { return fmt.Sprintf("%.1f h", v) },
}
