// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Templates parses every page template with the shared helpers.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Static serves the files under static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// FuncMap holds the helpers templates may call.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"riskClass": RiskClass,
		"riskLabel": RiskLabel,
	}
}

// RiskClass maps German and English risk levels to a CSS class.
func RiskClass(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "NIEDRIG", "LOW":
		return "risk-low"
	case "MITTEL", "MEDIUM":
		return "risk-medium"
	case "HOCH", "HIGH":
		return "risk-high"
	case "KRITISCH", "CRITICAL":
		return "risk-critical"
	default:
		return "risk-unknown"
	}
}

// RiskLabel returns the German label for a risk level.
func RiskLabel(level string) string {
	switch RiskClass(level) {
	case "risk-low":
		return "NIEDRIG"
	case "risk-medium":
		return "MITTEL"
	case "risk-high":
		return "HOCH"
	case "risk-critical":
		return "KRITISCH"
	default:
		return strings.ToUpper(strings.TrimSpace(level))
	}
}
