// Package report renders an analysis run as a standalone HTML page with
// client-side filtering by file and language.
package report

import (
	"embed"
	"html/template"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"title": cases.Title(language.English).String,
		"num": func(n interface{}) string {
			p := message.NewPrinter(language.English)
			switch v := n.(type) {
			case int:
				return p.Sprintf("%d", v)
			case int64:
				return p.Sprintf("%d", v)
			case float64:
				return p.Sprintf("%.1f", v)
			default:
				return "0"
			}
		},
		"truncatePath": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			parts := strings.Split(s, "/")
			if len(parts) <= 2 {
				return s[:n-3] + "..."
			}
			filename := parts[len(parts)-1]
			if len(filename) >= n-3 {
				return "..." + filename[len(filename)-n+3:]
			}
			remaining := n - len(filename) - 4
			if remaining < 0 {
				remaining = 0
			}
			prefix := strings.Join(parts[:len(parts)-1], "/")
			if len(prefix) > remaining {
				prefix = prefix[len(prefix)-remaining:]
			}
			return ".../" + prefix + "/" + filename
		},
		"kindBadge": func(kind string) string {
			switch kind {
			case "unused_function":
				return "badge"
			case "unused_class":
				return "badge badge-warning"
			case "unused_variable":
				return "badge badge-success"
			}
			return "badge"
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML report for the given data.
func (r *Renderer) Render(data *RenderData, w io.Writer) error {
	return r.tmpl.Execute(w, data)
}

// RenderToFile generates HTML and writes it to a file.
func (r *Renderer) RenderToFile(data *RenderData, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.Render(data, f)
}
