package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ParseTemplates loads the embedded pages. now anchors relative times.
func ParseTemplates(now func() time.Time) (*template.Template, error) {
	if now == nil {
		now = time.Now
	}
	funcs := template.FuncMap{
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return humanize.RelTime(t, now(), "ago", "from now")
		},
		"clock": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format(time.DateTime)
		},
		"seconds": func(d time.Duration) string {
			return d.Round(time.Second).String()
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}
