// Package report genera el reporte descargable de un resultado del test vocacional.
package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"careermate/internal/domain"
)

// Cantidad de matches que entran en el reporte.
const reportMatches = 5

var (
	ErrNoResults = errors.New("report: no results to render")
	ErrInvalidID = errors.New("report: invalid result id")
)

// User son los datos del destinatario que aparecen en el encabezado.
type User struct {
	Name  string
	Email string
}

// Artifact describe el archivo generado.
type Artifact struct {
	ID       string `json:"id"`
	Path     string `json:"-"`
	FileName string `json:"file_name"`
}

// Renderer produce el reporte de un resultado guardado. Volver a renderizar el mismo
// id reemplaza el reporte anterior.
type Renderer interface {
	Render(ctx context.Context, id string, user User, results []domain.MatchResult, insights []domain.Insight) (Artifact, error)
}

// TextRenderer escribe reportes de texto plano en un directorio, un archivo por resultado.
type TextRenderer struct {
	dir string
	now func() time.Time
}

func NewTextRenderer(dir string) *TextRenderer {
	if dir == "" {
		dir = "reports"
	}
	return &TextRenderer{dir: dir, now: time.Now}
}

var textTemplate = template.Must(template.New("report").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`CAREER FIT TEST REPORT
======================

Generated on: {{.Generated}}
For: {{.Name}}
Email: {{.Email}}

TOP CAREER MATCHES
==================

{{range $i, $m := .Matches}}{{inc $i}}. {{$m.DisplayTitle}}: {{$m.MatchPercentage}}% Match
{{end}}
PERSONALITY INSIGHTS
====================

{{range .Insights}}{{.Label}}: {{.Score}} ({{.Level}})
  {{.Description}}
{{else}}No personality insights available.
{{end}}`))

func (r *TextRenderer) Render(ctx context.Context, id string, user User, results []domain.MatchResult, insights []domain.Insight) (Artifact, error) {
	if len(results) == 0 {
		return Artifact{}, ErrNoResults
	}
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return Artifact{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create reports dir: %w", err)
	}

	name := FileName(id)
	path := filepath.Join(r.dir, name)

	// Se escribe a un temporal y se renombra para que una descarga en curso nunca lea
	// un reporte a medias.
	f, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return Artifact{}, fmt.Errorf("create report: %w", err)
	}
	tmp := f.Name()
	w := bufio.NewWriter(f)
	err = textTemplate.Execute(w, reportData(user, results, insights, r.now()))
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return Artifact{}, fmt.Errorf("write report: %w", err)
	}

	return Artifact{ID: id, Path: path, FileName: name}, nil
}

// FileName es el nombre del reporte de un resultado.
func FileName(id string) string {
	return fmt.Sprintf("career_report_%s.txt", id)
}

type templateData struct {
	Generated string
	Name      string
	Email     string
	Matches   []domain.MatchResult
	Insights  []domain.Insight
}

func reportData(user User, results []domain.MatchResult, insights []domain.Insight, now time.Time) templateData {
	if len(results) > reportMatches {
		results = results[:reportMatches]
	}
	name := user.Name
	if name == "" {
		name = "User"
	}
	email := user.Email
	if email == "" {
		email = "N/A"
	}
	return templateData{
		Generated: now.Format("January 02, 2006 at 03:04 PM"),
		Name:      name,
		Email:     email,
		Matches:   results,
		Insights:  insights,
	}
}
