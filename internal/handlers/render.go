package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"mess-backend/internal/auth"
	"mess-backend/internal/logger"
	"mess-backend/internal/middleware"
	"mess-backend/internal/models"
	"mess-backend/internal/services"
	"mess-backend/internal/timeutil"
)

// PageData is what every page template receives.
type PageData struct {
	Title  string
	Hostel string
	Flash  auth.Flashes
	Data   any
}

// Renderer executes the embedded page templates and carries flash messages
// across redirects.
type Renderer struct {
	templates *template.Template
	flash     *auth.FlashStore
	hostel    string
}

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"datetime": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return timeutil.Format(t, timeutil.DisplayLayout)
		case *time.Time:
			if t != nil {
				return timeutil.Format(*t, timeutil.DisplayLayout)
			}
		}
		return ""
	},
	"months": models.MonthNames,
	"year":   func() int { return timeutil.Now().Year() },
}

// NewRenderer parses every *.html page in fsys.
func NewRenderer(fsys fs.FS, flash *auth.FlashStore, hostel string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl, flash: flash, hostel: hostel}, nil
}

// Render executes a page into a buffer first so template errors become a
// clean 500 instead of a half-written page.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	page := PageData{Title: title, Hostel: rn.hostel, Data: data}
	if rn.flash != nil {
		page.Flash = rn.flash.Pop(w, r)
	}

	var buf bytes.Buffer
	if err := rn.templates.ExecuteTemplate(&buf, name, page); err != nil {
		logger.For("http").Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Redirect queues a flash message and redirects with 303.
func (rn *Renderer) Redirect(w http.ResponseWriter, r *http.Request, to, kind, msg string) {
	if rn.flash != nil && msg != "" {
		rn.flash.Add(w, r, kind, msg)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// writeError maps service errors to plain-text responses: not found is 404,
// invalid input is 400, anything else is logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case services.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case services.IsInvalidInput(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.For("http").Error().Err(err).
			Str("method", r.Method).Str("path", r.URL.Path).
			Msg("request failed")
		http.Error(w, "Server Error", http.StatusInternalServerError)
	}
}

// sendDownload writes a generated file as an attachment.
func sendDownload(w http.ResponseWriter, report *services.Report) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	_, _ = w.Write(report.Data)
}

// pathInt reads a numeric route variable.
func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", services.ErrInvalidInput, name)
	}
	return v, nil
}

// pathPeriod reads the {month}/{year} route variables.
func pathPeriod(r *http.Request) (models.FeePeriod, error) {
	vars := mux.Vars(r)
	return formPeriod(vars["month"], vars["year"])
}

func formPeriod(month, year string) (models.FeePeriod, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return models.FeePeriod{}, models.ErrInvalidYear
	}
	return models.NewFeePeriod(month, y)
}

// actorFrom builds the audit actor from the admin session.
func actorFrom(r *http.Request) *services.Actor {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok || claims.Role != auth.RoleAdmin {
		return nil
	}
	return &services.Actor{AdminID: claims.PrincipalID, IP: middleware.ClientIP(r)}
}

// principalID is the logged-in principal's id, or 0.
func principalID(r *http.Request) int {
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		return claims.PrincipalID
	}
	return 0
}
