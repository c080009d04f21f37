package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/catalog"
	"calorie-tracker/internal/metrics"
	"calorie-tracker/internal/models"
	"calorie-tracker/internal/stats"
	"calorie-tracker/internal/tracker"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// IdentityContextKey is the context key for the authenticated identity.
	IdentityContextKey contextKey = "identity"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
)

// Deps are the services the handlers call into.
type Deps struct {
	Gate     *auth.Gate
	Sessions *auth.Sessions
	Tracker  *tracker.Tracker
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	gate         *auth.Gate
	sessions     *auth.Sessions
	tracker      *tracker.Tracker
	logger       *slog.Logger
	metrics      *metrics.Metrics
	templateDir  string
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, templateDir string, secureCookie bool) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		gate:         deps.Gate,
		sessions:     deps.Sessions,
		tracker:      deps.Tracker,
		logger:       logger,
		metrics:      deps.Metrics,
		templateDir:  templateDir,
		secureCookie: secureCookie,
	}
}

// GetIdentityFromContext retrieves the authenticated identity from request context.
func GetIdentityFromContext(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(IdentityContextKey).(auth.Identity)
	return id, ok
}

// AuthMiddleware wraps handlers to require a session. Browser routes are
// redirected to the login page, API routes get 401.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.unauthorized(w, r)
			return
		}

		id, ok := h.sessions.Lookup(cookie.Value)
		if !ok {
			h.clearSessionCookie(w)
			h.unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) unauthorized(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// AuthViewModel holds data for the login and signup pages.
type AuthViewModel struct {
	Error   string
	Success string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to the log
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, ok := h.sessions.Lookup(cookie.Value); ok {
			http.Redirect(w, r, "/log", http.StatusFound)
			return
		}
	}
	var vm AuthViewModel
	if r.URL.Query().Get("signed_up") == "1" {
		vm.Success = "Signup successful! You can now log in."
	}
	h.render(w, r, "login.html", vm)
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	id, _, err := h.gate.Login(username, password, h.tracker.Now())
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("Login failed", "error", err)
		}
		h.render(w, r, "login.html", AuthViewModel{Error: "Invalid username or password."})
		return
	}

	token, err := h.sessions.Create(id)
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		h.render(w, r, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("User logged in", "user", id.Username)
	http.Redirect(w, r, "/log", http.StatusFound)
}

// SignupForm renders the signup page.
func (h *Handlers) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup.html", AuthViewModel{})
}

// Signup handles the signup form submission.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "signup.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	switch err := h.gate.Signup(username, password); {
	case errors.Is(err, auth.ErrDuplicateUser):
		h.render(w, r, "signup.html", AuthViewModel{Error: "Username already exists. Please choose a different username."})
		return
	case errors.Is(err, auth.ErrMissingCredentials):
		h.render(w, r, "signup.html", AuthViewModel{Error: "Username and password are required"})
		return
	case err != nil:
		h.logger.Error("Signup failed", "error", err)
		h.render(w, r, "signup.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.logger.Info("User signed up", "user", username)
	http.Redirect(w, r, "/login?signed_up=1", http.StatusFound)
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// LogItem is one entry of today's log.
type LogItem struct {
	models.NutrientRecord
	Line string
}

// LogViewModel is the data passed to the daily log template.
type LogViewModel struct {
	Username string
	Today    string
	Items    []LogItem
	Totals   stats.Totals
	Goals    models.Goals
	Foods    []models.CatalogEntry
	Periods  []PeriodOption
	Error    string
}

// PeriodOption is an entry of the period selector.
type PeriodOption struct {
	Value    string
	Label    string
	Selected bool
}

func periodOptions(selected stats.Period) []PeriodOption {
	opts := make([]PeriodOption, 0, len(stats.Periods))
	for _, p := range stats.Periods {
		opts = append(opts, PeriodOption{Value: string(p), Label: p.Label(), Selected: p == selected})
	}
	return opts
}

// ShowLog renders today's food log with the add forms.
func (h *Handlers) ShowLog(w http.ResponseWriter, r *http.Request) {
	h.renderLog(w, r, http.StatusOK, "")
}

func (h *Handlers) renderLog(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	id, _ := GetIdentityFromContext(r)

	log, err := h.tracker.TodayLog(id)
	if err != nil {
		h.logger.Error("TodayLog error", "user", id.Username, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := LogViewModel{
		Username: id.Username,
		Today:    h.tracker.Today(),
		Items:    make([]LogItem, 0, len(log)),
		Goals:    h.tracker.Goals(),
		Foods:    h.tracker.Catalog().Entries(),
		Periods:  periodOptions(stats.Today),
		Error:    errMsg,
	}
	for _, rec := range log {
		vm.Items = append(vm.Items, LogItem{NutrientRecord: rec, Line: rec.String()})
		vm.Totals.Calories += rec.Calories
		vm.Totals.Protein += rec.Protein
		vm.Totals.Fat += rec.Fat
		vm.Totals.Carbs += rec.Carbs
	}

	w.WriteHeader(status)
	h.render(w, r, "log.html", vm)
}

// AddFood handles the custom food form.
func (h *Handlers) AddFood(w http.ResponseWriter, r *http.Request) {
	id, _ := GetIdentityFromContext(r)

	record, err := parseFoodForm(r)
	if err == nil {
		_, err = h.tracker.AddFood(id, record)
	}
	if err != nil {
		if errors.Is(err, errBadNumber) || errors.Is(err, models.ErrInvalidRecord) {
			h.renderLog(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("AddFood error", "user", id.Username, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "/log")
}

// AddCatalogFood handles the predefined food picker.
func (h *Handlers) AddCatalogFood(w http.ResponseWriter, r *http.Request) {
	id, _ := GetIdentityFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.tracker.AddCatalogFood(id, r.FormValue("food")); err != nil {
		if errors.Is(err, catalog.ErrUnknownFood) {
			h.renderLog(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("AddCatalogFood error", "user", id.Username, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "/log")
}

// ResetLog empties today's log.
func (h *Handlers) ResetLog(w http.ResponseWriter, r *http.Request) {
	id, _ := GetIdentityFromContext(r)

	if err := h.tracker.ResetToday(id); err != nil {
		h.logger.Error("ResetToday error", "user", id.Username, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.redirect(w, r, "/log")
}

var errBadNumber = errors.New("must be a non-negative whole number")

func parseFoodForm(r *http.Request) (models.NutrientRecord, error) {
	if err := r.ParseForm(); err != nil {
		return models.NutrientRecord{}, err
	}

	rec := models.NutrientRecord{Name: r.FormValue("name")}
	fields := []struct {
		key string
		dst *int
	}{
		{"calories", &rec.Calories},
		{"protein", &rec.Protein},
		{"fat", &rec.Fat},
		{"carbs", &rec.Carbs},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(r.FormValue(f.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return models.NutrientRecord{}, fmt.Errorf("%s %w", f.key, errBadNumber)
		}
		*f.dst = n
	}
	return rec, nil
}

// redirect sends htmx clients to path with HX-Location and everybody else
// with a 303.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Location", fmt.Sprintf(`{"path":%q, "target":"#content"}`, path))
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		h.logger.Error("Template error", "view", viewName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		h.logger.Error("Template execution error", "view", viewName, "error", err)
	}
}
