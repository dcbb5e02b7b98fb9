package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/swelljoe/wthr-widget/internal/logger"
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
	"github.com/swelljoe/wthr-widget/internal/widget"
	"github.com/swelljoe/wthr-widget/web"
)

// SessionCookie carries the visitor id, which is also the preference scope.
const SessionCookie = "wthr_session"

const sessionMaxAge = 365 * 24 * 60 * 60

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	sessions  *widget.Registry
	pipeline  widget.Runner
	store     Pinger
	templates *template.Template
	log       *zap.SugaredLogger
}

// New creates a new Handlers instance. store may be nil.
func New(sessions *widget.Registry, pipeline widget.Runner, store Pinger) *Handlers {
	log := logger.GetLogger()

	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		log.Errorw("Failed to parse templates", "error", err)
	}

	return &Handlers{
		sessions:  sessions,
		pipeline:  pipeline,
		store:     store,
		templates: tmpl,
		log:       log,
	}
}

// pageData is what index.html renders.
type pageData struct {
	View       widget.View
	DarkIcon   string
	DarkTitle  string
	SoundIcon  string
	SoundTitle string
}

func newPageData(v widget.View) pageData {
	d := pageData{View: v}
	if v.Preferences.DarkMode {
		d.DarkIcon, d.DarkTitle = "☀️", "Switch to Light Mode"
	} else {
		d.DarkIcon, d.DarkTitle = "🌙", "Switch to Dark Mode"
	}
	if v.Preferences.SoundOn {
		d.SoundIcon, d.SoundTitle = "🔈", "Mute Weather Sounds"
	} else {
		d.SoundIcon, d.SoundTitle = "🔇", "Unmute Weather Sounds"
	}
	return d
}

// session opens the visitor's session, issuing a cookie when the id changed.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*widget.Session, error) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	s, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if s.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    s.ID,
			Path:     "/",
			MaxAge:   sessionMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s, nil
}

// search runs one lookup through the session.
func (h *Handlers) search(ctx context.Context, s *widget.Session, query string) (widget.View, bool) {
	view, applied := s.Search(ctx, h.pipeline, query)
	if !applied {
		h.log.Debugw("Discarded stale outcome", "session", s.ID, "query", query)
	}
	return view, applied
}

// HandleIndex renders the widget. A city parameter (even an empty one)
// triggers a lookup; without it the current view is shown, performing the
// initial default lookup for a session that has none.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s, err := h.session(w, r)
	if err != nil {
		h.log.Errorw("Failed to open session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	if q.Has("city") {
		h.search(r.Context(), s, q.Get("city"))
	} else if !s.HasOutcome() {
		h.search(r.Context(), s, "")
	}

	if h.templates == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", newPageData(s.View())); err != nil {
		h.log.Errorw("Error executing template", "error", err)
	}
}

type weatherResponse struct {
	Outcome string      `json:"outcome"`
	Applied bool        `json:"applied"`
	View    widget.View `json:"view"`
}

// HandleWeatherAPI runs a lookup and returns the session view as JSON.
func (h *Handlers) HandleWeatherAPI(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(w, r)
	if err != nil {
		h.log.Errorw("Failed to open session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}

	view, applied := h.search(r.Context(), s, r.URL.Query().Get("city"))

	// Status follows the view in the body, which may come from a newer lookup.
	status := http.StatusOK
	switch view.Outcome {
	case weather.OutcomeNotFound.String():
		status = http.StatusNotFound
	case weather.OutcomeEmptyQuery.String():
		status = http.StatusBadRequest
	}

	writeJSON(w, status, weatherResponse{
		Outcome: view.Outcome,
		Applied: applied,
		View:    view,
	})
}

// HandleToggleDarkMode flips dark mode.
func (h *Handlers) HandleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "dark_mode", prefs.Preferences.ToggleDarkMode)
}

// HandleToggleSound flips ambient sound.
func (h *Handlers) HandleToggleSound(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "sound", prefs.Preferences.ToggleSound)
}

func (h *Handlers) toggle(w http.ResponseWriter, r *http.Request, name string, change func(prefs.Preferences) prefs.Preferences) {
	s, err := h.session(w, r)
	if err != nil {
		h.log.Errorw("Failed to open session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p, err := s.UpdatePreferences(r.Context(), change)
	if err != nil {
		h.log.Errorw("Failed to save preferences", "session", s.ID, "toggle", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.log.Debugw("Preferences toggled", "session", s.ID, "toggle", name, "dark_mode", p.DarkMode, "sound_on", p.SoundOn)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, s.View())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.log.Warnw("Preference store unreachable", "error", err)
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// wantsJSON reports whether any media range in Accept is application/json.
func wantsJSON(r *http.Request) bool {
	for _, accept := range r.Header.Values("Accept") {
		for _, part := range strings.Split(accept, ",") {
			mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err == nil && mediaType == "application/json" {
				return true
			}
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.GetLogger().Errorw("JSON encode error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.GetLogger().Warnw("Response write error", "error", err)
	}
}
