package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/desertthunder/handoff/internal/shared"
	"github.com/desertthunder/handoff/internal/wizard"
)

const defaultEventWait = 30 * time.Second

// SiteView is a site row in a [ScreenView].
type SiteView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	IconURL string `json:"icon_url,omitempty"`
}

// ScreenView is the JSON form of a [wizard.Screen].
type ScreenView struct {
	Step      string     `json:"step"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Sites     []SiteView `json:"sites,omitempty"`
	Busy      bool       `json:"busy"`
	Failure   string     `json:"failure,omitempty"`
}

// NewScreenView converts s for encoding.
func NewScreenView(s wizard.Screen) ScreenView {
	v := ScreenView{Step: s.Step().String()}
	switch s := s.(type) {
	case wizard.WelcomeScreen:
		v.AvatarURL = s.AvatarURL
		v.Busy = s.Busy
		v.Sites = make([]SiteView, 0, len(s.Sites))
		for _, site := range s.Sites {
			v.Sites = append(v.Sites, SiteView{ID: site.ID, Name: site.Name, URL: site.URL, IconURL: site.IconURL})
		}
	case wizard.ErrorScreen:
		v.Busy = s.Busy
		v.Failure = s.Kind.String()
	}
	return v
}

// EventView is the JSON form of a [wizard.Event].
type EventView struct {
	Event string `json:"event"`
}

// WizardHandler serves the wizard control routes. Implements the [Handler] interface.
type WizardHandler struct {
	wiz       *wizard.Wizard
	eventWait time.Duration
	mux       *http.ServeMux
}

// NewWizardHandler creates a handler over w. /events waits at most eventWait, defaulting to 30s.
func NewWizardHandler(w *wizard.Wizard, eventWait time.Duration) *WizardHandler {
	if eventWait <= 0 {
		eventWait = defaultEventWait
	}
	h := &WizardHandler{wiz: w, eventWait: eventWait, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /screen", h.screen)
	h.mux.HandleFunc("GET /events", h.events)
	h.mux.HandleFunc("POST /advance/welcome", h.action(func() error { w.AdvancePastWelcome(); return nil }))
	h.mux.HandleFunc("POST /advance/notifications", h.action(func() error { w.AdvancePastNotifications(); return nil }))
	h.mux.HandleFunc("POST /retry", h.action(w.Retry))
	h.mux.HandleFunc("POST /restart", h.action(w.Restart))
	h.mux.HandleFunc("POST /help", h.action(w.RequestHelp))
	h.mux.HandleFunc("POST /complete", h.action(w.Complete))
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *WizardHandler) Routes() []string {
	return []string{
		"/screen",
		"/events",
		"/advance/welcome",
		"/advance/notifications",
		"/retry",
		"/restart",
		"/help",
		"/complete",
	}
}

func (h *WizardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *WizardHandler) screen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewScreenView(h.wiz.Screen()))
}

// action runs fn and responds with the resulting screen.
func (h *WizardHandler) action(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NewScreenView(h.wiz.Screen()))
	}
}

// events blocks until an event is queued, the wait elapses (204) or the client goes away.
func (h *WizardHandler) events(w http.ResponseWriter, r *http.Request) {
	wait := h.eventWait
	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, shared.ErrInvalidInput)
			return
		}
		wait = min(d, h.eventWait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e, ok := <-h.wiz.Events():
		if !ok {
			writeError(w, shared.ErrClosed)
			return
		}
		writeJSON(w, http.StatusOK, EventView{Event: e.String()})
	case <-timer.C:
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrQueueFull):
		status = http.StatusTooManyRequests
	case errors.Is(err, shared.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
